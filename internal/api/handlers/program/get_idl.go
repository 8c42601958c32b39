package program

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
)

// GetIDLRoute serves the embedded program descriptor as generated by anchor build.
func GetIDLRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Program.GET("/idl", getIDLHandler())
}

func getIDLHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, boomerfun.IDLJSON())
	}
}

package program

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
)

type stateResponse struct {
	Address string `json:"address"`
	*boomerfun.ProgramState
}

func GetStateRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Program.GET("/state", getStateHandler(s))
}

func getStateHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		address, err := s.ResolveStateAddress(c.QueryParam("state"))
		if err != nil {
			return err
		}

		state, err := s.Program.State(ctx, address)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, stateResponse{Address: address.String(), ProgramState: state})
	}
}

package program

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util"
)

type initializeResponse struct {
	Signature solana.Signature `json:"signature"`
	State     solana.PublicKey `json:"state"`
	// Default reports whether the new state became the server's default state account.
	Default bool `json:"default"`
}

func PostInitializeRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Program.POST("/initialize", postInitializeHandler(s))
}

func postInitializeHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		res, err := s.Program.Initialize(ctx, boomerfun.InitializeOptions{})
		if err != nil {
			log.Debug().Err(err).Msg("Failed to initialize program state")
			return err
		}

		log.Info().Str("signature", res.Signature.String()).Str("state", res.State.String()).Msg("Your transaction signature")

		return c.JSON(http.StatusOK, initializeResponse{
			Signature: res.Signature,
			State:     res.State,
			Default:   s.RememberStateAddress(res.State),
		})
	}
}

package tokens

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util"
)

func PostSellTokenRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Tokens.POST("/:id/sell", postSellTokenHandler(s))
}

func postSellTokenHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var path tokenPathParams
		if err := util.BindAndValidatePathParams(c, &path); err != nil {
			return err
		}

		var body tradePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		params, err := body.params(s, path.TokenID)
		if err != nil {
			return err
		}

		res, err := s.Program.SellToken(ctx, params)
		if err != nil {
			log.Debug().Err(err).Uint64("tokenId", path.TokenID).Msg("Failed to sell token")
			return err
		}

		return c.JSON(http.StatusOK, res)
	}
}

package tokens

import (
	"net/http"

	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util"
)

const (
	sidePurchase = "purchase"
	sideSell     = "sell"
)

type quoteParams struct {
	TokenID uint64 `param:"id"`
	Side    string `query:"side"`
	Amount  uint64 `query:"amount"`
	State   string `query:"state"`
}

func (p *quoteParams) Validate() error {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(p.Side, "side"),
	).Check()
	if err != nil {
		return errors.Wrap(boomerfun.ErrInvalidParams, err.Error())
	}

	if p.Side != sidePurchase && p.Side != sideSell {
		return errors.Wrapf(boomerfun.ErrInvalidParams, "side must be %q or %q", sidePurchase, sideSell)
	}

	return nil
}

func GetQuoteRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Tokens.GET("/:id/quote", getQuoteHandler(s))
}

func getQuoteHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params quoteParams
		if err := (&echo.DefaultBinder{}).BindPathParams(c, &params); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid path parameters").SetInternal(err)
		}
		if err := util.BindAndValidateQueryParams(c, &params); err != nil {
			return err
		}

		state, err := s.ResolveStateAddress(params.State)
		if err != nil {
			return err
		}

		if params.Side == sideSell {
			quote, err := s.Program.QuoteSell(ctx, state, params.TokenID, params.Amount)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, quote)
		}

		quote, err := s.Program.QuotePurchase(ctx, state, params.TokenID, params.Amount)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, quote)
	}
}

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

type createTokenPayload struct {
	State         string `json:"state"`
	Mint          string `json:"mint"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	SkipSizeCheck bool   `json:"skipSizeCheck"`
}

func (p *createTokenPayload) Validate() error {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(p.Mint, "mint"),
		vala.StringNotEmpty(p.Name, "name"),
		vala.StringNotEmpty(p.Symbol, "symbol"),
	).Check()
	if err != nil {
		return errors.Wrap(boomerfun.ErrInvalidParams, err.Error())
	}

	return nil
}

func PostCreateTokenRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Tokens.POST("", postCreateTokenHandler(s))
}

func postCreateTokenHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body createTokenPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		state, err := s.ResolveStateAddress(body.State)
		if err != nil {
			return err
		}

		mint, err := api.ParsePublicKey("mint", body.Mint, true)
		if err != nil {
			return err
		}

		res, err := s.Program.CreateToken(ctx, boomerfun.CreateTokenParams{
			State:         state,
			Mint:          mint,
			Name:          body.Name,
			Symbol:        body.Symbol,
			SkipSizeCheck: body.SkipSizeCheck,
		})
		if err != nil {
			log.Debug().Err(err).Msg("Failed to create token")
			return err
		}

		return c.JSON(http.StatusOK, res)
	}
}

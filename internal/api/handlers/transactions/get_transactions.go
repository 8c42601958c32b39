package transactions

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/util"
)

type listParams struct {
	Instruction string `query:"instruction"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

func (p *listParams) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return errors.Wrap(boomerfun.ErrInvalidParams, "limit and offset must not be negative")
	}
	if p.Limit > ledger.MaxListLimit {
		return errors.Wrapf(boomerfun.ErrInvalidParams, "limit must not exceed %d", ledger.MaxListLimit)
	}

	return nil
}

type listResponse struct {
	Transactions []*ledger.Transaction `json:"transactions"`
}

func GetTransactionsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.GET("", getTransactionsHandler(s))
}

func getTransactionsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params listParams
		if err := util.BindAndValidateQueryParams(c, &params); err != nil {
			return err
		}

		txs, err := s.Program.Transactions(ctx, ledger.ListParams{
			Instruction: params.Instruction,
			Limit:       params.Limit,
			Offset:      params.Offset,
		})
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, listResponse{Transactions: txs})
	}
}

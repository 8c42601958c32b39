package transactions

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util"
)

type transactionPathParams struct {
	Signature string `param:"signature"`
}

func (p *transactionPathParams) Validate() error {
	if _, err := solana.SignatureFromBase58(p.Signature); err != nil {
		return errors.Wrapf(boomerfun.ErrInvalidParams, "signature: %v", err)
	}

	return nil
}

// GetTransactionRoute reports a transaction after refreshing its status from the cluster.
func GetTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transactions.GET("/:signature", getTransactionHandler(s))
}

func getTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var params transactionPathParams
		if err := util.BindAndValidatePathParams(c, &params); err != nil {
			return err
		}

		tx, err := s.Program.SyncTransaction(ctx, solana.MustSignatureFromBase58(params.Signature))
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, tx)
	}
}

package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/api/handlers/common"
	"github/chapool/iao-solana/internal/api/handlers/program"
	"github/chapool/iao-solana/internal/api/handlers/tokens"
	"github/chapool/iao-solana/internal/api/handlers/transactions"
)

// AttachAllRoutes registers every handler on the groups of s.Router.
func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetMetricsRoute(s),
		common.GetReadyRoute(s),
		program.GetIDLRoute(s),
		program.GetProgramRoute(s),
		program.GetStateRoute(s),
		program.PostInitializeRoute(s),
		tokens.GetQuoteRoute(s),
		tokens.PostCreateTokenRoute(s),
		tokens.PostPurchaseTokenRoute(s),
		tokens.PostSellTokenRoute(s),
		transactions.GetTransactionRoute(s),
		transactions.GetTransactionsRoute(s),
	}
}

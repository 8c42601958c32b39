package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util"
	"golang.org/x/sync/errgroup"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Liveness check
// Probes the RPC node and the ledger database concurrently and reports one line per probe.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.LivenessTimeout)
		defer cancel()

		lines := make([]string, 2)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := s.Env.Client.Health(gctx); err != nil {
				lines[0] = fmt.Sprintf("rpc: %v", err)
				return err
			}
			lines[0] = "rpc: ok"
			return nil
		})

		g.Go(func() error {
			if s.DB == nil {
				lines[1] = "database: disabled"
				return nil
			}
			if err := s.DB.PingContext(gctx); err != nil {
				lines[1] = fmt.Sprintf("database: %v", err)
				return err
			}
			lines[1] = "database: ok"
			return nil
		})

		err := g.Wait()
		body := strings.Join(lines, "\n")

		if err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Msg("Liveness probe failed")
			return c.String(521, body)
		}

		return c.String(http.StatusOK, body)
	}
}

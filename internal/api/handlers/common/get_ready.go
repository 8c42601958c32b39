package common

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. respond to queries).
// Does read-only probes apart from the general server ready state.
// Note that /-/ready is typically public (and not shielded by a mgmt-secret), we thus prevent information leakage here and only return `"Ready."`.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			util.LogFromContext(c.Request().Context()).Warn().Msg("Readiness probe failed, server is not ready")
			return c.String(521, "Not ready.")
		}

		if s.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), s.Config.Management.ReadinessTimeout)
			defer cancel()

			if err := s.DB.PingContext(ctx); err != nil {
				util.LogFromContext(ctx).Warn().Err(err).Msg("Readiness probe failed, database ping failed")
				return c.String(521, "Not ready.")
			}
		}

		return c.String(http.StatusOK, "Ready.")
	}
}

package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/api/handlers"
	"github/chapool/iao-solana/internal/api/httperrors"
	"github/chapool/iao-solana/internal/api/middleware"
)

// Init creates the echo instance of s and attaches all routes.
func Init(s *api.Server) error {
	s.Echo = echo.New()

	s.Echo.Debug = s.Config.Echo.Debug
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.HTTPErrorHandler = httperrors.HTTPErrorHandlerWithConfig(httperrors.HTTPErrorHandlerConfig{
		HideInternalServerErrorDetails: !s.Config.Echo.Debug,
		I18n:                           s.I18n,
	})

	s.Echo.Pre(echoMiddleware.RemoveTrailingSlash())

	s.Echo.Use(
		echoMiddleware.Recover(),
		echoMiddleware.RequestID(),
		middleware.LoggerWithConfig(middleware.LoggerConfig{Level: s.Config.Logger.RequestLevel}),
	)

	s.Router = &api.Router{
		Routes:            nil, // will be populated by handlers.AttachAllRoutes(s)
		Root:              s.Echo.Group(""),
		Management:        s.Echo.Group("/-"),
		APIV1Program:      s.Echo.Group("/api/v1/program"),
		APIV1Tokens:       s.Echo.Group("/api/v1/tokens"),
		APIV1Transactions: s.Echo.Group("/api/v1/transactions"),
	}

	// ---
	// Finally attach our handlers
	handlers.AttachAllRoutes(s)

	return nil
}

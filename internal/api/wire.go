//go:build wireinject

package api

import (
	"context"
	"database/sql"

	"github.com/google/wire"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewI18N,
	NewLedger,
	NewProgramClient,
	NewEnv,
	metrics.New,
)

// InitNewServer returns a new Server instance. The cleanup releases what the
// providers opened; Server.Shutdown releases the same resources.
func InitNewServer(
	_ context.Context,
	_ config.Server,
) (*Server, func(), error) {
	wire.Build(serviceSet, ProvideDB)
	return new(Server), nil, nil
}

// InitNewServerWithDB returns a new Server instance with the given DB instance.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithDB(
	_ context.Context,
	_ config.Server,
	_ *sql.DB,
) (*Server, func(), error) {
	wire.Build(serviceSet)
	return new(Server), nil, nil
}

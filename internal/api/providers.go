package api

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/i18n"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/util"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewDB opens the ledger database. Without the ledger enabled no connection is made and nil is returned.
func NewDB(ctx context.Context, cfg config.Server) (*sql.DB, error) {
	if !cfg.Ledger.Enabled {
		return nil, nil //nolint:nilnil // the database is optional
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return db, nil
}

// ProvideDB is NewDB for wire: the cleanup closes the connection when a later
// provider fails.
func ProvideDB(ctx context.Context, cfg config.Server) (*sql.DB, func(), error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return db, func() {
		if db != nil {
			db.Close()
		}
	}, nil
}

// NewEnv wraps anchor.NewEnv; the cleanup wipes the wallet and closes the RPC client.
func NewEnv(ctx context.Context, cfg config.Server, m *metrics.Service) (*anchor.Env, func(), error) {
	env, err := anchor.NewEnv(ctx, cfg, m)
	if err != nil {
		return nil, nil, err
	}

	return env, env.Close, nil
}

// NewLedger picks the PostgreSQL ledger when a database is present and the
// in-memory ledger otherwise.
//
//nolint:ireturn // the ledger implementation depends on the configuration
func NewLedger(ctx context.Context, db *sql.DB, m *metrics.Service) (ledger.Ledger, error) {
	if db == nil {
		util.LogFromContext(ctx).Debug().Msg("Ledger database disabled, keeping transactions in memory")
		return ledger.NewMemory(), nil
	}

	if err := m.RegisterDB("ledger", db); err != nil {
		return nil, errors.Wrap(err, "failed to register database metrics")
	}

	return ledger.NewStore(db), nil
}

func NewI18N(cfg config.Server) (*i18n.Service, error) {
	return i18n.New(cfg.I18n)
}

func NewProgramClient(env *anchor.Env, m *metrics.Service, l ledger.Ledger) (*boomerfun.Client, error) {
	program, err := env.Program()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve workspace program")
	}

	return boomerfun.NewClient(program, boomerfun.WithMetrics(m), boomerfun.WithLedger(l)), nil
}

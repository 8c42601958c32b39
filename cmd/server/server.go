package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/api/router"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/util/command"
)

const (
	migrateFlag = "migrate"

	shutdownTimeout = 30 * time.Second
)

type Flags struct {
	ApplyMigrations bool
}

func New() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the HTTP server",
		Long: `Starts the HTTP server exposing the IaoSolana program.

The signing wallet is unlocked once at startup and wiped on shutdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), command.Config(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.ApplyMigrations, migrateFlag, "m", false, "Apply ledger migrations before starting the server.")

	return cmd
}

func runServer(ctx context.Context, cfg config.Server, flags Flags) error {
	config.SetupLogger(cfg.Logger)

	s, _, err := api.InitNewServer(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	if flags.ApplyMigrations {
		if s.DB == nil {
			log.Warn().Msg("Ledger database is disabled, skipping migrations")
		} else {
			n, err := ledger.Migrate(s.DB)
			if err != nil {
				log.Error().Err(err).Msg("Failed to apply migrations")
				return err
			}
			log.Info().Int("migrations", n).Msg("Applied migrations")
		}
	}

	if err := router.Init(s); err != nil {
		log.Error().Err(err).Msg("Failed to initialize router")
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if interval := s.Config.Ledger.ReconcileInterval; interval > 0 {
		s.Program.StartAutoReconcile(ctx, interval)
	}

	go func() {
		log.Info().
			Str("address", s.Config.Echo.ListenAddress).
			Str("program", s.Program.Program().ID().String()).
			Str("wallet", s.Program.Wallet().String()).
			Msg("Starting server")

		if err := s.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Msg("Server closed")
			} else {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		return errors.Join(errs...)
	}

	return nil
}

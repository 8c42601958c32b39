package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/ledger"
)

const dryRunFlag = "dry-run"

func newMigrate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Executes all migrations which are not yet applied.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, err := cmd.Flags().GetBool(dryRunFlag)
			if err != nil {
				return err
			}

			return migrateCmdFunc(cmd.Context(), dryRun)
		},
	}

	cmd.Flags().Bool(dryRunFlag, false, "Only list the migrations that would be applied.")

	return cmd
}

func migrateCmdFunc(ctx context.Context, dryRun bool) error {
	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Ledger.Enabled = true
	config.SetupLogger(cfg.Logger)

	db, err := api.NewDB(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to ledger database")
		return err
	}
	defer db.Close()

	if dryRun {
		pending, err := ledger.PlanMigrations(db)
		if err != nil {
			return err
		}
		for _, id := range pending {
			fmt.Println(id)
		}
		log.Info().Int("pending", len(pending)).Msg("Planned migrations")
		return nil
	}

	n, err := ledger.Migrate(db)
	if err != nil {
		log.Error().Err(err).Msg("Error while applying migrations")
		return err
	}

	log.Info().Int("migrations", n).Msg("Applied migrations")

	return nil
}

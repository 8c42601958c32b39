package probe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util/command"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Runs readiness probes.

This command succeeds once the wallet is loaded, the workspace program
resolves and the ledger database (if enabled) answers a ping.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				errs := readinessProbe(ctx, s)
				if len(errs) > 0 {
					log.Error().Errs("errs", errs).Msg("Readiness probe failed")
					os.Exit(1)
				}

				if verbose {
					fmt.Println("Ready.")
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func readinessProbe(ctx context.Context, s *api.Server) []error {
	var errs []error

	if !s.Ready() {
		errs = append(errs, errors.New("server is not ready"))
	}

	if s.DB != nil {
		ctx, cancel := context.WithTimeout(ctx, s.Config.Management.ReadinessTimeout)
		defer cancel()

		if err := s.DB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	return errs
}

package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util/command"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `Runs liveness probes.

This command checks that the cluster RPC endpoint reports itself healthy
and that the ledger database (if enabled) answers a ping.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				errs := livenessProbe(ctx, s, verbose)
				if len(errs) > 0 {
					log.Error().Errs("errs", errs).Msg("Liveness probe failed")
					os.Exit(1)
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func livenessProbe(ctx context.Context, s *api.Server, verbose bool) []error {
	var errs []error

	ctx, cancel := context.WithTimeout(ctx, s.Config.Management.LivenessTimeout)
	defer cancel()

	if err := s.Env.Client.Health(ctx); err != nil {
		errs = append(errs, fmt.Errorf("rpc: %w", err))
	} else if verbose {
		fmt.Printf("rpc: ok (%s)\n", s.Env.Client.URL())
	}

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		} else if verbose {
			fmt.Println("database: ok")
		}
	}

	return errs
}

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/config"
)

const (
	FlagProviderURL = "provider-url"
	FlagWallet      = "wallet"
	FlagProgram     = "program"

	shutdownTimeout = 10 * time.Second
)

// NewSubcommandGroup returns a command that only groups subcommands and prints its help otherwise.
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <subcommand>", name),
		Short: fmt.Sprintf("%s related subcommands", name),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// BindProviderFlags registers the provider flags on cmd. Flags win over
// ANCHOR_PROVIDER_URL, ANCHOR_WALLET and IAO_WORKSPACE_PROGRAM.
func BindProviderFlags(cmd *cobra.Command) error {
	flags := cmd.PersistentFlags()
	flags.String(FlagProviderURL, "", "cluster RPC endpoint (env ANCHOR_PROVIDER_URL)")
	flags.String(FlagWallet, "", "path to the signing keypair file (env ANCHOR_WALLET)")
	flags.String(FlagProgram, "", "workspace program name (env IAO_WORKSPACE_PROGRAM)")

	for _, name := range []string{FlagProviderURL, FlagWallet, FlagProgram} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}

	return nil
}

// Config returns the environment config with provider flag overrides applied.
func Config() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()

	if v := viper.GetString(FlagProviderURL); v != "" {
		cfg.Provider.URL = v
	}
	if v := viper.GetString(FlagWallet); v != "" {
		cfg.Provider.WalletPath = v
	}
	if v := viper.GetString(FlagProgram); v != "" {
		cfg.Program.WorkspaceName = v
	}

	return cfg
}

// WithServer wires a server from cfg and runs fn with it. The server is
// shut down afterwards, its shutdown errors are only logged.
func WithServer(ctx context.Context, cfg config.Server, fn func(ctx context.Context, s *api.Server) error) error {
	config.SetupLogger(cfg.Logger)

	s, _, err := api.InitNewServer(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Err(errors.Join(errs...)).Msg("Failed to gracefully shut down server")
		}
	}()

	return fn(ctx, s)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/cmd/airdrop"
	"github/chapool/iao-solana/cmd/db"
	"github/chapool/iao-solana/cmd/keystore"
	"github/chapool/iao-solana/cmd/program"
	"github/chapool/iao-solana/cmd/probe"
	"github/chapool/iao-solana/cmd/server"
	"github/chapool/iao-solana/cmd/token"
	"github/chapool/iao-solana/cmd/tx"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Client for the IaoSolana Anchor program: initialize the program state,
launch tokens and trade them along the bonding curve.
Requires configuration through ENV (ANCHOR_PROVIDER_URL, ANCHOR_WALLET)
or the provider flags.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := command.BindProviderFlags(rootCmd); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind provider flags")
	}

	// attach the subcommands
	rootCmd.AddCommand(
		airdrop.New(),
		db.New(),
		keystore.New(),
		probe.New(),
		program.NewInitialize(),
		program.NewState(),
		server.New(),
		token.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}

package program

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/util/command"
)

const stateKeypairFlag = "state-keypair"

// NewInitialize runs the initialize instruction of the workspace program.
func NewInitialize() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Creates a new program state account",
		Long: `Creates a new program state account with the initialize instruction.

The provider is configured from ANCHOR_PROVIDER_URL and ANCHOR_WALLET, the
program is looked up in the Anchor workspace by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keypairPath, err := cmd.Flags().GetString(stateKeypairFlag)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				_, err := Initialize(ctx, s.Program, keypairPath)
				return err
			})
		},
	}

	cmd.Flags().String(stateKeypairFlag, "", "keypair file of the state account (random if empty)")

	return cmd
}

// Initialize sends initialize and logs the transaction signature.
func Initialize(ctx context.Context, client *boomerfun.Client, keypairPath string) (*boomerfun.InitializeResult, error) {
	var state solana.PrivateKey
	if keypairPath != "" {
		key, err := keystore.LoadKeypairFile(keypairPath)
		if err != nil {
			return nil, err
		}
		state = key
	}

	res, err := client.Initialize(ctx, boomerfun.InitializeOptions{State: state})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize program state")
		return nil, err
	}

	log.Info().
		Str("signature", res.Signature.String()).
		Str("state", res.State.String()).
		Msg("Your transaction signature")

	return res, nil
}

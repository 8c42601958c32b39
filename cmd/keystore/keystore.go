package keystore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/util/command"
)

var errKeystorePathMissing = errors.New("IAO_KEYSTORE_PATH is not defined")

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newImport(),
		newAddress(),
	)
}

func newImport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <keypair-file>",
		Short: "Encrypts a solana-keygen keypair file into the keystore",
		Long: `Encrypts a solana-keygen keypair file into the keystore at IAO_KEYSTORE_PATH.

The password is taken from IAO_KEYSTORE_PASSWORD or read from the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := command.Config()
			config.SetupLogger(cfg.Logger)

			password, err := keystore.PasswordOrPrompt(cfg.Keystore.Password, "Keystore password: ")
			if err != nil {
				return err
			}

			ks, err := Import(cmd.Context(), cfg.Keystore, args[0], password, nil)
			if err != nil {
				return err
			}

			fmt.Println(ks.Address)

			return nil
		},
	}

	return cmd
}

func newAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Prints the wallet address stored in the keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := command.Config()
			if cfg.Keystore.Path == "" {
				return errKeystorePathMissing
			}

			ks, err := keystore.NewService(cfg.Keystore.Path, nil).GetKeystore(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(ks.Address)

			return nil
		},
	}
}

// Import encrypts the keypair at keypairPath with password. A nil params
// uses the default scrypt cost.
func Import(ctx context.Context, cfg config.Keystore, keypairPath string, password string, params *keystore.ScryptParams) (*keystore.KeystoreJSON, error) {
	if cfg.Path == "" {
		return nil, errKeystorePathMissing
	}

	key, err := keystore.LoadKeypairFile(keypairPath)
	if err != nil {
		return nil, err
	}

	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	return keystore.NewService(cfg.Path, params).CreateKeystore(ctx, key, password)
}

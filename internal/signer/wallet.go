package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/util"
)

var ErrWalletNotConfigured = errors.New("ANCHOR_WALLET is not defined")

// LoadWallet initializes a Manager from the configured wallet source.
// An existing encrypted keystore takes precedence over the plain ANCHOR_WALLET
// keypair file; a missing keystore password is asked for on the terminal.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func LoadWallet(ctx context.Context, cfg config.Server) (Manager, error) {
	log := util.LogFromContext(ctx)
	m := NewManager()

	useKeystore := false
	if cfg.Keystore.Path != "" {
		exists, err := keystore.NewService(cfg.Keystore.Path, nil).Exists(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check keystore")
		}

		// a configured but absent keystore is an error only without a keypair file
		useKeystore = exists || cfg.Provider.WalletPath == ""
		if !exists && !useKeystore {
			log.Debug().Str("path", cfg.Keystore.Path).Msg("Keystore not found, using ANCHOR_WALLET")
		}
	}

	switch {
	case useKeystore:
		svc := keystore.NewService(cfg.Keystore.Path, nil)

		ks, err := svc.GetKeystore(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load keystore")
		}

		password, err := keystore.PasswordOrPrompt(cfg.Keystore.Password, "Keystore password: ")
		if err != nil {
			return nil, err
		}

		key, err := svc.DecryptKey(ctx, ks, password)
		if err != nil {
			return nil, err
		}

		if err := m.Initialize(key); err != nil {
			return nil, err
		}

		log.Debug().Str("source", "keystore").Str("wallet", m.PublicKey().String()).Msg("Wallet loaded")
	case cfg.Provider.WalletPath != "":
		key, err := keystore.LoadKeypairFile(cfg.Provider.WalletPath)
		if err != nil {
			return nil, err
		}

		if err := m.Initialize(key); err != nil {
			return nil, err
		}

		log.Debug().Str("source", "keypair").Str("wallet", m.PublicKey().String()).Msg("Wallet loaded")
	default:
		return nil, ErrWalletNotConfigured
	}

	return m, nil
}

package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/util"
)

var (
	ErrKeystoreExists          = errors.New("keystore already exists")
	ErrKeystoreNotFound        = errors.New("keystore not found")
	ErrInvalidKeystorePassword = errors.New("invalid keystore password")
	ErrAddressMismatch         = errors.New("decrypted key does not match keystore address")
	ErrInvalidKeystore         = errors.New("invalid keystore file")
)

// Service provides keystore encryption and decryption functionality
type Service interface {
	// CreateKeystore encrypts a keypair and writes it to the keystore file
	CreateKeystore(ctx context.Context, key solana.PrivateKey, password string) (*KeystoreJSON, error)

	// DecryptKey decrypts the keypair from keystore
	DecryptKey(ctx context.Context, keystore *KeystoreJSON, password string) (solana.PrivateKey, error)

	// GetKeystore reads the keystore file
	GetKeystore(ctx context.Context) (*KeystoreJSON, error)

	// Exists checks if keystore exists
	Exists(ctx context.Context) (bool, error)
}

type service struct {
	path   string
	params *ScryptParams
}

// NewService creates a file backed keystore service. A nil params uses DefaultScryptParams.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(path string, params *ScryptParams) Service {
	if params == nil {
		params = DefaultScryptParams()
	}

	return &service{
		path:   config.ExpandHome(path),
		params: params,
	}
}

// CreateKeystore encrypts a keypair and writes it to the keystore file
func (s *service) CreateKeystore(ctx context.Context, key solana.PrivateKey, password string) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx)

	if err := ValidateKeypair(key); err != nil {
		return nil, errors.Wrap(err, "invalid keypair")
	}

	exists, err := s.Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}
	if exists {
		return nil, ErrKeystoreExists
	}

	keystoreJSON, err := encryptKey(key, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt keypair")
		return nil, errors.Wrap(err, "failed to encrypt keypair")
	}

	data, err := json.MarshalIndent(keystoreJSON, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	//nolint:mnd // owner only directory
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create keystore directory")
	}

	//nolint:mnd // owner only file
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to write keystore")
		return nil, errors.Wrap(err, "failed to write keystore")
	}

	log.Info().Str("address", keystoreJSON.Address).Str("path", s.path).Msg("Keystore created")

	return keystoreJSON, nil
}

// DecryptKey decrypts the keypair from keystore and checks it against the stored address
func (s *service) DecryptKey(ctx context.Context, keystore *KeystoreJSON, password string) (solana.PrivateKey, error) {
	log := util.LogFromContext(ctx)

	key, err := decryptKey(keystore, password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decrypt keypair")
		return nil, errors.Wrap(err, "failed to decrypt keypair")
	}

	if err := ValidateKeypair(key); err != nil {
		return nil, errors.Wrap(err, "decrypted keypair is invalid")
	}

	if keystore.Address != "" && key.PublicKey().String() != keystore.Address {
		return nil, ErrAddressMismatch
	}

	return key, nil
}

// GetKeystore reads the keystore file
func (s *service) GetKeystore(_ context.Context) (*KeystoreJSON, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeystoreNotFound
		}
		return nil, errors.Wrap(err, "failed to read keystore")
	}

	var keystoreJSON KeystoreJSON
	if err := json.Unmarshal(data, &keystoreJSON); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &keystoreJSON, nil
}

// Exists checks if keystore exists
func (s *service) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, errors.Wrap(err, "failed to stat keystore")
}

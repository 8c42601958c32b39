package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/config"
)

var ErrInvalidKeypair = errors.New("invalid ed25519 keypair")

// ValidateKeypair checks that key is a 64 byte seed||pubkey pair whose
// public half matches the seed.
func ValidateKeypair(key solana.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return errors.Wrapf(ErrInvalidKeypair, "expected %d bytes, got %d", ed25519.PrivateKeySize, len(key))
	}

	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return errors.Wrap(ErrInvalidKeypair, "public key does not match seed")
	}

	return nil
}

// LoadKeypairFile reads a keypair in the solana-keygen JSON byte array format.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	path = config.ExpandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair file %s", path)
	}

	var raw []byte
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, errors.Wrapf(err, "failed to parse keypair file %s", path)
	}
	for _, i := range ints {
		if i < 0 || i > 255 {
			return nil, errors.Wrapf(ErrInvalidKeypair, "byte out of range in %s", path)
		}
		raw = append(raw, byte(i))
	}

	key := solana.PrivateKey(raw)
	if err := ValidateKeypair(key); err != nil {
		return nil, errors.Wrapf(err, "keypair file %s", path)
	}

	return key, nil
}

// SaveKeypairFile writes key in the solana-keygen JSON byte array format.
func SaveKeypairFile(path string, key solana.PrivateKey) error {
	if err := ValidateKeypair(key); err != nil {
		return err
	}

	path = config.ExpandHome(path)

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	data, err := json.Marshal(ints)
	if err != nil {
		return errors.Wrap(err, "failed to marshal keypair")
	}

	//nolint:mnd // owner only directory
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create keypair directory")
	}

	//nolint:mnd // owner only file
	return errors.Wrap(os.WriteFile(path, data, 0o600), "failed to write keypair file")
}

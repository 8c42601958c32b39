package keystore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/keystore"
)

func TestKeystoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wallet", "keystore.json")
	svc := keystore.NewService(path, keystore.LightScryptParams())

	exists, err := svc.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.GetKeystore(ctx)
	require.ErrorIs(t, err, keystore.ErrKeystoreNotFound)

	key := solana.NewWallet().PrivateKey

	ks, err := svc.CreateKeystore(ctx, key, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 3, ks.Version)
	assert.Equal(t, key.PublicKey().String(), ks.Address)
	assert.Equal(t, "scrypt", ks.Crypto.KDF)
	assert.Equal(t, "aes-128-ctr", ks.Crypto.Cipher)

	_, err = svc.CreateKeystore(ctx, key, "hunter2")
	require.ErrorIs(t, err, keystore.ErrKeystoreExists)

	loaded, err := svc.GetKeystore(ctx)
	require.NoError(t, err)
	assert.Equal(t, ks.ID, loaded.ID)

	decrypted, err := svc.DecryptKey(ctx, loaded, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, key, decrypted)

	_, err = svc.DecryptKey(ctx, loaded, "wrong")
	require.ErrorIs(t, err, keystore.ErrInvalidKeystorePassword)
}

func TestKeystoreAddressMismatch(t *testing.T) {
	ctx := context.Background()
	svc := keystore.NewService(filepath.Join(t.TempDir(), "ks.json"), keystore.LightScryptParams())

	ks, err := svc.CreateKeystore(ctx, solana.NewWallet().PrivateKey, "pw")
	require.NoError(t, err)

	ks.Address = solana.NewWallet().PublicKey().String()

	_, err = svc.DecryptKey(ctx, ks, "pw")
	require.ErrorIs(t, err, keystore.ErrAddressMismatch)
}

func TestKeystoreDecryptUsesStoredParams(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ks.json")
	key := solana.NewWallet().PrivateKey

	_, err := keystore.NewService(path, keystore.LightScryptParams()).CreateKeystore(ctx, key, "pw")
	require.NoError(t, err)

	svc := keystore.NewService(path, nil)
	ks, err := svc.GetKeystore(ctx)
	require.NoError(t, err)
	assert.Equal(t, keystore.LightScryptParams().N, ks.Crypto.KDFParams.N)

	decrypted, err := svc.DecryptKey(ctx, ks, "pw")
	require.NoError(t, err)
	assert.Equal(t, key, decrypted)
}

func TestKeystoreShortDerivedKey(t *testing.T) {
	ctx := context.Background()
	svc := keystore.NewService(filepath.Join(t.TempDir(), "ks.json"), keystore.LightScryptParams())

	ks, err := svc.CreateKeystore(ctx, solana.NewWallet().PrivateKey, "pw")
	require.NoError(t, err)

	ks.Crypto.KDFParams.DKLen = 16

	_, err = svc.DecryptKey(ctx, ks, "pw")
	require.ErrorIs(t, err, keystore.ErrInvalidKeystore)
}

func TestKeypairFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	key := solana.NewWallet().PrivateKey

	require.NoError(t, keystore.SaveKeypairFile(path, key))

	loaded, err := keystore.LoadKeypairFile(path)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())

	_, err = keystore.LoadKeypairFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestValidateKeypair(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	require.NoError(t, keystore.ValidateKeypair(key))

	require.ErrorIs(t, keystore.ValidateKeypair(key[:32]), keystore.ErrInvalidKeypair)

	broken := append(solana.PrivateKey(nil), key...)
	broken[63] ^= 0xff
	require.ErrorIs(t, keystore.ValidateKeypair(broken), keystore.ErrInvalidKeypair)
}

func TestPasswordOrPrompt(t *testing.T) {
	pw, err := keystore.PasswordOrPrompt("given", "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "given", pw)
}

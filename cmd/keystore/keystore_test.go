package keystore_test

import (
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cmdkeystore "github/chapool/iao-solana/cmd/keystore"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/keystore"
)

func TestImport(t *testing.T) {
	dir := t.TempDir()
	key := solana.NewWallet().PrivateKey
	keypairPath := filepath.Join(dir, "id.json")
	require.NoError(t, keystore.SaveKeypairFile(keypairPath, key))

	cfg := config.Keystore{Path: filepath.Join(dir, "keystore.json")}

	ks, err := cmdkeystore.Import(t.Context(), cfg, keypairPath, "secret", keystore.LightScryptParams())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().String(), ks.Address)

	svc := keystore.NewService(cfg.Path, keystore.LightScryptParams())
	stored, err := svc.GetKeystore(t.Context())
	require.NoError(t, err)

	decrypted, err := svc.DecryptKey(t.Context(), stored, "secret")
	require.NoError(t, err)
	assert.Equal(t, key, decrypted)

	_, err = cmdkeystore.Import(t.Context(), cfg, keypairPath, "secret", keystore.LightScryptParams())
	require.ErrorIs(t, err, keystore.ErrKeystoreExists)
}

func TestImportErrors(t *testing.T) {
	_, err := cmdkeystore.Import(t.Context(), config.Keystore{}, "id.json", "secret", nil)
	require.Error(t, err)

	cfg := config.Keystore{Path: filepath.Join(t.TempDir(), "keystore.json")}
	_, err = cmdkeystore.Import(t.Context(), cfg, filepath.Join(t.TempDir(), "missing.json"), "secret", nil)
	require.Error(t, err)
}

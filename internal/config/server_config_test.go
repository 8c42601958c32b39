package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestProviderFromEnv(t *testing.T) {
	t.Setenv("ANCHOR_PROVIDER_URL", "http://127.0.0.1:8899")
	t.Setenv("ANCHOR_WALLET", "/tmp/id.json")
	t.Setenv("IAO_RPC_FALLBACK_URLS", "http://127.0.0.1:8999")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "/tmp/id.json", cfg.Provider.WalletPath)
	assert.Equal(t, []string{"http://127.0.0.1:8899", "http://127.0.0.1:8999"}, cfg.Provider.URLs())
	assert.Equal(t, "IaoSolana", cfg.Program.WorkspaceName)
	assert.Equal(t, "confirmed", cfg.Provider.Commitment)
}

func TestConnectionString(t *testing.T) {
	db := config.Database{Host: "h", Port: 5432, Username: "u", Password: "p", Database: "d"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.ConnectionString())
}

const anchorToml = `
[features]
seeds = false

[programs.localnet]
iao_solana = "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE"

[programs.devnet]
iao_solana = { address = "11111111111111111111111111111111", idl = "target/idl/iao_solana.json" }

[provider]
cluster = "Localnet"
wallet = "~/.config/solana/id.json"

[scripts]
test = "yarn run ts-mocha -p ./tsconfig.json -t 1000000 tests/**/*.ts"
`

func TestLoadAnchorToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.AnchorTomlFile), []byte(anchorToml), 0o600))

	manifest, err := config.LoadAnchorToml(dir)
	require.NoError(t, err)

	addr, ok := manifest.ProgramAddress("localnet", "iao_solana")
	require.True(t, ok)
	assert.Equal(t, "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE", addr)

	addr, ok = manifest.ProgramAddress("devnet", "iao_solana")
	require.True(t, ok)
	assert.Equal(t, "11111111111111111111111111111111", addr)

	_, ok = manifest.ProgramAddress("mainnet", "iao_solana")
	assert.False(t, ok)

	assert.NotContains(t, manifest.WalletPath(), "~")
	assert.Contains(t, manifest.Scripts["test"], "ts-mocha")

	cfg := config.Server{}
	require.NoError(t, cfg.ApplyAnchorToml(manifest))
	assert.Equal(t, "http://127.0.0.1:8899", cfg.Provider.URL)
	assert.Equal(t, "localnet", cfg.Program.Cluster)
	assert.Equal(t, manifest.WalletPath(), cfg.Provider.WalletPath)
}

func TestLoadAnchorTomlMissing(t *testing.T) {
	_, err := config.LoadAnchorToml(t.TempDir())
	require.Error(t, err)
}

func TestClusterURL(t *testing.T) {
	url, err := config.ClusterURL("Devnet")
	require.NoError(t, err)
	assert.Equal(t, "https://api.devnet.solana.com", url)

	url, err = config.ClusterURL("http://10.0.0.1:8899")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8899", url)

	_, err = config.ClusterURL("moon")
	require.ErrorIs(t, err, config.ErrUnknownCluster)

	assert.Equal(t, "localnet", config.ClusterName("http://127.0.0.1:8899"))
	assert.Equal(t, "devnet", config.ClusterName("https://api.devnet.solana.com"))
}

package anchor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/test"
)

func envConfig(t *testing.T, url string, walletPath string) config.Server {
	t.Helper()

	cfg := config.Server{}
	cfg.Provider.URL = url
	cfg.Provider.WalletPath = walletPath
	cfg.Provider.Commitment = "finalized"
	cfg.Provider.PreflightCommitment = "processed"
	cfg.Provider.PollInterval = 5 * time.Millisecond
	cfg.Provider.ConfirmTimeout = 5 * time.Second
	cfg.Program.WorkspaceName = "DemoProgram"
	cfg.Program.WorkspaceDir = writeWorkspace(t, "")

	return cfg
}

func TestNewEnv(t *testing.T) {
	v := test.NewFakeValidator(t)
	walletPath, key := writeKeypair(t)

	env, err := anchor.NewEnv(context.Background(), envConfig(t, v.URL(), walletPath), metrics.New())
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, key.PublicKey(), env.Provider.Wallet.PublicKey())
	assert.Equal(t, rpc.CommitmentFinalized, env.Provider.Opts.Commitment)
	assert.Equal(t, rpc.CommitmentProcessed, env.Provider.Opts.PreflightCommitment)
	assert.Equal(t, 5*time.Second, env.Provider.Opts.Timeout)

	program, err := env.Program()
	require.NoError(t, err)
	assert.Equal(t, demoProgramID, program.ID().String())

	state := solana.NewWallet().PrivateKey
	sig, err := program.Methods("initialize").
		Accounts(anchor.Accounts{"program_state": state.PublicKey()}).
		Signers(state).
		RPC(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)

	env.Close()
	assert.False(t, env.Wallet.IsInitialized())
}

func TestNewEnvProgramIDOverride(t *testing.T) {
	v := test.NewFakeValidator(t)
	walletPath, _ := writeKeypair(t)

	override := solana.NewWallet().PublicKey()
	cfg := envConfig(t, v.URL(), walletPath)
	cfg.Program.ProgramID = override.String()

	env, err := anchor.NewEnv(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer env.Close()

	program, err := env.Program()
	require.NoError(t, err)
	assert.Equal(t, override, program.ID())

	env.Config.Program.ProgramID = "not-base58"
	_, err = env.Program()
	require.Error(t, err)
}

func TestNewEnvFromAnchorToml(t *testing.T) {
	walletPath, key := writeKeypair(t)

	dir := writeWorkspace(t, `
[provider]
cluster = "localnet"
wallet = "`+walletPath+`"
`)

	cfg := config.Server{}
	cfg.Program.WorkspaceDir = dir
	cfg.Program.WorkspaceName = "DemoProgram"

	env, err := anchor.NewEnv(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "http://127.0.0.1:8899", env.Config.Provider.URL)
	assert.Equal(t, "localnet", env.Config.Program.Cluster)
	assert.Equal(t, key.PublicKey(), env.Wallet.PublicKey())
}

func TestNewEnvMissingConfiguration(t *testing.T) {
	walletPath, _ := writeKeypair(t)

	cfg := envConfig(t, "", walletPath)
	_, err := anchor.NewEnv(context.Background(), cfg, nil)
	require.ErrorIs(t, err, anchor.ErrProviderURLMissing)

	cfg = envConfig(t, "http://127.0.0.1:8899", "")
	_, err = anchor.NewEnv(context.Background(), cfg, nil)
	require.ErrorIs(t, err, anchor.ErrWalletNotConfigured)

	cfg = envConfig(t, "http://127.0.0.1:8899", filepath.Join(t.TempDir(), "missing.json"))
	_, err = anchor.NewEnv(context.Background(), cfg, nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfirmOptionsFromConfig(t *testing.T) {
	opts := anchor.ConfirmOptionsFromConfig(config.Provider{Commitment: "bogus", SkipPreflight: true})
	assert.Equal(t, rpc.CommitmentConfirmed, opts.Commitment)
	assert.True(t, opts.SkipPreflight)
	assert.Equal(t, anchor.DefaultConfirmOptions().Timeout, opts.Timeout)
	assert.Equal(t, anchor.DefaultConfirmOptions().PollInterval, opts.PollInterval)
}

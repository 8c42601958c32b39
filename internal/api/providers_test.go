package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/test"
)

func TestNewEnvCleanupWipesWallet(t *testing.T) {
	v := test.NewFakeValidator(t)
	cfg, wallet := test.NewTestServerConfig(t, v)

	env, cleanup, err := api.NewEnv(context.Background(), cfg, metrics.New())
	require.NoError(t, err)
	require.True(t, env.Wallet.IsInitialized())
	assert.Equal(t, wallet.PublicKey(), env.Wallet.PublicKey())

	cleanup()
	assert.False(t, env.Wallet.IsInitialized())
}

func TestProvideDBDisabled(t *testing.T) {
	v := test.NewFakeValidator(t)
	cfg, _ := test.NewTestServerConfig(t, v)
	cfg.Ledger.Enabled = false

	db, cleanup, err := api.ProvideDB(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, db)

	// a nil database must not panic on cleanup
	cleanup()
}

func TestInitNewServerFailureAfterEnv(t *testing.T) {
	v := test.NewFakeValidator(t)

	cfg, _ := test.NewTestServerConfig(t, v)
	cfg.Program.ProgramID = "not-a-public-key"

	s, cleanup, err := api.InitNewServerWithDB(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Nil(t, cleanup)

	cfg, _ = test.NewTestServerConfig(t, v)
	cfg.Program.StateAddress = "not-a-public-key"

	s, cleanup, err = api.InitNewServerWithDB(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Nil(t, cleanup)
}

func TestInitNewServerWithDB(t *testing.T) {
	v := test.NewFakeValidator(t)
	cfg, _ := test.NewTestServerConfig(t, v)

	s, cleanup, err := api.InitNewServerWithDB(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	require.True(t, s.Env.Wallet.IsInitialized())

	cleanup()
	assert.False(t, s.Env.Wallet.IsInitialized())
}

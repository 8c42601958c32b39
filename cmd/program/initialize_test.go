package program_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/cmd/program"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/test"
	"github/chapool/iao-solana/internal/util/command"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	return &buf
}

func TestInitialize(t *testing.T) {
	v := test.NewFakeValidator(t)
	test.NewIaoProgram(t, v)
	cfg, _ := test.NewTestServerConfig(t, v)
	buf := captureLog(t)

	var res *boomerfun.InitializeResult
	err := command.WithServer(t.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		var err error
		res, err = program.Initialize(ctx, s.Program, "")
		return err
	})
	require.NoError(t, err)

	require.NotNil(t, res)
	assert.NotEqual(t, solana.Signature{}, res.Signature)
	assert.Contains(t, buf.String(), `"message":"Your transaction signature"`)
	assert.Contains(t, buf.String(), res.Signature.String())

	_, ok := v.Account(res.State)
	assert.True(t, ok)
}

func TestInitializeStateKeypair(t *testing.T) {
	v := test.NewFakeValidator(t)
	test.NewIaoProgram(t, v)
	cfg, _ := test.NewTestServerConfig(t, v)

	key := solana.NewWallet().PrivateKey
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, keystore.SaveKeypairFile(path, key))

	err := command.WithServer(t.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		res, err := program.Initialize(ctx, s.Program, path)
		require.NoError(t, err)
		assert.Equal(t, key.PublicKey(), res.State)

		_, err = program.Initialize(ctx, s.Program, filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)

		return nil
	})
	require.NoError(t, err)
	assert.Len(t, v.Sent(), 1)
}

func TestInitializeProgramRejects(t *testing.T) {
	v := test.NewFakeValidator(t)
	cfg, _ := test.NewTestServerConfig(t, v)

	v.OnTransaction = func(*test.FakeValidator, *solana.Transaction) error {
		return &test.ProgramFailure{Instruction: 0, Code: 3012}
	}

	err := command.WithServer(t.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		_, err := program.Initialize(ctx, s.Program, "")
		return err
	})

	var pe *anchor.ProgramError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(3012), pe.Code)
	assert.Empty(t, v.Sent())
}

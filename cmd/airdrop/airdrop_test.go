package airdrop_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/cmd/airdrop"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/test"
)

func TestAirdrop(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		sig, err := airdrop.Airdrop(t.Context(), ts.Server, "", 5*solana.LAMPORTS_PER_SOL)
		require.NoError(t, err)
		assert.NotEqual(t, solana.Signature{}, sig)

		acc, ok := ts.Validator.Account(ts.Wallet.PublicKey())
		require.True(t, ok)
		assert.Equal(t, 5*solana.LAMPORTS_PER_SOL, acc.Lamports)

		other := solana.NewWallet().PublicKey()
		_, err = airdrop.Airdrop(t.Context(), ts.Server, other.String(), 10)
		require.NoError(t, err)

		acc, ok = ts.Validator.Account(other)
		require.True(t, ok)
		assert.Equal(t, uint64(10), acc.Lamports)

		_, err = airdrop.Airdrop(t.Context(), ts.Server, "bogus", 10)
		require.ErrorIs(t, err, boomerfun.ErrInvalidParams)
	})
}

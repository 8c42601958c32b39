package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/ledger"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	mem := ledger.NewMemory()

	for _, tx := range []*ledger.Transaction{
		{Signature: "a", Instruction: "initialize"},
		{Signature: "b", Instruction: "purchase_token", Status: ledger.StatusConfirmed},
		{Signature: "c", Instruction: "purchase_token", Status: ledger.StatusFailed},
	} {
		require.NoError(t, mem.Record(ctx, tx))
		assert.NotEmpty(t, tx.ID)
	}

	a, err := mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, a.Status)

	require.NoError(t, mem.MarkConfirmed(ctx, "a", 42))
	a, err = mem.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, a.Status)
	assert.Equal(t, int64(42), a.Slot.Int64)

	require.NoError(t, mem.MarkFailed(ctx, "b", "custom program error: 0x1770"))
	b, err := mem.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, b.Status)
	assert.Equal(t, "custom program error: 0x1770", b.Error.String)

	require.ErrorIs(t, mem.MarkFailed(ctx, "missing", "x"), ledger.ErrNotFound)
	_, err = mem.Get(ctx, "missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	all, err := mem.List(ctx, ledger.ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Signature)

	purchases, err := mem.List(ctx, ledger.ListParams{Instruction: "purchase_token", Offset: 1})
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "b", purchases[0].Signature)

	failed, err := mem.List(ctx, ledger.ListParams{Status: ledger.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "c", failed[0].Signature)
	assert.Equal(t, "b", failed[1].Signature)

	// recording a known signature only updates its status
	require.NoError(t, mem.Record(ctx, &ledger.Transaction{Signature: "c", Status: ledger.StatusConfirmed}))
	c, err := mem.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusConfirmed, c.Status)
	assert.Equal(t, "purchase_token", c.Instruction)
}

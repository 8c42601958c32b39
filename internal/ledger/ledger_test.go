package ledger_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/ledger"
)

var columns = []string{
	"id", "signature", "program_id", "instruction", "wallet", "program_state",
	"status", "slot", "args", "error", "created_at", "updated_at",
}

func newMock(t *testing.T) (*ledger.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return ledger.NewStore(db), mock
}

func TestRecord(t *testing.T) {
	store, mock := newMock(t)

	tx := &ledger.Transaction{
		Signature:   "5sig",
		ProgramID:   "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE",
		Instruction: "initialize",
		Wallet:      "wallet",
		Status:      ledger.StatusConfirmed,
	}
	require.NoError(t, tx.SetArgs(map[string]any{"tokenId": 1}))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "5sig", tx.ProgramID, "initialize", "wallet", nil,
			"confirmed", nil, []byte(`{"tokenId":1}`), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Record(context.Background(), tx))
	assert.Len(t, tx.ID, 36)
	assert.False(t, tx.CreatedAt.IsZero())
}

func TestRecordDefaultsToPending(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(sqlmock.AnyArg(), "sig", "", "", "", nil, "pending", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	tx := &ledger.Transaction{Signature: "sig"}
	err := store.Record(context.Background(), tx)
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, ledger.StatusPending, tx.Status)
}

func TestMarkConfirmedAndFailed(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
		WithArgs("sig", "confirmed", int64(42), nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.MarkConfirmed(context.Background(), "sig", 42))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
		WithArgs("sig", "failed", nil, "Invalid amount", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.MarkFailed(context.Background(), "sig", "Invalid amount"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, store.MarkFailed(context.Background(), "unknown", "x"), ledger.ErrNotFound)
}

func TestGet(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE signature = $1")).
		WithArgs("sig").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"6b3a3a0e-8d43-4d6a-9b7c-2c1c0f7bb8a1", "sig", "prog", "initialize", "wallet", "state",
			"confirmed", int64(7), []byte(`{}`), nil, now, now,
		))

	tx, err := store.Get(context.Background(), "sig")
	require.NoError(t, err)
	assert.Equal(t, "initialize", tx.Instruction)
	assert.Equal(t, ledger.StatusConfirmed, tx.Status)
	assert.Equal(t, "state", tx.ProgramState.String)
	assert.True(t, tx.Slot.Valid)
	assert.Equal(t, int64(7), tx.Slot.Int64)
	assert.False(t, tx.Error.Valid)
	assert.Equal(t, now, tx.CreatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE signature = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestList(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("purchase_token", "", ledger.MaxListLimit, 0).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-1", "sig-1", "prog", "purchase_token", "wallet", "state", "confirmed", nil, nil, nil, now, now).
			AddRow("id-2", "sig-2", "prog", "purchase_token", "wallet", "state", "failed", nil, nil, "Invalid token ID", now, now))

	txs, err := store.List(context.Background(), ledger.ListParams{Instruction: "purchase_token", Limit: 10_000, Offset: -5})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "sig-1", txs[0].Signature)
	assert.Equal(t, "Invalid token ID", txs[1].Error.String)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("", "pending", ledger.DefaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows(columns))

	txs, err = store.List(context.Background(), ledger.ListParams{Status: ledger.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.NotNil(t, txs)
}

func TestNoop(t *testing.T) {
	var l ledger.Ledger = ledger.Noop{}
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, &ledger.Transaction{}))
	require.NoError(t, l.MarkConfirmed(ctx, "sig", 1))
	require.NoError(t, l.MarkFailed(ctx, "sig", "x"))

	txs, err := l.List(ctx, ledger.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = l.Get(ctx, "sig")
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMigrationsEmbedded(t *testing.T) {
	migrations, err := ledger.Migrations().FindMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, "20251019120000-create-transactions.sql", migrations[0].Id)
	assert.NotEmpty(t, migrations[0].Up)
	assert.NotEmpty(t, migrations[0].Down)
}

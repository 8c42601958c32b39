// Package ledger keeps a PostgreSQL record of the program transactions this
// client submitted.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/util"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

var ErrNotFound = errors.New("transaction not found in ledger")

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Transaction is one row of the transactions table.
type Transaction struct {
	ID           string      `boil:"id" json:"id"`
	Signature    string      `boil:"signature" json:"signature"`
	ProgramID    string      `boil:"program_id" json:"programId"`
	Instruction  string      `boil:"instruction" json:"instruction"`
	Wallet       string      `boil:"wallet" json:"wallet"`
	ProgramState null.String `boil:"program_state" json:"programState"`
	Status       Status      `boil:"status" json:"status"`
	Slot         null.Int64  `boil:"slot" json:"slot"`
	Args         null.JSON   `boil:"args" json:"args"`
	Error        null.String `boil:"error" json:"error"`
	CreatedAt    time.Time   `boil:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `boil:"updated_at" json:"updatedAt"`
}

// SetArgs stores the instruction arguments as JSON.
func (t *Transaction) SetArgs(args any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return errors.Wrap(err, "failed to marshal instruction args")
	}

	t.Args = null.JSONFrom(raw)

	return nil
}

type ListParams struct {
	Instruction string
	Status      Status
	Limit       int
	Offset      int
}

// Ledger records submitted transactions.
type Ledger interface {
	Record(ctx context.Context, tx *Transaction) error
	MarkConfirmed(ctx context.Context, signature string, slot uint64) error
	MarkFailed(ctx context.Context, signature string, reason string) error
	Get(ctx context.Context, signature string) (*Transaction, error)
	List(ctx context.Context, params ListParams) ([]*Transaction, error)
}

const transactionColumns = `id, signature, program_id, instruction, wallet, program_state, status, slot, args, error, created_at, updated_at`

// Store is the PostgreSQL Ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: time.Now,
	}
}

// Record inserts tx. Recording the same signature again updates its status.
func (s *Store) Record(ctx context.Context, tx *Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = StatusPending
	}

	now := s.now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := queries.Raw(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (signature) DO UPDATE
		SET status = EXCLUDED.status, slot = EXCLUDED.slot, error = EXCLUDED.error, updated_at = EXCLUDED.updated_at`,
		tx.ID, tx.Signature, tx.ProgramID, tx.Instruction, tx.Wallet, tx.ProgramState,
		string(tx.Status), tx.Slot, tx.Args, tx.Error, tx.CreatedAt, tx.UpdatedAt,
	).ExecContext(ctx, s.db)
	if err != nil {
		util.LogFromContext(ctx).Error().Err(err).Str("signature", tx.Signature).Msg("Failed to record transaction")
		return errors.Wrap(err, "failed to record transaction")
	}

	return nil
}

func (s *Store) MarkConfirmed(ctx context.Context, signature string, slot uint64) error {
	return s.updateStatus(ctx, signature, StatusConfirmed, null.Int64From(int64(slot)), null.String{}) //nolint:gosec // slots fit into int64
}

func (s *Store) MarkFailed(ctx context.Context, signature string, reason string) error {
	return s.updateStatus(ctx, signature, StatusFailed, null.Int64{}, null.StringFrom(reason))
}

func (s *Store) updateStatus(ctx context.Context, signature string, status Status, slot null.Int64, reason null.String) error {
	res, err := queries.Raw(`
		UPDATE transactions
		SET status = $2, slot = COALESCE($3, slot), error = $4, updated_at = $5
		WHERE signature = $1`,
		signature, string(status), slot, reason, s.now().UTC(),
	).ExecContext(ctx, s.db)
	if err != nil {
		return errors.Wrapf(err, "failed to mark transaction %s %s", signature, status)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "signature %s", signature)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, signature string) (*Transaction, error) {
	var tx Transaction

	err := queries.Raw(`SELECT `+transactionColumns+` FROM transactions WHERE signature = $1`, signature).
		Bind(ctx, s.db, &tx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "signature %s", signature)
		}
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	return &tx, nil
}

func (s *Store) List(ctx context.Context, params ListParams) ([]*Transaction, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(params.Offset, 0)

	var txs []*Transaction

	err := queries.Raw(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE ($1 = '' OR instruction = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		params.Instruction, string(params.Status), limit, offset,
	).Bind(ctx, s.db, &txs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	if txs == nil {
		txs = []*Transaction{}
	}

	return txs, nil
}

// Noop is the Ledger used when no database is configured.
type Noop struct{}

func (Noop) Record(context.Context, *Transaction) error { return nil }
func (Noop) MarkConfirmed(context.Context, string, uint64) error { return nil }
func (Noop) MarkFailed(context.Context, string, string) error { return nil }
func (Noop) List(context.Context, ListParams) ([]*Transaction, error) { return []*Transaction{}, nil }

func (Noop) Get(_ context.Context, signature string) (*Transaction, error) {
	return nil, errors.Wrapf(ErrNotFound, "signature %s (ledger disabled)", signature)
}

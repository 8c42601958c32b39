package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Memory is a process local Ledger for setups without a database.
type Memory struct {
	mu  sync.RWMutex
	txs []*Transaction
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Record(_ context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()

	for _, existing := range m.txs {
		if existing.Signature == tx.Signature {
			existing.Status = tx.Status
			existing.Slot = tx.Slot
			existing.Error = tx.Error
			existing.UpdatedAt = now
			return nil
		}
	}

	cp := *tx
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = StatusPending
	}
	cp.CreatedAt = now
	cp.UpdatedAt = now

	tx.ID, tx.Status, tx.CreatedAt, tx.UpdatedAt = cp.ID, cp.Status, cp.CreatedAt, cp.UpdatedAt
	m.txs = append(m.txs, &cp)

	return nil
}

func (m *Memory) MarkConfirmed(_ context.Context, signature string, slot uint64) error {
	return m.update(signature, func(tx *Transaction) {
		tx.Status = StatusConfirmed
		tx.Slot = null.Int64From(int64(slot)) //nolint:gosec // slots fit into int64
		tx.Error = null.String{}
	})
}

func (m *Memory) MarkFailed(_ context.Context, signature string, reason string) error {
	return m.update(signature, func(tx *Transaction) {
		tx.Status = StatusFailed
		tx.Error = null.StringFrom(reason)
	})
}

func (m *Memory) update(signature string, fn func(tx *Transaction)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range m.txs {
		if tx.Signature == signature {
			fn(tx)
			tx.UpdatedAt = m.now().UTC()
			return nil
		}
	}

	return errors.Wrapf(ErrNotFound, "signature %s", signature)
}

func (m *Memory) Get(_ context.Context, signature string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, tx := range m.txs {
		if tx.Signature == signature {
			cp := *tx
			return &cp, nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "signature %s", signature)
}

// List returns the newest transactions first.
func (m *Memory) List(_ context.Context, params ListParams) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset := max(params.Offset, 0)

	txs := []*Transaction{}
	skipped := 0

	for i := len(m.txs) - 1; i >= 0 && len(txs) < limit; i-- {
		tx := m.txs[i]
		if params.Instruction != "" && tx.Instruction != params.Instruction {
			continue
		}
		if params.Status != "" && tx.Status != params.Status {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}

		cp := *tx
		txs = append(txs, &cp)
	}

	return txs, nil
}

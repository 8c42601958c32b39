package boomerfun

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/util"
)

// SyncTransaction refreshes the ledger entry of sig from its on-chain
// status. A signature the ledger does not know is still reported if the
// cluster knows it.
func (c *Client) SyncTransaction(ctx context.Context, sig solana.Signature) (*ledger.Transaction, error) {
	log := util.LogFromContext(ctx).With().Str("signature", sig.String()).Logger()

	booked, err := c.ledger.Get(ctx, sig.String())
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return nil, err
	}

	provider := c.program.Provider()

	status, err := provider.Connection.SignatureStatus(ctx, sig, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get status of %s", sig)
	}

	if status == nil {
		if booked == nil {
			return nil, errors.Wrapf(ledger.ErrNotFound, "signature %s is unknown to ledger and cluster", sig)
		}
		return booked, nil
	}

	if booked == nil {
		tx := &ledger.Transaction{
			Signature: sig.String(),
			ProgramID: c.program.ID().String(),
			Status:    ledger.StatusPending,
		}
		tx.Slot = null.Int64From(int64(status.Slot)) //nolint:gosec // slots fit into int64
		switch {
		case status.Err != nil:
			tx.Status = ledger.StatusFailed
			tx.Error = null.StringFrom((&anchor.TransactionError{Signature: sig, Err: status.Err}).Error())
		case anchor.CommitmentReached(status.ConfirmationStatus, provider.Opts.Commitment):
			tx.Status = ledger.StatusConfirmed
		}
		return tx, nil
	}

	switch {
	case status.Err != nil:
		reason := (&anchor.TransactionError{Signature: sig, Err: status.Err}).Error()
		err = c.ledger.MarkFailed(ctx, booked.Signature, reason)
	case anchor.CommitmentReached(status.ConfirmationStatus, provider.Opts.Commitment):
		err = c.ledger.MarkConfirmed(ctx, booked.Signature, status.Slot)
	default:
		log.Debug().Str("confirmation", string(status.ConfirmationStatus)).Msg("Transaction not yet at target commitment")
		return booked, nil
	}
	if err != nil {
		return nil, err
	}

	return c.ledger.Get(ctx, booked.Signature)
}

// Transactions lists the ledger.
func (c *Client) Transactions(ctx context.Context, params ledger.ListParams) ([]*ledger.Transaction, error) {
	return c.ledger.List(ctx, params)
}

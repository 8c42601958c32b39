package boomerfun

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/util"
)

// ReconcilePending syncs every pending ledger entry with the cluster and
// returns how many of them are no longer pending.
func (c *Client) ReconcilePending(ctx context.Context) (int, error) {
	log := util.LogFromContext(ctx)

	pending, err := c.ledger.List(ctx, ledger.ListParams{Status: ledger.StatusPending, Limit: ledger.MaxListLimit})
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, entry := range pending {
		sig, err := solana.SignatureFromBase58(entry.Signature)
		if err != nil {
			log.Warn().Err(err).Str("signature", entry.Signature).Msg("Skipping ledger entry with malformed signature")
			continue
		}

		tx, err := c.SyncTransaction(ctx, sig)
		if err != nil {
			log.Warn().Err(err).Str("signature", entry.Signature).Msg("Failed to sync pending transaction")
			continue
		}

		if tx.Status != ledger.StatusPending {
			resolved++
		}
	}

	return resolved, nil
}

// StartAutoReconcile launches a background task that periodically runs
// ReconcilePending until ctx is done.
func (c *Client) StartAutoReconcile(ctx context.Context, interval time.Duration) {
	log := util.LogFromContext(ctx)
	log.Info().Dur("interval", interval).Msg("Starting ledger reconciliation")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Ledger reconciliation stopped")
				return
			case <-ticker.C:
				n, err := c.ReconcilePending(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Ledger reconciliation failed")
					continue
				}
				if n > 0 {
					log.Debug().Int("resolved", n).Msg("Resolved pending transactions")
				}
			}
		}
	}()
}

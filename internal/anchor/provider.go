package anchor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/util"
)

// Connection is the subset of the Solana JSON-RPC API a provider needs.
type Connection interface {
	LatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, uint64, error)
	BlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature, searchHistory bool) (*rpc.SignatureStatusesResult, error)
	AccountInfo(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.Account, error)
}

// Wallet pays for and signs transactions.
type Wallet interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error
}

type ConfirmOptions struct {
	Commitment          rpc.CommitmentType
	PreflightCommitment rpc.CommitmentType
	SkipPreflight       bool
	// Timeout bounds the whole send-and-confirm round trip. Zero disables it.
	Timeout      time.Duration
	PollInterval time.Duration
}

func DefaultConfirmOptions() ConfirmOptions {
	return ConfirmOptions{
		Commitment:          rpc.CommitmentConfirmed,
		PreflightCommitment: rpc.CommitmentProcessed,
		Timeout:             60 * time.Second,
		PollInterval:        500 * time.Millisecond,
	}
}

// Provider bundles a cluster connection with the signing wallet.
type Provider struct {
	Connection Connection
	Wallet     Wallet
	Opts       ConfirmOptions
}

func NewProvider(conn Connection, wallet Wallet, opts ConfirmOptions) *Provider {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultConfirmOptions().PollInterval
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.PreflightCommitment == "" {
		opts.PreflightCommitment = opts.Commitment
	}

	return &Provider{
		Connection: conn,
		Wallet:     wallet,
		Opts:       opts,
	}
}

// Confirmed is a submitted transaction. Slot is set once it was confirmed.
type Confirmed struct {
	Signature solana.Signature
	Slot      uint64
}

// SendAndConfirm builds a transaction paid by the provider wallet, signs it
// with the wallet and extra signers, submits it and waits until it reaches
// the configured commitment. The signature is returned whenever the
// transaction was submitted, even if confirmation fails.
func (p *Provider) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	res, err := p.Send(ctx, instructions, signers...)
	return res.Signature, err
}

// Send is SendAndConfirm reporting the slot the transaction was confirmed in.
func (p *Provider) Send(ctx context.Context, instructions []solana.Instruction, signers ...solana.PrivateKey) (Confirmed, error) {
	log := util.LogFromContext(ctx)

	if p.Opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Opts.Timeout)
		defer cancel()
	}

	blockhash, lastValid, err := p.Connection.LatestBlockhash(ctx, p.Opts.PreflightCommitment)
	if err != nil {
		return Confirmed{}, errors.Wrap(err, "failed to get recent blockhash")
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(p.Wallet.PublicKey()))
	if err != nil {
		return Confirmed{}, errors.Wrap(err, "failed to build transaction")
	}

	if err := p.Wallet.SignTransaction(tx, signers...); err != nil {
		return Confirmed{}, errors.Wrap(err, "failed to sign transaction")
	}

	sig, err := p.Connection.SendTransaction(ctx, tx, rpc.TransactionOpts{
		Encoding:            solana.EncodingBase64,
		SkipPreflight:       p.Opts.SkipPreflight,
		PreflightCommitment: p.Opts.PreflightCommitment,
	})
	if err != nil {
		return Confirmed{}, err
	}

	log.Debug().Str("signature", sig.String()).Msg("Transaction submitted, waiting for confirmation")

	slot, err := p.Confirm(ctx, sig, lastValid)
	if err != nil {
		return Confirmed{Signature: sig}, err
	}

	return Confirmed{Signature: sig, Slot: slot}, nil
}

// Confirm polls the signature status until the configured commitment is
// reached, the transaction fails, the blockhash expires or ctx ends. It
// returns the slot of the confirmed transaction.
func (p *Provider) Confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (uint64, error) {
	ticker := time.NewTicker(p.Opts.PollInterval)
	defer ticker.Stop()

	for {
		status, err := p.Connection.SignatureStatus(ctx, sig, false)
		if err != nil && ctx.Err() == nil {
			util.LogFromContext(ctx).Debug().Err(err).Str("signature", sig.String()).Msg("Signature status poll failed, retrying")
		}

		if status != nil {
			if status.Err != nil {
				return status.Slot, &TransactionError{Signature: sig, Err: status.Err}
			}

			if CommitmentReached(status.ConfirmationStatus, p.Opts.Commitment) {
				return status.Slot, nil
			}
		} else if err == nil {
			height, herr := p.Connection.BlockHeight(ctx, p.Opts.Commitment)
			if herr == nil && height > lastValidBlockHeight {
				return 0, errors.Wrapf(ErrBlockhashExpired, "signature %s", sig)
			}
		}

		select {
		case <-ctx.Done():
			return 0, errors.Wrapf(ctx.Err(), "confirmation of %s aborted", sig)
		case <-ticker.C:
		}
	}
}

// CommitmentReached reports whether status satisfies the wanted commitment.
func CommitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status != ""
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}

// ParseCommitment maps the usual names to rpc commitments, defaulting to confirmed.
func ParseCommitment(s string) rpc.CommitmentType {
	switch rpc.CommitmentType(s) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return rpc.CommitmentType(s)
	default:
		return rpc.CommitmentConfirmed
	}
}

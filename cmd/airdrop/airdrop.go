package airdrop

import (
	"context"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util/command"
)

const defaultLamports = 2 * solana.LAMPORTS_PER_SOL

func New() *cobra.Command {
	var (
		lamports uint64
		to       string
	)

	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Requests lamports from a local validator or devnet faucet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				_, err := Airdrop(ctx, s, to, lamports)
				return err
			})
		},
	}

	cmd.Flags().Uint64Var(&lamports, "lamports", defaultLamports, "amount of lamports to request")
	cmd.Flags().StringVar(&to, "to", "", "recipient address (defaults to the wallet)")

	return cmd
}

// Airdrop requests lamports for to, or the wallet if to is empty, and waits
// until the airdrop reached the provider commitment.
func Airdrop(ctx context.Context, s *api.Server, to string, lamports uint64) (solana.Signature, error) {
	recipient := s.Program.Wallet()
	if to != "" {
		key, err := api.ParsePublicKey("to", to, true)
		if err != nil {
			return solana.Signature{}, err
		}
		recipient = key
	}

	provider := s.Program.Program().Provider()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, provider.Opts.Timeout)
	defer cancel()

	sig, err := s.Env.Client.RequestAirdrop(ctx, recipient, lamports, provider.Opts.Commitment)
	if err != nil {
		return solana.Signature{}, err
	}

	// airdrops carry no blockhash of ours, so only the timeout ends the wait
	if _, err := provider.Confirm(ctx, sig, math.MaxUint64); err != nil {
		return sig, err
	}

	balance, err := s.Env.Client.Balance(ctx, recipient, provider.Opts.Commitment)
	if err != nil {
		return sig, err
	}

	log.Info().
		Str("signature", sig.String()).
		Str("recipient", recipient.String()).
		Uint64("balance", balance).
		Dur("took", time.Since(started)).
		Msg("Airdrop confirmed")

	return sig, nil
}

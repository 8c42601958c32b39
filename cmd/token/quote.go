package token

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util/command"
)

func newQuote() *cobra.Command {
	var (
		state  string
		amount uint64
		side   string
	)

	cmd := &cobra.Command{
		Use:   "quote <token-id>",
		Short: "Prices a purchase or sale without sending a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}

			if side != "purchase" && side != "sell" {
				return errors.Wrapf(boomerfun.ErrInvalidParams, "side must be purchase or sell, got %q", side)
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				address, err := s.ResolveStateAddress(state)
				if err != nil {
					return err
				}

				if side == "sell" {
					quote, err := s.Program.QuoteSell(ctx, address, tokenID, amount)
					if err != nil {
						return err
					}
					return printJSON(quote)
				}

				quote, err := s.Program.QuotePurchase(ctx, address, tokenID, amount)
				if err != nil {
					return err
				}

				return printJSON(quote)
			})
		},
	}

	cmd.Flags().StringVar(&state, stateFlag, "", "program state address (env IAO_PROGRAM_STATE)")
	cmd.Flags().Uint64Var(&amount, amountFlag, 0, "currency lamports to spend or tokens to sell")
	cmd.Flags().StringVar(&side, "side", "purchase", "purchase or sell")

	return cmd
}

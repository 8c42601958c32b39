package token

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util/command"
)

type tradeFlags struct {
	State    string
	Amount   uint64
	Accounts api.TradeAccountsInput
}

func (f *tradeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.State, stateFlag, "", "program state address (env IAO_PROGRAM_STATE)")
	cmd.Flags().Uint64Var(&f.Amount, amountFlag, 0, "currency lamports to spend or tokens to sell")
	cmd.Flags().StringVar(&f.Accounts.UserCurrency, "user-currency", "", "currency token account of the wallet (derived from --currency-mint if empty)")
	cmd.Flags().StringVar(&f.Accounts.VaultCurrency, "vault-currency", "", "currency token account of the vault")
	cmd.Flags().StringVar(&f.Accounts.UserAgentToken, "user-agent-token", "", "agent token account of the wallet (derived from the token mint if empty)")
	cmd.Flags().StringVar(&f.Accounts.VaultAgentToken, "vault-agent-token", "", "agent token account of the vault")
	cmd.Flags().StringVar(&f.Accounts.VaultAuthority, "vault-authority", "", "authority of the vault accounts")
	cmd.Flags().StringVar(&f.Accounts.CurrencyMint, "currency-mint", "", "mint of the payment currency")
}

func (f *tradeFlags) params(s *api.Server, tokenID uint64) (boomerfun.TradeParams, error) {
	state, err := s.ResolveStateAddress(f.State)
	if err != nil {
		return boomerfun.TradeParams{}, err
	}

	accounts, err := f.Accounts.Resolve("")
	if err != nil {
		return boomerfun.TradeParams{}, err
	}

	return boomerfun.TradeParams{
		State:    state,
		TokenID:  tokenID,
		Amount:   f.Amount,
		Accounts: accounts,
	}, nil
}

func parseTokenID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(boomerfun.ErrInvalidParams, "token id %q is not a number", arg)
	}

	return id, nil
}

func newPurchase() *cobra.Command {
	var flags tradeFlags

	cmd := &cobra.Command{
		Use:   "purchase <token-id>",
		Short: "Buys tokens along the bonding curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				params, err := flags.params(s, tokenID)
				if err != nil {
					return err
				}

				res, err := s.Program.PurchaseToken(ctx, params)
				if err != nil {
					return err
				}

				log.Info().
					Str("signature", res.Signature.String()).
					Str("tokenAmount", res.Quote.TokenAmount.String()).
					Msg("Tokens purchased")

				return printJSON(res)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newSell() *cobra.Command {
	var flags tradeFlags

	cmd := &cobra.Command{
		Use:   "sell <token-id>",
		Short: "Sells tokens back to the bonding curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := parseTokenID(args[0])
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				params, err := flags.params(s, tokenID)
				if err != nil {
					return err
				}

				res, err := s.Program.SellToken(ctx, params)
				if err != nil {
					return err
				}

				log.Info().
					Str("signature", res.Signature.String()).
					Uint64("netPayout", res.Quote.NetPayout).
					Msg("Tokens sold")

				return printJSON(res)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

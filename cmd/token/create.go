package token

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/util/command"
)

type createFlags struct {
	State         string
	Mint          string
	Name          string
	Symbol        string
	SkipSizeCheck bool
}

func newCreate() *cobra.Command {
	var flags createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Registers a new token in the program state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				state, err := s.ResolveStateAddress(flags.State)
				if err != nil {
					return err
				}

				mint, err := api.ParsePublicKey("mint", flags.Mint, true)
				if err != nil {
					return err
				}

				res, err := s.Program.CreateToken(ctx, boomerfun.CreateTokenParams{
					State:         state,
					Mint:          mint,
					Name:          flags.Name,
					Symbol:        flags.Symbol,
					SkipSizeCheck: flags.SkipSizeCheck,
				})
				if err != nil {
					return err
				}

				log.Info().
					Str("signature", res.Signature.String()).
					Uint64("tokenId", res.TokenID).
					Msg("Token created")

				return printJSON(res)
			})
		},
	}

	cmd.Flags().StringVar(&flags.State, stateFlag, "", "program state address (env IAO_PROGRAM_STATE)")
	cmd.Flags().StringVar(&flags.Mint, "mint", "", "token mint address")
	cmd.Flags().StringVar(&flags.Name, "name", "", "token name")
	cmd.Flags().StringVar(&flags.Symbol, "symbol", "", "token symbol")
	cmd.Flags().BoolVar(&flags.SkipSizeCheck, "skip-size-check", false, "send even if the state account looks too small")

	return cmd
}

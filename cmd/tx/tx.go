package tx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/util/command"
)

func New() *cobra.Command {
	var (
		list        bool
		instruction string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "tx [signature]",
		Short: "Checks a transaction against the cluster and the ledger",
		Long: `Checks a transaction against the cluster and the ledger.

With a signature the ledger entry is refreshed from the cluster status.
With --list the most recent ledger entries are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list && len(args) == 0 {
				return errors.Wrap(boomerfun.ErrInvalidParams, "signature or --list is required")
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				if list {
					txs, err := s.Program.Transactions(ctx, ledger.ListParams{Instruction: instruction, Limit: limit})
					if err != nil {
						return err
					}
					return printJSON(txs)
				}

				sig, err := solana.SignatureFromBase58(args[0])
				if err != nil {
					return errors.Wrapf(boomerfun.ErrInvalidParams, "invalid signature: %v", err)
				}

				tx, err := s.Program.SyncTransaction(ctx, sig)
				if err != nil {
					return err
				}

				return printJSON(tx)
			})
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list ledger entries instead of checking one signature")
	cmd.Flags().StringVar(&instruction, "instruction", "", "only list entries of this instruction")
	cmd.Flags().IntVar(&limit, "limit", ledger.DefaultListLimit, "maximum number of entries to list")

	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

package program

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/util/command"
)

const stateFlag = "state"

func NewState() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Prints the decoded program state account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, err := cmd.Flags().GetString(stateFlag)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), command.Config(), func(ctx context.Context, s *api.Server) error {
				state, err := s.ResolveStateAddress(address)
				if err != nil {
					return err
				}

				current, err := s.Program.State(ctx, state)
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(current, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))

				return nil
			})
		},
	}

	cmd.Flags().String(stateFlag, "", "program state address (env IAO_PROGRAM_STATE)")

	return cmd
}

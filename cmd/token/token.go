package token

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/iao-solana/internal/util/command"
)

const (
	stateFlag  = "state"
	amountFlag = "amount"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("token",
		newCreate(),
		newPurchase(),
		newSell(),
		newQuote(),
	)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

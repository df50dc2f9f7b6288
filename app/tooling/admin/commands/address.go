package commands

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

func newAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <label>...",
		Short: "Print the address derived from each label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, label := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", database.ToAddress(label), label)
			}
			return nil
		},
	}
}

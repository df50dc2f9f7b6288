// Package commands contains the admin tooling commands.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var url string

// NewRootCmd constructs the admin command with every sub command registered.
func NewRootCmd(build string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the blockchain node",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")

	rootCmd.AddCommand(
		newAddressCmd(),
		newBalancesCmd(),
		newMineCmd(),
		newDemoCmd(),
	)

	return rootCmd
}

// Execute runs the admin command against the process arguments.
func Execute(build string) error {
	return NewRootCmd(build).Execute()
}

// =============================================================================

// resolve returns the value as is when it's already an address, otherwise
// the address derived from it as a label.
func resolve(s string) database.Address {
	if a := database.Address(s); a.IsAddress() {
		return a
	}
	return database.ToAddress(s)
}

// parseTx converts a from:to:value triple into a transaction. From and to
// can be addresses or labels.
func parseTx(s string) (database.Tx, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return database.Tx{}, fmt.Errorf("transaction %q is not in from:to:value form", s)
	}

	value, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return database.Tx{}, fmt.Errorf("transaction %q value: %w", s, err)
	}

	return database.NewTx(resolve(parts[0]), resolve(parts[1]), value), nil
}

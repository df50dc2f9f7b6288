package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Balances    []balance `json:"balances"`
}

func newBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances [address|label]",
		Short: "Print the balances held by the node",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := fmt.Sprintf("%s/v1/balances/list", url)
			if len(args) == 1 {
				endpoint = fmt.Sprintf("%s/%s", endpoint, resolve(args[0]))
			}

			resp, err := http.Get(endpoint)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("balances: %s", readError(resp))
			}

			var bals balances
			if err := json.NewDecoder(resp.Body).Decode(&bals); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "LatestBlock: %s\n\n", bals.LatestBlock)
			for _, bal := range bals.Balances {
				fmt.Fprintf(out, "Address: %s  Name: %s  Balance: %d\n", bal.Address, bal.Name, bal.Balance)
			}

			return nil
		},
	}
}

// readError extracts the error message from a failed node response.
func readError(resp *http.Response) string {
	var er struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return resp.Status
	}

	if len(er.Fields) > 0 {
		return fmt.Sprintf("%s: %s: %v", resp.Status, er.Error, er.Fields)
	}

	return fmt.Sprintf("%s: %s", resp.Status, er.Error)
}

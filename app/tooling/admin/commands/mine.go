package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newMineCmd() *cobra.Command {
	var broadcaster string
	var trans []string

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Ask the node to mine the next block",
		RunE: func(cmd *cobra.Command, args []string) error {
			type newTx struct {
				From  string `json:"from"`
				To    string `json:"to"`
				Value uint64 `json:"value"`
			}

			req := struct {
				Broadcaster  string  `json:"broadcaster"`
				Transactions []newTx `json:"transactions"`
			}{
				Broadcaster: string(resolve(broadcaster)),
			}

			for _, s := range trans {
				tx, err := parseTx(s)
				if err != nil {
					return err
				}

				req.Transactions = append(req.Transactions, newTx{
					From:  string(tx.From),
					To:    string(tx.To),
					Value: tx.Value,
				})
			}

			data, err := json.Marshal(req)
			if err != nil {
				return err
			}

			resp, err := http.Post(fmt.Sprintf("%s/v1/blocks/mine", url), "application/json", bytes.NewBuffer(data))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("mine: %s", readError(resp))
			}

			var blk struct {
				Number uint64 `json:"number"`
				Hash   string `json:"hash"`
				Nonce  uint64 `json:"nonce"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&blk); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mined blk[%d]: nonce[%d]: hash[%s]\n", blk.Number, blk.Nonce, blk.Hash)

			return nil
		},
	}

	cmd.Flags().StringVarP(&broadcaster, "broadcaster", "b", "miner1", "Address or label credited with the reward.")
	cmd.Flags().StringArrayVarP(&trans, "tx", "t", nil, "Transaction as from:to:value, repeatable.")

	return cmd
}

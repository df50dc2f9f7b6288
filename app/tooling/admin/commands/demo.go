package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
	"github.com/ardanlabs/powchain/foundation/logger"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	var difficulty string
	var reward uint64
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a chain in process: genesis, a transfer and a rejected over spend",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := genesis.Default()
			gen.MiningReward = reward

			if difficulty != "" {
				target, err := pow.ParseTarget(difficulty)
				if err != nil {
					return err
				}
				gen.Difficulty = target
			}

			ev := func(v string, args ...any) {}
			if verbose {
				log, err := logger.New("ADMIN")
				if err != nil {
					return err
				}
				defer log.Sync()

				ev = logger.EvHandler(log, "00000000-0000-0000-0000-000000000000")
			}

			return runDemo(cmd, cmd.OutOrStdout(), gen, workers, ev)
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty target as hex, default is the genesis difficulty.")
	cmd.Flags().Uint64VarP(&reward, "reward", "r", genesis.DefaultMiningReward, "Reward credited to each block's broadcaster.")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Goroutines searching for a nonce.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log chain events.")

	return cmd
}

func runDemo(cmd *cobra.Command, out io.Writer, gen genesis.Genesis, workers int, ev func(v string, args ...any)) error {
	ctx := cmd.Context()

	ns := nameservice.New(gen.Label)
	founder := database.ToAddress(gen.Label)
	xavier := ns.Add("xavier")
	yolanda := ns.Add("yolanda")
	miner := ns.Add("miner1")

	genBlock, err := database.GenesisBlock(ctx, gen, database.POWArgs{
		Workers:   workers,
		EvHandler: ev,
	})
	if err != nil {
		return fmt.Errorf("mine genesis: %w", err)
	}

	bc := chain.New(chain.Config{
		MiningReward:  gen.MiningReward,
		Difficulty:    gen.Difficulty,
		MaxDifficulty: gen.Difficulty,
		EvHandler:     ev,
	})

	if err := bc.UpdateBlock(genBlock); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	fmt.Fprintf(out, "Accepted blk[0]: nonce[%d]: hash[%s]\n", genBlock.Header.Nonce, genBlock.Hash())

	block, err := bc.MineNext(ctx, chain.MineArgs{
		Trans:       []database.Tx{database.NewTx(founder, xavier, 200)},
		Broadcaster: miner,
		Workers:     workers,
	})
	if err != nil {
		return fmt.Errorf("mine transfer: %w", err)
	}
	fmt.Fprintf(out, "Accepted blk[%d]: nonce[%d]: hash[%s]\n", block.Header.Number, block.Header.Nonce, block.Hash())

	_, err = bc.MineNext(ctx, chain.MineArgs{
		Trans: []database.Tx{
			database.NewTx(xavier, yolanda, 150),
			database.NewTx(xavier, yolanda, 150),
		},
		Broadcaster: miner,
		Workers:     workers,
	})
	switch {
	case errors.Is(err, database.ErrInsufficientInputVal):
		fmt.Fprintf(out, "Rejected over spend: %s\n", err)
	case err != nil:
		return fmt.Errorf("mine over spend: %w", err)
	default:
		return errors.New("over spend was accepted")
	}

	if err := bc.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	fmt.Fprintf(out, "\nLength: %d  Issued: %d  Supply: %d\n\n", bc.Len(), bc.Issued(), bc.TotalSupply())

	bals := bc.Balances()
	addresses := make([]database.Address, 0, len(bals))
	for address := range bals {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return ns.Lookup(addresses[i]) < ns.Lookup(addresses[j])
	})

	for _, address := range addresses {
		fmt.Fprintf(out, "%-14s %s  %d\n", ns.Lookup(address), address, bals[address])
	}

	return nil
}

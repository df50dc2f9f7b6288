package chain

import (
	"context"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ErrEmptyChain is returned when a block is requested to be mined before
// the genesis block has been accepted.
var ErrEmptyChain = errors.New("chain has no genesis block")

// MineArgs represents the set of arguments required to mine the next block.
type MineArgs struct {
	Trans       []database.Tx
	Broadcaster database.Address
	Workers     int
}

// MineNext attempts to create a new block with a proper hash that can become
// the next block in the chain and then submits it. The returned block is the
// one held by the chain, linked to its parent.
func (c *BlockChain) MineNext(ctx context.Context, args MineArgs) (database.Block, error) {
	last, ok := c.Last()
	if !ok {
		return database.Block{}, ErrEmptyChain
	}

	c.evHandler("chain: MineNext: MINING: perform POW: blk[%d]", last.Header.Number+1)

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		Number:      last.Header.Number + 1,
		Trans:       args.Trans,
		Broadcaster: args.Broadcaster,
		Difficulty:  c.difficulty,
		Workers:     args.Workers,
		EvHandler:   c.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	c.evHandler("chain: MineNext: MINING: validate and update chain: blk[%d]", block.Header.Number)

	if err := c.UpdateBlock(block); err != nil {
		return database.Block{}, err
	}

	return block.LinkTo(last.Hash()), nil
}

package chain

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/balance"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Len returns the number of accepted blocks.
func (c *BlockChain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Last returns the current tip of the chain. The bool is false when the
// chain is empty.
func (c *BlockChain) Last() (database.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return database.Block{}, false
	}

	return c.blocks[len(c.blocks)-1].Clone(), true
}

// Blocks returns a copy of every accepted block in order.
func (c *BlockChain) Blocks() []database.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]database.Block, len(c.blocks))
	for i, block := range c.blocks {
		blocks[i] = block.Clone()
	}

	return blocks
}

// BlockByNumber returns the block at the specified position.
func (c *BlockChain) BlockByNumber(number uint64) (database.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if number >= uint64(len(c.blocks)) {
		return database.Block{}, fmt.Errorf("%w: blk[%d]: chain length %d", ErrNotFound, number, len(c.blocks))
	}

	return c.blocks[number].Clone(), nil
}

// Balances returns a copy of every balance in the chain.
func (c *BlockChain) Balances() map[database.Address]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.Copy()
}

// Balance returns the balance for the address and whether the address has
// ever been credited.
func (c *BlockChain) Balance(address database.Address) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.Balance(address)
}

// TotalSupply returns the sum of every balance.
func (c *BlockChain) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.Total()
}

// Issued returns the value created by the genesis mint and every mining
// reward. Transfers never change it, so it always equals TotalSupply.
func (c *BlockChain) Issued() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.issued
}

// =============================================================================

// Validate walks the whole chain checking every block against its parent
// and replays the transactions to confirm the balances they produce.
func (c *BlockChain) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return nil
	}

	ev := func(v string, args ...any) {}

	gen := c.blocks[0]
	if err := gen.ValidateGenesis(ev); err != nil {
		return fmt.Errorf("blk[0]: %w", err)
	}

	replay := balance.New()
	if err := replay.Mint(gen.Trans[0].To, gen.Trans[0].Value); err != nil {
		return fmt.Errorf("blk[0]: %w", err)
	}
	issued := gen.Trans[0].Value

	for i := 1; i < len(c.blocks); i++ {
		prev, block := c.blocks[i-1], c.blocks[i]

		if block.Header.PrevBlockHash == nil {
			return fmt.Errorf("blk[%d]: %w: block is not linked to its parent", block.Header.Number, database.ErrMismatchedPreviousHash)
		}

		if err := block.ValidateBlock(prev, ev); err != nil {
			return fmt.Errorf("blk[%d]: %w", block.Header.Number, err)
		}

		if err := replay.ApplyBlock(block.Trans, block.Header.Broadcaster, c.miningReward); err != nil {
			return fmt.Errorf("blk[%d]: %w", block.Header.Number, err)
		}
		issued += c.miningReward
	}

	if issued != c.issued {
		return fmt.Errorf("issued value mismatch, got %d, exp %d", c.issued, issued)
	}

	current := c.store.Copy()
	for address, value := range replay.Copy() {
		if current[address] != value {
			return fmt.Errorf("balance mismatch for %s, got %d, exp %d", address, current[address], value)
		}
		delete(current, address)
	}

	for address := range current {
		return fmt.Errorf("balance for %s is not produced by any block", address)
	}

	return nil
}

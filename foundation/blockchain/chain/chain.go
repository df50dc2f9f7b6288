// Package chain is the core API for the blockchain. It owns the ordered list
// of accepted blocks and the balances they produce, and implements the rules
// a block must pass to be added.
package chain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/balance"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// ErrNotFound is returned when a block number is not in the chain.
var ErrNotFound = errors.New("block not found")

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start a chain.
type Config struct {
	MiningReward  uint64     // Credited to the broadcaster of every non genesis block.
	Difficulty    pow.Target // Target new blocks are mined against, default pow.DefaultTarget.
	MaxDifficulty pow.Target // Easiest target a block may name, zero for no limit.
	EvHandler     EventHandler
}

// BlockChain manages the accepted blocks and the value store.
type BlockChain struct {
	miningReward  uint64
	difficulty    pow.Target
	maxDifficulty pow.Target
	evHandler     EventHandler

	mu     sync.RWMutex
	blocks []database.Block
	issued uint64
	store  *balance.ValueStore
}

// New constructs an empty chain. The first block submitted must be a
// genesis block.
func New(cfg Config) *BlockChain {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	difficulty := cfg.Difficulty
	if difficulty.IsZero() {
		difficulty = pow.DefaultTarget
	}

	return &BlockChain{
		miningReward:  cfg.MiningReward,
		difficulty:    difficulty,
		maxDifficulty: cfg.MaxDifficulty,
		evHandler:     ev,
		store:         balance.New(),
	}
}

// NewFromGenesis constructs a chain using the genesis settings and admits
// the specified genesis block. No block may name a target easier than the
// genesis difficulty.
func NewFromGenesis(gen genesis.Genesis, block database.Block, ev EventHandler) (*BlockChain, error) {
	c := New(Config{
		MiningReward:  gen.MiningReward,
		Difficulty:    gen.Difficulty,
		MaxDifficulty: gen.Difficulty,
		EvHandler:     ev,
	})

	if err := c.UpdateBlock(block); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	return c, nil
}

// MiningReward returns the value credited for each accepted block.
func (c *BlockChain) MiningReward() uint64 {
	return c.miningReward
}

// Difficulty returns the target new blocks are mined against.
func (c *BlockChain) Difficulty() pow.Target {
	return c.difficulty
}

// =============================================================================

// UpdateBlock validates the block and, if it can follow the current tip,
// applies its transactions and appends it. The chain and the balances are
// left unchanged when an error is returned.
func (c *BlockChain) UpdateBlock(block database.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evHandler("chain: UpdateBlock: started: blk[%d]: hash[%s]", block.Header.Number, block.Hash())

	var err error
	switch len(c.blocks) {
	case 0:
		err = c.updateGenesis(block)
	default:
		err = c.updateNext(block)
	}

	if err != nil {
		c.evHandler("chain: UpdateBlock: REJECTED: blk[%d]: %s", block.Header.Number, err)
		return err
	}

	c.evHandler("chain: UpdateBlock: ACCEPTED: blk[%d]: hash[%s]: len[%d]", block.Header.Number, block.Hash(), len(c.blocks))

	return nil
}

// updateGenesis admits the first block of the chain. Must be called with
// the write lock held.
func (c *BlockChain) updateGenesis(block database.Block) error {
	if err := block.ValidateGenesis(c.evHandler); err != nil {
		return err
	}

	if err := c.checkTarget(block); err != nil {
		return err
	}

	block = block.Clone()
	mint := block.Trans[0]

	if err := c.store.Mint(mint.To, mint.Value); err != nil {
		return fmt.Errorf("%w: %w", database.ErrInvalidGenesisBlock, err)
	}
	c.issued += mint.Value
	c.blocks = append(c.blocks, block)

	c.evHandler("chain: UpdateBlock: genesis: minted[%d]: to[%s]", mint.Value, mint.To)

	return nil
}

// updateNext admits a block following the current tip. Must be called with
// the write lock held.
func (c *BlockChain) updateNext(block database.Block) error {
	last := c.blocks[len(c.blocks)-1]

	if err := block.ValidateBlock(last, c.evHandler); err != nil {
		return err
	}

	if err := c.checkTarget(block); err != nil {
		return err
	}

	c.evHandler("chain: UpdateBlock: blk[%d]: apply[%d] transactions", block.Header.Number, len(block.Trans))

	// The transfers and the reward land under one store lock and readers of
	// the chain wait on the chain lock, so no partial block is visible.
	if err := c.store.ApplyBlock(block.Trans, block.Header.Broadcaster, c.miningReward); err != nil {
		return fmt.Errorf("blk[%d]: %w", block.Header.Number, err)
	}
	c.issued += c.miningReward
	c.blocks = append(c.blocks, block.LinkTo(last.Hash()))

	return nil
}

// checkTarget rejects a block naming a target easier than the configured
// limit.
func (c *BlockChain) checkTarget(block database.Block) error {
	if c.maxDifficulty.IsZero() {
		return nil
	}

	if block.Header.Difficulty.Easier(c.maxDifficulty) {
		return fmt.Errorf("%w: target %s is easier than the chain limit %s", database.ErrInvalidHash, block.Header.Difficulty, c.maxDifficulty)
	}

	return nil
}

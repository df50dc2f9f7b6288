// Package database handles the blocks and transactions that make up the
// blockchain and the proof of work required to produce a block.
package database

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64         `json:"number"`                    // Position in the chain, 0 being genesis.
	TimeStamp     uint64         `json:"timestamp"`                 // Nanoseconds since epoch the block was mined.
	PrevBlockHash *digest.Digest `json:"prev_block_hash,omitempty"` // Written by the chain when the block is accepted.
	Nonce         uint64         `json:"nonce"`                     // Value identified to solve the hash solution.
	Difficulty    pow.Target     `json:"difficulty"`                // Target the block digest must be below.
	Broadcaster   Address        `json:"broadcaster"`               // Account receiving the mining reward.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  []Tx

	hash digest.Digest
}

// Bytes implements the digest.Hashable interface. The encoding is Number,
// TimeStamp, PrevBlockHash when present, Nonce, the digest of every
// transaction in order and finally the 16 byte Difficulty. Integers are
// little endian. The block's own digest is never part of the encoding.
func (b Block) Bytes() []byte {
	return newSealer(b).bytes(b.Header.Nonce)
}

// Hash returns the digest recorded for the block when it was mined.
func (b Block) Hash() digest.Digest {
	return b.hash
}

// Rehash computes the digest from the block's current contents.
func (b Block) Rehash() digest.Digest {
	return digest.Of(b)
}

// SealHash computes the digest of the block as the miner sealed it. The
// miner never knows the parent, so the parent hash written by the chain is
// left out.
func (b Block) SealHash() digest.Digest {
	if b.Header.PrevBlockHash == nil {
		return b.Rehash()
	}

	sealed := b.Clone()
	sealed.Header.PrevBlockHash = nil

	return sealed.Rehash()
}

// IsGenesis reports whether this is the first block of a chain.
func (b Block) IsGenesis() bool {
	return b.Header.Number == 0
}

// Clone returns a copy of the block that shares no memory with b.
func (b Block) Clone() Block {
	nb := b

	if b.Trans != nil {
		nb.Trans = make([]Tx, len(b.Trans))
		copy(nb.Trans, b.Trans)
	}

	if b.Header.PrevBlockHash != nil {
		prev := *b.Header.PrevBlockHash
		nb.Header.PrevBlockHash = &prev
	}

	return nb
}

// LinkTo returns a copy of the block pointing at the specified previous
// block digest. The recorded digest of the block is not changed.
func (b Block) LinkTo(prev digest.Digest) Block {
	nb := b.Clone()
	nb.Header.PrevBlockHash = &prev

	return nb
}

// =============================================================================

// ValidateGenesis checks the block can be the first block of a chain.
func (b Block) ValidateGenesis(evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateGenesis: validate: blk[%d]: check: block number is zero", b.Header.Number)

	if b.Header.Number != 0 {
		return fmt.Errorf("%w: block number is not zero, got %d", ErrInvalidGenesisBlock, b.Header.Number)
	}

	evHandler("database: ValidateGenesis: validate: blk[%d]: check: block has no parent", b.Header.Number)

	if b.Header.PrevBlockHash != nil {
		return fmt.Errorf("%w: block has a parent hash %s", ErrInvalidGenesisBlock, *b.Header.PrevBlockHash)
	}

	evHandler("database: ValidateGenesis: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if err := b.ValidateHash(); err != nil {
		return err
	}

	evHandler("database: ValidateGenesis: validate: blk[%d]: check: block holds a single mint transaction", b.Header.Number)

	switch {
	case len(b.Trans) == 0:
		return fmt.Errorf("%w: genesis block has no transactions", ErrInvalidInput)

	case len(b.Trans) > 1:
		return fmt.Errorf("%w: genesis block has %d transactions, exp 1", ErrInvalidCoinbaseTransaction, len(b.Trans))

	case !b.Trans[0].IsMint():
		return fmt.Errorf("%w: genesis transaction is not a mint, from %s", ErrInvalidCoinbaseTransaction, b.Trans[0].From)
	}

	return nil
}

// ValidateBlock takes a block and validates it can follow the previous
// block in the chain. The check order is fixed: number, hash, timestamp
// and then the parent hash when one is present.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("%w: this block is not the next number, got %d, exp %d", ErrMismatchedIndex, b.Header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if err := b.ValidateHash(); err != nil {
		return err
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is greater than parent block's timestamp", b.Header.Number)

	if b.Header.TimeStamp <= previousBlock.Header.TimeStamp {
		return fmt.Errorf("%w: block timestamp is not after parent block, parent %d, block %d", ErrAchronologicalTimestamp, previousBlock.Header.TimeStamp, b.Header.TimeStamp)
	}

	if b.Header.PrevBlockHash != nil {
		evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

		if *b.Header.PrevBlockHash != previousBlock.Hash() {
			return fmt.Errorf("%w: got %s, exp %s", ErrMismatchedPreviousHash, *b.Header.PrevBlockHash, previousBlock.Hash())
		}
	}

	return nil
}

// ValidateHash checks the recorded digest solves the difficulty target and
// matches the sealed contents of the block.
func (b Block) ValidateHash() error {
	if !pow.CheckDifficulty(b.hash[:], b.Header.Difficulty) {
		return fmt.Errorf("%w: %s does not solve target %s", ErrInvalidHash, b.hash, b.Header.Difficulty)
	}

	if rehash := b.SealHash(); rehash != b.hash {
		return fmt.Errorf("%w: digest doesn't match block contents, got %s, exp %s", ErrInvalidHash, b.hash, rehash)
	}

	return nil
}

// =============================================================================

// BlockData represents what is handed to clients of the chain.
type BlockData struct {
	Hash   digest.Digest `json:"hash"`
	Header BlockHeader   `json:"block"`
	Trans  []Tx          `json:"trans"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	b := block.Clone()

	return BlockData{
		Hash:   b.hash,
		Header: b.Header,
		Trans:  b.Trans,
	}
}

// ToBlock converts a BlockData into a Block. The hash is taken as given,
// it is only checked when the block is validated.
func ToBlock(blockData BlockData) Block {
	b := Block{
		Header: blockData.Header,
		Trans:  blockData.Trans,
		hash:   blockData.Hash,
	}

	return b.Clone()
}

package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
	"golang.org/x/sync/errgroup"
)

// ctxCheckInterval is how many attempts are made between checks for
// cancellation.
const ctxCheckInterval = 1 << 10

// attemptsLogInterval is how many attempts are made between progress events.
const attemptsLogInterval = 1 << 20

// errSolved is used to stop the other workers once a nonce is found.
var errSolved = errors.New("solved")

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Number      uint64
	Trans       []Tx
	Broadcaster Address
	Difficulty  pow.Target
	StartNonce  uint64                      // Nonce the search begins at.
	Workers     int                         // Number of goroutines splitting the nonce space, default 1.
	Clock       func() uint64               // Source of the block timestamp, default Now.
	EvHandler   func(v string, args ...any) // Receives progress events, optional.
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the difficulty target. With more than one worker the nonce space is
// split into disjoint strided ranges and the first solution found wins.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	clock := args.Clock
	if clock == nil {
		clock = Now
	}

	// No digest window is below zero, so there is nothing to search.
	if args.Difficulty.IsZero() {
		ev("database: POW: MINING: EXHAUSTED: blk[%d]: zero difficulty target", args.Number)
		return Block{}, fmt.Errorf("%w: zero difficulty target", ErrNonceSpaceExhausted)
	}

	workers := max(args.Workers, 1)

	trans := make([]Tx, len(args.Trans))
	copy(trans, args.Trans)

	// Construct the block to be mined.
	nb := Block{
		Header: BlockHeader{
			Number:      args.Number,
			TimeStamp:   clock(),
			Nonce:       args.StartNonce,
			Difficulty:  args.Difficulty,
			Broadcaster: args.Broadcaster,
		},
		Trans: trans,
	}

	ev("database: POW: MINING: started: blk[%d]: workers[%d]", nb.Header.Number, workers)
	defer ev("database: POW: MINING: completed: blk[%d]", nb.Header.Number)

	for _, tx := range nb.Trans {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	s := newSealer(nb)

	var nonce uint64
	var err error
	switch workers {
	case 1:
		nonce, err = s.search(ctx, args.StartNonce, 1, ev)
	default:
		nonce, err = s.searchParallel(ctx, args.StartNonce, workers, ev)
	}

	if err != nil {
		if errors.Is(err, ErrNonceSpaceExhausted) {
			ev("database: POW: MINING: EXHAUSTED: blk[%d]", nb.Header.Number)
		} else {
			ev("database: POW: MINING: CANCELLED: blk[%d]", nb.Header.Number)
		}
		return Block{}, err
	}

	nb.Header.Nonce = nonce
	nb.hash = s.hash(nonce)

	ev("database: POW: MINING: SOLVED: blk[%d]: nonce[%d]: hash[%s]", nb.Header.Number, nonce, nb.hash)

	return nb, nil
}

// Mine constructs the next block for the specified index using the default
// difficulty target. Running out of nonces means the target can't be met,
// which is treated as a fatal invariant violation.
func Mine(index uint64, trans []Tx, broadcaster Address) Block {
	block, err := POW(context.Background(), POWArgs{
		Number:      index,
		Trans:       trans,
		Broadcaster: broadcaster,
		Difficulty:  pow.DefaultTarget,
	})
	if err != nil {
		panic(fmt.Sprintf("database: mine: blk[%d]: %s", index, err))
	}

	return block
}

// GenGenesis constructs the genesis block from the default genesis settings.
func GenGenesis() Block {
	block, err := GenesisBlock(context.Background(), genesis.Default(), POWArgs{})
	if err != nil {
		panic(fmt.Sprintf("database: genesis: %s", err))
	}

	return block
}

// GenesisBlock mines the first block of a chain. It holds a single mint
// transaction crediting the initial balance to the address derived from the
// genesis label. That address is also the broadcaster. Only the Workers,
// StartNonce, Clock and EvHandler fields of args are used.
func GenesisBlock(ctx context.Context, gen genesis.Genesis, args POWArgs) (Block, error) {
	addr := ToAddress(gen.Label)

	args.Number = 0
	args.Trans = []Tx{NewMintTx(addr, gen.InitialBalance)}
	args.Broadcaster = addr
	args.Difficulty = gen.Difficulty

	return POW(ctx, args)
}

// =============================================================================

// sealer holds the parts of the block encoding that stay fixed while the
// nonce is searched. The encoding is prefix || nonce || suffix.
type sealer struct {
	difficulty pow.Target
	prefix     []byte
	suffix     []byte
}

// newSealer precomputes the fixed parts of the encoding for the block.
func newSealer(b Block) sealer {
	prefix := digest.NewEncoder(8 + 8 + digest.Size).
		Uint64(b.Header.Number).
		Uint64(b.Header.TimeStamp)

	if b.Header.PrevBlockHash != nil {
		prefix.Digest(*b.Header.PrevBlockHash)
	}

	suffix := digest.NewEncoder(digest.Size*len(b.Trans) + 16)
	for _, tx := range b.Trans {
		suffix.Digest(tx.Hash())
	}

	difficulty := b.Header.Difficulty.Bytes()
	suffix.Raw(difficulty[:])

	return sealer{
		difficulty: b.Header.Difficulty,
		prefix:     prefix.Bytes(),
		suffix:     suffix.Bytes(),
	}
}

// bytes returns the full encoding for the specified nonce.
func (s sealer) bytes(nonce uint64) []byte {
	buf := s.buffer()
	s.put(buf, nonce)

	return buf
}

// hash returns the digest for the specified nonce.
func (s sealer) hash(nonce uint64) digest.Digest {
	return digest.Sum(s.bytes(nonce))
}

// buffer allocates an encoding with the nonce left as zero.
func (s sealer) buffer() []byte {
	buf := make([]byte, len(s.prefix)+8+len(s.suffix))
	copy(buf, s.prefix)
	copy(buf[len(s.prefix)+8:], s.suffix)

	return buf
}

// put writes the nonce into a buffer returned by buffer.
func (s sealer) put(buf []byte, nonce uint64) {
	binary.LittleEndian.PutUint64(buf[len(s.prefix):], nonce)
}

// search tries first, first+stride, first+2*stride and so on until a nonce
// solves the target or the next nonce would overflow.
func (s sealer) search(ctx context.Context, first uint64, stride uint64, ev func(v string, args ...any)) (uint64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	buf := s.buffer()

	var attempts uint64
	for nonce := first; ; nonce += stride {
		attempts++

		if attempts%ctxCheckInterval == 0 {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}

			if attempts%attemptsLogInterval == 0 {
				ev("database: POW: MINING: start[%d]: attempts[%d]", first, attempts)
			}
		}

		// Hash the encoding and check if we have solved the puzzle.
		s.put(buf, nonce)
		hash := digest.Sum(buf)
		if pow.CheckDifficulty(hash[:], s.difficulty) {
			return nonce, nil
		}

		if nonce > math.MaxUint64-stride {
			return 0, ErrNonceSpaceExhausted
		}
	}
}

// searchParallel runs one search per worker over disjoint nonce ranges. The
// first worker to find a solution cancels the others.
func (s sealer) searchParallel(ctx context.Context, start uint64, workers int, ev func(v string, args ...any)) (uint64, error) {
	stride := uint64(workers)
	found := make(chan uint64, workers)

	g, gctx := errgroup.WithContext(ctx)

	for i := range stride {
		first := start + i
		if first < start {
			break
		}

		g.Go(func() error {
			nonce, err := s.search(gctx, first, stride, ev)
			switch {
			case err == nil:
				found <- nonce
				return errSolved

			case errors.Is(err, ErrNonceSpaceExhausted):

				// This range is done, the others may still find a solution.
				return nil
			}

			return err
		})
	}

	err := g.Wait()

	select {
	case nonce := <-found:
		return nonce, nil
	default:
	}

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	if err != nil && !errors.Is(err, errSolved) {
		return 0, err
	}

	return 0, ErrNonceSpaceExhausted
}

// Package balance maintains account balances in memory.
package balance

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// ValueStore is the ledger of address balances. An address that is not in
// the store has a balance of zero and can only receive value. The sum of
// every balance never exceeds the range of a uint64, so no single credit
// can wrap.
type ValueStore struct {
	values map[database.Address]uint64
	supply uint64
	mu     sync.RWMutex
}

// New constructs an empty value store.
func New() *ValueStore {
	return &ValueStore{
		values: make(map[database.Address]uint64),
	}
}

// Reset removes every balance from the store.
func (vs *ValueStore) Reset() {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	vs.values = make(map[database.Address]uint64)
	vs.supply = 0
}

// Balance returns the balance for the address and whether the address has
// ever been credited.
func (vs *ValueStore) Balance(address database.Address) (uint64, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	value, exists := vs.values[address]
	return value, exists
}

// Copy makes a copy of the current balances.
func (vs *ValueStore) Copy() map[database.Address]uint64 {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	values := make(map[database.Address]uint64, len(vs.values))
	for address, value := range vs.values {
		values[address] = value
	}
	return values
}

// Total returns the sum of every balance in the store.
func (vs *ValueStore) Total() uint64 {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	return vs.supply
}

// =============================================================================

// Mint credits the address with newly created value. There is no source
// balance to check. It fails only when the address is the mint source or
// the total supply would no longer fit in a uint64.
func (vs *ValueStore) Mint(to database.Address, value uint64) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	return vs.mint(to, value)
}

// RewardMiner gives the broadcaster of an accepted block the mining reward.
func (vs *ValueStore) RewardMiner(broadcaster database.Address, reward uint64) error {
	return vs.Mint(broadcaster, reward)
}

// Apply moves value between the two addresses. Either both the debit and
// the credit happen or neither does.
func (vs *ValueStore) Apply(from database.Address, to database.Address, value uint64) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	_, err := vs.apply(from, to, value)
	return err
}

// ApplyBatch applies the transactions in order as a single unit. If any
// transaction fails, the ones already applied are reverted in reverse order
// and the store is left exactly as it was before the call.
func (vs *ValueStore) ApplyBatch(trans []database.Tx) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	return vs.applyBatch(trans)
}

// ApplyBlock applies the transactions of an accepted block and credits the
// broadcaster with the reward while holding the write lock once, so no
// reader sees the transfers without the reward. The reward is checked
// before any transaction is applied.
func (vs *ValueStore) ApplyBlock(trans []database.Tx, broadcaster database.Address, reward uint64) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if err := vs.checkMint(broadcaster, reward); err != nil {
		return fmt.Errorf("reward: %w", err)
	}

	if err := vs.applyBatch(trans); err != nil {
		return err
	}

	// Transfers don't change the supply, so the checked reward still fits.
	return vs.mint(broadcaster, reward)
}

// =============================================================================

// entry records what a successful apply changed so it can be undone.
type entry struct {
	from    database.Address
	to      database.Address
	value   uint64
	created bool // The to address was not in the store before the credit.
}

// checkMint reports whether minting the value is allowed. It must be called
// with the lock held.
func (vs *ValueStore) checkMint(to database.Address, value uint64) error {
	if to.IsMint() {
		return fmt.Errorf("%w: value can't be minted to the mint source", database.ErrInvalidCoinbaseTransaction)
	}

	if _, carry := bits.Add64(vs.supply, value, 0); carry != 0 {
		return fmt.Errorf("%w: supply %d plus %d", database.ErrValueOverflow, vs.supply, value)
	}

	return nil
}

// mint credits newly created value. It must be called with the write lock
// held.
func (vs *ValueStore) mint(to database.Address, value uint64) error {
	if err := vs.checkMint(to, value); err != nil {
		return err
	}

	vs.values[to] += value
	vs.supply += value

	return nil
}

// applyBatch applies the transactions with a journal and reverts them all
// on failure. It must be called with the write lock held.
func (vs *ValueStore) applyBatch(trans []database.Tx) error {
	journal := make([]entry, 0, len(trans))

	for i, tx := range trans {
		e, err := vs.apply(tx.From, tx.To, tx.Value)
		if err != nil {
			vs.revert(journal)
			return fmt.Errorf("tx[%d] %s: %w", i, tx, err)
		}

		journal = append(journal, e)
	}

	return nil
}

// apply performs the debit and credit. It must be called with the write
// lock held. Every check is made before anything is written.
func (vs *ValueStore) apply(from database.Address, to database.Address, value uint64) (entry, error) {
	if value == 0 {
		return entry{}, nil
	}

	if from.IsMint() {
		return entry{}, fmt.Errorf("%w: value can only be minted by the genesis block", database.ErrInvalidCoinbaseTransaction)
	}

	if to.IsMint() {
		return entry{}, fmt.Errorf("%w: value can't be sent to the mint source", database.ErrInvalidInput)
	}

	balance, exists := vs.values[from]
	if !exists {
		return entry{}, fmt.Errorf("%w: %s has never been credited", database.ErrInvalidInput, from)
	}

	if balance < value {
		return entry{}, fmt.Errorf("%w: %s has %d, needed %d", database.ErrInsufficientInputVal, from, balance, value)
	}

	toBalance, toExists := vs.values[to]
	if from != to {
		if _, carry := bits.Add64(toBalance, value, 0); carry != 0 {
			return entry{}, fmt.Errorf("%w: %s has %d, credit %d", database.ErrValueOverflow, to, toBalance, value)
		}
	}

	vs.values[from] -= value
	vs.values[to] += value

	e := entry{
		from:    from,
		to:      to,
		value:   value,
		created: !toExists,
	}

	return e, nil
}

// revert undoes the journal entries in reverse order. It must be called
// with the write lock held.
func (vs *ValueStore) revert(journal []entry) {
	for i := len(journal) - 1; i >= 0; i-- {
		e := journal[i]
		if e.value == 0 {
			continue
		}

		vs.values[e.to] -= e.value
		if e.created {
			delete(vs.values, e.to)
		}

		vs.values[e.from] += e.value
	}
}

package database

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// Tx is the transfer of value between two addresses. Once constructed it
// is never changed.
type Tx struct {
	From  Address `json:"from"`  // Address being debited, MintAccount when value is created.
	To    Address `json:"to"`    // Address being credited.
	Value uint64  `json:"value"` // Amount moved from From to To.
}

// NewTx constructs a new transaction.
func NewTx(from Address, to Address, value uint64) Tx {
	return Tx{
		From:  from,
		To:    to,
		Value: value,
	}
}

// NewMintTx constructs a transaction that creates value for the address.
func NewMintTx(to Address, value uint64) Tx {
	return NewTx(MintAccount, to, value)
}

// IsMint reports whether this transaction creates value.
func (tx Tx) IsMint() bool {
	return tx.From.IsMint()
}

// Bytes implements the digest.Hashable interface. The encoding is the raw
// bytes of From, the raw bytes of To and the Value as 8 little endian bytes.
func (tx Tx) Bytes() []byte {
	return digest.NewEncoder(len(tx.From) + len(tx.To) + 8).
		String(string(tx.From)).
		String(string(tx.To)).
		Uint64(tx.Value).
		Bytes()
}

// Hash returns the digest for the transaction.
func (tx Tx) Hash() digest.Digest {
	return digest.Of(tx)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	from := string(tx.From)
	if tx.IsMint() {
		from = "mint"
	}

	return fmt.Sprintf("%s->%s:%d", from, tx.To, tx.Value)
}

// =============================================================================

// TotalValue returns the sum of the value moved by the transactions.
func TotalValue(trans []Tx) uint64 {
	var total uint64
	for _, tx := range trans {
		total += tx.Value
	}

	return total
}

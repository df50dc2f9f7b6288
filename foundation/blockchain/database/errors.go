package database

import "errors"

// The set of errors returned when a block or transaction fails validation.
// When returned they are wrapped with the details of the failure, so use
// errors.Is to check for them.
var (
	ErrMismatchedIndex            = errors.New("mismatched block index")
	ErrInvalidHash                = errors.New("invalid block hash")
	ErrAchronologicalTimestamp    = errors.New("achronological block timestamp")
	ErrMismatchedPreviousHash     = errors.New("mismatched previous block hash")
	ErrInvalidGenesisBlock        = errors.New("invalid genesis block")
	ErrInvalidInput               = errors.New("invalid transaction input")
	ErrInsufficientInputVal       = errors.New("insufficient input value")
	ErrInvalidCoinbaseTransaction = errors.New("invalid coinbase transaction")
	ErrValueOverflow              = errors.New("value exceeds the supply limit")
)

// ErrNonceSpaceExhausted is returned when every nonce was tried without
// solving the difficulty target. It means the target can't be satisfied.
var ErrNonceSpaceExhausted = errors.New("nonce space exhausted")

var validationErrors = []error{
	ErrMismatchedIndex,
	ErrInvalidHash,
	ErrAchronologicalTimestamp,
	ErrMismatchedPreviousHash,
	ErrInvalidGenesisBlock,
	ErrInvalidInput,
	ErrInsufficientInputVal,
	ErrInvalidCoinbaseTransaction,
	ErrValueOverflow,
}

// IsValidationError reports whether the error is the result of a block or
// transaction failing validation.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

package database

import (
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// MintAccount is the source address of a transaction that creates value
// instead of moving it. It never holds a balance.
const MintAccount Address = ""

// =============================================================================

// Address represents an opaque account identifier. In practice it is the
// hex-encoded digest of some label, but the chain only compares addresses
// and uses them as keys.
type Address string

// ToAddress derives the address for the specified label.
func ToAddress(label string) Address {
	return Address(digest.Sum([]byte(label)).Hex())
}

// ParseAddress validates the hex-encoded string is a properly formatted
// address.
func ParseAddress(hex string) (Address, error) {
	a := Address(hex)
	if !a.IsAddress() {
		return "", errors.New("invalid address format")
	}

	return a, nil
}

// IsMint reports whether this is the mint source address.
func (a Address) IsMint() bool {
	return a == MintAccount
}

// IsAddress verifies whether the underlying data represents a 0x prefixed,
// hex-encoded digest.
func (a Address) IsAddress() bool {
	if !has0xPrefix(a) {
		return false
	}
	a = a[2:]

	return len(a) == 2*digest.Size && isHex(a)
}

// =============================================================================

// has0xPrefix validates the address starts with a 0x.
func has0xPrefix(a Address) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a Address) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

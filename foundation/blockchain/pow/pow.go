// Package pow implements the proof of work rules for the blockchain. A block
// digest solves the puzzle when the designated 128 bit window of the digest
// is numerically smaller than the block's difficulty target.
package pow

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// DigestSize is the only digest length the window can be taken from.
const DigestSize = 32

// targetBits is the width of a difficulty target.
const targetBits = 128

// DefaultTarget is the difficulty used when nothing else is configured.
// Roughly one in every 65,536 digests will solve it.
var DefaultTarget = MustParseTarget("0x000ffffffffffffffffffffffffffff")

// =============================================================================

// Target is an unsigned 128 bit difficulty target. A smaller target is
// harder to solve. The zero value can never be solved.
type Target struct {
	value uint256.Int
}

// NewTarget constructs a target from its high and low 64 bit halves.
func NewTarget(hi uint64, lo uint64) Target {
	var t Target
	t.value[0] = lo
	t.value[1] = hi

	return t
}

// ParseTarget converts a hex string, with or without the 0x prefix, into a
// target. Leading zeros are allowed. Values wider than 128 bits are rejected.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Target{}, fmt.Errorf("empty difficulty target")
	}

	s = strings.TrimLeft(s, "0")
	if len(s) > targetBits/4 {
		return Target{}, fmt.Errorf("difficulty target exceeds %d bits", targetBits)
	}

	// Pad to an even number of digits so the hex decoder accepts it.
	if len(s)%2 != 0 {
		s = "0" + s
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return Target{}, fmt.Errorf("parse difficulty target: %w", err)
	}

	var t Target
	t.value.SetBytes(b)

	return t, nil
}

// MustParseTarget is like ParseTarget but panics on a malformed value.
func MustParseTarget(s string) Target {
	t, err := ParseTarget(s)
	if err != nil {
		panic(err)
	}

	return t
}

// Bytes returns the target as 16 little endian bytes. This is the form
// used when a target is part of a block's canonical encoding.
func (t Target) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], t.value[0])
	binary.LittleEndian.PutUint64(b[8:], t.value[1])

	return b
}

// Hi returns the upper 64 bits of the target.
func (t Target) Hi() uint64 {
	return t.value[1]
}

// Lo returns the lower 64 bits of the target.
func (t Target) Lo() uint64 {
	return t.value[0]
}

// IsZero reports whether the target can never be solved.
func (t Target) IsZero() bool {
	return t.value.IsZero()
}

// Easier reports whether t accepts digests that other rejects.
func (t Target) Easier(other Target) bool {
	return t.value.Gt(&other.value)
}

// String returns the 0x prefixed hex form of the target.
func (t Target) String() string {
	return t.value.Hex()
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *Target) UnmarshalText(text []byte) error {
	v, err := ParseTarget(string(text))
	if err != nil {
		return err
	}

	*t = v
	return nil
}

// =============================================================================

// Window interprets bytes 16 through 31 of the digest as a little endian
// unsigned 128 bit integer, byte 16 being the least significant.
func Window(hash []byte) uint256.Int {
	mustDigest(hash)

	var w uint256.Int
	w[0] = binary.LittleEndian.Uint64(hash[16:24])
	w[1] = binary.LittleEndian.Uint64(hash[24:32])

	return w
}

// CheckDifficulty reports whether the digest solves the target. It panics
// when the hash is not exactly 32 bytes since that is a programming error,
// not bad block data.
func CheckDifficulty(hash []byte, target Target) bool {
	w := Window(hash)
	return w.Lt(&target.value)
}

// mustDigest panics when the hash is not a digest.
func mustDigest(hash []byte) {
	if len(hash) != DigestSize {
		panic(fmt.Sprintf("pow: digest must be %d bytes, got %d", DigestSize, len(hash)))
	}
}

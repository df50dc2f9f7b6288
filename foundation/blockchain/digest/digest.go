// Package digest provides the hashing capability used to secure the
// blockchain. Any value that can describe itself as bytes can be hashed.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Size is the number of bytes in a digest.
const Size = sha256.Size

// Digest represents the 32 byte SHA-256 output over a value's canonical
// byte encoding.
type Digest [Size]byte

// Zero represents a digest of all zeros.
var Zero Digest

// Hashable represents the behavior a value must implement to have a digest.
// The bytes returned must be the same on every call for the same value.
type Hashable interface {
	Bytes() []byte
}

// =============================================================================

// Sum returns the digest of the specified data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Of returns the digest of the hashable value.
func Of(h Hashable) Digest {
	return Sum(h.Bytes())
}

// FromHex converts a 0x prefixed hex string into a digest.
func FromHex(s string) (Digest, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("decode digest: %w", err)
	}

	if len(b) != Size {
		return Digest{}, fmt.Errorf("invalid digest length, got %d, exp %d", len(b), Size)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}

// Hex returns the 0x prefixed hex form of the digest.
func (d Digest) Hex() string {
	return hexutil.Encode(d[:])
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// IsZero reports whether every byte of the digest is zero.
func (d Digest) IsZero() bool {
	return d == Zero
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := FromHex(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}

// =============================================================================

// Encoder builds the canonical byte encoding for a value. Integers are
// written as fixed width little endian values and strings as their raw
// bytes with no length prefix.
type Encoder struct {
	buf []byte
}

// NewEncoder constructs an encoder with the specified starting capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Uint64 appends the value as 8 little endian bytes.
func (e *Encoder) Uint64(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

// String appends the raw bytes of the string.
func (e *Encoder) String(s string) *Encoder {
	e.buf = append(e.buf, s...)
	return e
}

// Raw appends the bytes as provided.
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Digest appends the 32 bytes of the digest.
func (e *Encoder) Digest(d Digest) *Encoder {
	e.buf = append(e.buf, d[:]...)
	return e
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

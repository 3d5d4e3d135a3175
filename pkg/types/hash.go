package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lattice-labs/evmrpc/pkg/hexutil"
)

// HashLength is the fixed byte width of a block, transaction, or storage
// slot hash.
const HashLength = 32

// Hash is a 32-byte Keccak-256 digest.
type Hash [HashLength]byte

// ErrInvalidHash is returned when parsing a malformed hash string.
var ErrInvalidHash = errors.New("types: invalid hash")

// BytesToHash right-aligns b into a Hash, truncating from the left if b is
// longer than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// ParseHash decodes a "0x"-prefixed 32-byte hex hash string.
func ParseHash(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != HashLength {
		return Hash{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return hexutil.Encode(h[:]) }

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler. encoding/json consults
// this (not MarshalJSON) when a Hash is used as a map key — e.g.
// AccountOverride.State/StateDiff — since JSON object keys must come from
// a string-kind, int-kind, or TextMarshaler type.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

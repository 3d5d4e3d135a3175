// Package types holds the wire-level data model shared by the codec and
// transport layers: fixed-width primitives (Address, Hash, Bloom),
// transaction/receipt/log/block shapes, and the JSON-RPC request/response
// envelopes built on top of them.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/lattice-labs/evmrpc/pkg/hexutil"
)

// AddressLength is the fixed byte width of an account address.
const AddressLength = 20

// Address is a 20-byte account or contract address.
type Address [AddressLength]byte

// ErrInvalidAddress is returned when parsing a malformed address string.
var ErrInvalidAddress = errors.New("types: invalid address")

// BytesToAddress right-aligns b into an Address, truncating from the left
// if b is longer than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress decodes a "0x"-prefixed hex address string. It accepts but
// does not require EIP-55 checksum casing; use ValidChecksum to enforce it.
func ParseAddress(s string) (Address, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != AddressLength {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Checksum renders a in mixed-case checksum form: plain EIP-55 when
// chainID is nil, or the EIP-1191 chain-specific variant when it is
// supplied (some chains, e.g. RSK, mix differently per chain so the same
// address checksums differently depending on which chain it is read on).
func (a Address) Checksum(chainID *uint64) string {
	hexDigits := hex(a[:])

	var preimage string
	if chainID != nil {
		preimage = fmt.Sprintf("%d0x%s", *chainID, hexDigits)
	} else {
		preimage = hexDigits
	}
	hash := Keccak256([]byte(preimage))
	hashHex := hex(hash)

	out := make([]byte, len(hexDigits))
	for i, c := range hexDigits {
		if c >= 'a' && c <= 'f' {
			// Nibble i of the hash selects upper/lower case for digit i.
			nibble := hashHex[i]
			if nibble >= '8' {
				out[i] = byte(c - 32)
				continue
			}
		}
		out[i] = byte(c)
	}
	return "0x" + string(out)
}

// String renders a as 0x-prefixed lowercase hex. Use Checksum for the
// mixed-case EIP-55/EIP-1191 forms.
func (a Address) String() string {
	return "0x" + hex(a[:])
}

// ValidChecksum reports whether s, if it contains any letters, uses the
// correct checksum casing for the given chain (nil for plain EIP-55). An
// all-lowercase or all-uppercase string always passes (unchecksummed).
func ValidChecksum(s string, chainID *uint64) bool {
	body := strings.TrimPrefix(s, "0x")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	a, err := ParseAddress(s)
	if err != nil {
		return false
	}
	return a.Checksum(chainID) == s
}

func hex(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler, the same lowercase hex
// form as String. encoding/json consults this (not MarshalJSON) when an
// Address is used as a map key — e.g. StateOverride — since JSON object
// keys must come from a string-kind, int-kind, or TextMarshaler type.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Equal(o Address) bool { return bytes.Equal(a[:], o[:]) }

// Keccak256 hashes data with the Keccak-256 permutation (pre-NIST padding)
// used throughout the account and transaction encoding.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

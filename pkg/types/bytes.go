package types

import (
	"encoding/json"

	"github.com/lattice-labs/evmrpc/pkg/hexutil"
)

// Bytes is a variable-length byte string that marshals to/from JSON as a
// "0x"-prefixed hex string, the wire form used for calldata, logsBloom
// filters, and raw transaction payloads.
type Bytes []byte

func (b Bytes) String() string { return hexutil.Encode(b) }

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(b))
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// BloomByteLength is the fixed width of a block/receipt logs bloom filter.
const BloomByteLength = 256

// Bloom is the 2048-bit (256-byte) logs bloom filter attached to blocks
// and receipts.
type Bloom [BloomByteLength]byte

// BytesToBloom right-aligns b into a Bloom.
func BytesToBloom(b []byte) Bloom {
	var bl Bloom
	if len(b) > BloomByteLength {
		b = b[len(b)-BloomByteLength:]
	}
	copy(bl[BloomByteLength-len(b):], b)
	return bl
}

// Add ORs in the three bit positions derived from hashing data, matching
// the Ethereum bloom construction (each of the low 11 bits of 3 slices of
// the Keccak-256 hash selects one of 2048 bits).
func (bl *Bloom) Add(data []byte) {
	h := Keccak256(data)
	for i := 0; i < 6; i += 2 {
		bit := (uint(h[i+1]) + uint(h[i])<<8) & 0x7ff
		byteIdx := BloomByteLength - 1 - int(bit/8)
		bl[byteIdx] |= 1 << (bit % 8)
	}
}

// Test reports whether all bits set by Add(data) are already set in bl,
// i.e. whether data may be present (blooms admit false positives, never
// false negatives).
func (bl Bloom) Test(data []byte) bool {
	var probe Bloom
	probe.Add(data)
	for i := range bl {
		if probe[i]&^bl[i] != 0 {
			return false
		}
	}
	return true
}

func (bl Bloom) Bytes() []byte { return bl[:] }

func (bl Bloom) String() string { return hexutil.Encode(bl[:]) }

func (bl Bloom) MarshalJSON() ([]byte, error) {
	return json.Marshal(bl.String())
}

func (bl *Bloom) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(s)
	if err != nil {
		return err
	}
	*bl = BytesToBloom(decoded)
	return nil
}

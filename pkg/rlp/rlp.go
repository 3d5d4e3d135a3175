// Package rlp implements Ethereum's Recursive Length Prefix encoding: a
// canonical binary format for integers, byte strings, and lists of the
// same, as defined by the Ethereum Yellow Paper.
//
// The encoder is two-phase: every Encodable reports its exact encoded size
// up front (RLPSize), the caller sums those sizes for a list header, and
// the encoder writes into a single pre-sized buffer with no further
// allocation. Mis-reporting a size is a programmer error, not a runtime
// one: Encoder panics if a Write call would under- or over-fill the
// buffer it was handed.
package rlp

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidRLP is returned by decode helpers on malformed input. Decoder
// never panics on bad input; it returns this error (or, for the OrElse/
// OrNil helpers, the caller-supplied fallback or nil).
var ErrInvalidRLP = errors.New("rlp: invalid encoding")

const (
	offsetShortString = 0x80
	offsetLongString  = 0xb7
	offsetShortList   = 0xc0
	offsetLongList    = 0xf7
)

// Encodable is implemented by anything that can place itself into an RLP
// byte string. RLPSize must return exactly the number of bytes EncodeRLP
// will write, the item's own header included; a containing List sums its
// children's RLPSize values as its payload size and adds its own header.
type Encodable interface {
	EncodeRLP(enc *Encoder) error
	RLPSize() int
}

// ---- integers -------------------------------------------------------

// Uint wraps a non-negative integer for RLP encoding as a minimal
// big-endian byte string (zero encodes as the empty string).
type Uint uint64

func (u Uint) RLPSize() int {
	return sizeOfStringBytes(minimalBigEndian(uint64(u)))
}

func (u Uint) EncodeRLP(enc *Encoder) error {
	return enc.writeString(minimalBigEndian(uint64(u)))
}

func minimalBigEndian(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var buf [8]byte
	i := 8
	for n > 0 {
		i--
		buf[i] = byte(n)
		n >>= 8
	}
	return buf[i:]
}

// BigInt wraps a non-negative big.Int for RLP encoding. Encoding a
// negative value is a programmer error and panics, matching spec:
// "Negative integers are rejected".
type BigInt struct{ V *big.Int }

func (b BigInt) bytes() []byte {
	if b.V == nil || b.V.Sign() == 0 {
		return nil
	}
	if b.V.Sign() < 0 {
		panic("rlp: cannot encode negative integer")
	}
	return b.V.Bytes()
}

func (b BigInt) RLPSize() int { return sizeOfStringBytes(b.bytes()) }

func (b BigInt) EncodeRLP(enc *Encoder) error {
	return enc.writeString(b.bytes())
}

// ---- byte strings -----------------------------------------------------

// Bytes wraps a raw byte string for RLP encoding.
type Bytes []byte

func (b Bytes) RLPSize() int            { return sizeOfStringBytes(b) }
func (b Bytes) EncodeRLP(e *Encoder) error { return e.writeString(b) }

// sizeOfStringBytes returns the exact number of bytes EncodeRLP's
// writeString will emit for this byte string: the single byte itself when
// it is a lone byte <= 0x7f, a 1-byte header plus payload for short
// strings (<56 bytes), and a length-of-length header plus payload for
// long strings.
func sizeOfStringBytes(b []byte) int {
	n := len(b)
	if n == 1 && b[0] <= 0x7f {
		return 1
	}
	if n < 56 {
		return 1 + n
	}
	return 1 + lenOfLength(n) + n
}

func lenOfLength(n int) int {
	l := 0
	for n > 0 {
		l++
		n >>= 8
	}
	return l
}

// ---- lists --------------------------------------------------------

// List is a sequence of Encodables treated as one RLP list.
type List []Encodable

func (l List) payloadSize() int {
	n := 0
	for _, e := range l {
		n += e.RLPSize()
	}
	return n
}

func (l List) RLPSize() int {
	p := l.payloadSize()
	if p < 56 {
		return 1 + p
	}
	return 1 + lenOfLength(p) + p
}

func (l List) EncodeRLP(enc *Encoder) error {
	p := l.payloadSize()
	if err := enc.writeListHeader(p); err != nil {
		return err
	}
	for _, e := range l {
		if err := e.EncodeRLP(enc); err != nil {
			return err
		}
	}
	return nil
}

// Raw wraps pre-encoded RLP bytes, inserted verbatim (no further framing).
// Used by decoders that keep an item's raw encoding around (e.g. inside a
// blob sidecar's outer list) without re-parsing it.
type Raw []byte

func (r Raw) RLPSize() int              { return len(r) }
func (r Raw) EncodeRLP(enc *Encoder) error { return enc.writeRaw(r) }

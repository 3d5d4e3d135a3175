package rlp

import (
	"fmt"
	"math/big"
)

// Decoder is a forward-only reader over an RLP byte string. It never reads
// past the declared length of the item it is currently positioned on.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder wraps data for decoding, starting at offset zero.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// IsDone reports whether the decoder has consumed all of its input.
func (d *Decoder) IsDone() bool { return d.pos >= len(d.data) }

// PeekByte returns the next undecoded byte without consuming it.
func (d *Decoder) PeekByte() (byte, error) {
	if d.IsDone() {
		return 0, fmt.Errorf("%w: peek past end of input", ErrInvalidRLP)
	}
	return d.data[d.pos], nil
}

// IsNextElementList reports whether the next item is a list (vs a string),
// without consuming it.
func (d *Decoder) IsNextElementList() (bool, error) {
	b, err := d.PeekByte()
	if err != nil {
		return false, err
	}
	return b >= offsetShortList, nil
}

// header describes one decoded RLP item: whether it is a list, the byte
// range of its payload within d.data, and the total bytes (header +
// payload) it occupies.
type header struct {
	isList      bool
	contentFrom int
	contentTo   int
	totalLen    int
}

func (d *Decoder) readHeader() (header, error) {
	if d.IsDone() {
		return header{}, fmt.Errorf("%w: read past end of input", ErrInvalidRLP)
	}
	b := d.data[d.pos]
	rest := d.data[d.pos+1:]

	switch {
	case b <= 0x7f:
		return header{isList: false, contentFrom: d.pos, contentTo: d.pos + 1, totalLen: 1}, nil

	case b <= offsetLongString: // 0x80..0xb7 short string
		n := int(b - offsetShortString)
		if len(rest) < n {
			return header{}, fmt.Errorf("%w: short string truncated", ErrInvalidRLP)
		}
		if n == 1 && rest[0] <= 0x7f {
			return header{}, fmt.Errorf("%w: non-canonical single-byte string encoding", ErrInvalidRLP)
		}
		from := d.pos + 1
		return header{isList: false, contentFrom: from, contentTo: from + n, totalLen: 1 + n}, nil

	case b < offsetShortList: // 0xb8..0xbf long string
		lenOfLen := int(b - offsetLongString)
		if len(rest) < lenOfLen {
			return header{}, fmt.Errorf("%w: long string length truncated", ErrInvalidRLP)
		}
		n, err := decodeLengthBytes(rest[:lenOfLen])
		if err != nil {
			return header{}, err
		}
		if n < 56 {
			return header{}, fmt.Errorf("%w: non-canonical long string length", ErrInvalidRLP)
		}
		from := d.pos + 1 + lenOfLen
		if len(d.data)-from < n {
			return header{}, fmt.Errorf("%w: long string truncated", ErrInvalidRLP)
		}
		return header{isList: false, contentFrom: from, contentTo: from + n, totalLen: 1 + lenOfLen + n}, nil

	case b <= offsetLongList: // 0xc0..0xf7 short list
		n := int(b - offsetShortList)
		if len(rest) < n {
			return header{}, fmt.Errorf("%w: short list truncated", ErrInvalidRLP)
		}
		from := d.pos + 1
		return header{isList: true, contentFrom: from, contentTo: from + n, totalLen: 1 + n}, nil

	default: // 0xf8..0xff long list
		lenOfLen := int(b - offsetLongList)
		if len(rest) < lenOfLen {
			return header{}, fmt.Errorf("%w: long list length truncated", ErrInvalidRLP)
		}
		n, err := decodeLengthBytes(rest[:lenOfLen])
		if err != nil {
			return header{}, err
		}
		if n < 56 {
			return header{}, fmt.Errorf("%w: non-canonical long list length", ErrInvalidRLP)
		}
		from := d.pos + 1 + lenOfLen
		if len(d.data)-from < n {
			return header{}, fmt.Errorf("%w: long list truncated", ErrInvalidRLP)
		}
		return header{isList: true, contentFrom: from, contentTo: from + n, totalLen: 1 + lenOfLen + n}, nil
	}
}

func decodeLengthBytes(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: zero-length length-of-length", ErrInvalidRLP)
	}
	if b[0] == 0 {
		return 0, fmt.Errorf("%w: non-minimal length encoding", ErrInvalidRLP)
	}
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: length overflows platform int", ErrInvalidRLP)
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	if n > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("%w: length overflows platform int", ErrInvalidRLP)
	}
	return int(n), nil
}

// DecodeBytes decodes the next item as a byte string.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if h.isList {
		return nil, fmt.Errorf("%w: expected byte string, got list", ErrInvalidRLP)
	}
	out := d.data[h.contentFrom:h.contentTo]
	d.pos += h.totalLen
	return out, nil
}

// DecodeBytesOrNil is DecodeBytes but returns nil instead of an error.
func (d *Decoder) DecodeBytesOrNil() []byte {
	b, err := d.DecodeBytes()
	if err != nil {
		return nil
	}
	return b
}

// DecodeBigInt decodes the next item as a minimal big-endian integer.
// A non-minimal encoding (leading zero byte) is rejected.
func (d *Decoder) DecodeBigInt() (*big.Int, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, fmt.Errorf("%w: non-minimal integer encoding", ErrInvalidRLP)
	}
	return new(big.Int).SetBytes(b), nil
}

// DecodeBigIntOrElse is DecodeBigInt but returns fallback instead of an error.
func (d *Decoder) DecodeBigIntOrElse(fallback *big.Int) *big.Int {
	v, err := d.DecodeBigInt()
	if err != nil {
		return fallback
	}
	return v
}

// DecodeUint64 decodes the next item as a minimal big-endian integer no
// wider than 8 bytes.
func (d *Decoder) DecodeUint64() (uint64, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: integer overflows uint64", ErrInvalidRLP)
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, fmt.Errorf("%w: non-minimal integer encoding", ErrInvalidRLP)
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// DecodeUint64OrElse is DecodeUint64 but returns fallback instead of an error.
func (d *Decoder) DecodeUint64OrElse(fallback uint64) uint64 {
	v, err := d.DecodeUint64()
	if err != nil {
		return fallback
	}
	return v
}

// DecodeList decodes the next item as a list, runs fn with a sub-decoder
// scoped to the list's payload, and fails if fn does not consume the
// payload exactly (a malformed or truncated element sequence).
func (d *Decoder) DecodeList(fn func(*Decoder) error) error {
	h, err := d.readHeader()
	if err != nil {
		return err
	}
	if !h.isList {
		return fmt.Errorf("%w: expected list, got byte string", ErrInvalidRLP)
	}
	sub := NewDecoder(d.data[h.contentFrom:h.contentTo])
	if err := fn(sub); err != nil {
		return err
	}
	if !sub.IsDone() {
		return fmt.Errorf("%w: list has trailing undecoded bytes", ErrInvalidRLP)
	}
	d.pos += h.totalLen
	return nil
}

// Decodable is implemented by types that know how to read themselves from
// a single RLP item.
type Decodable interface {
	DecodeRLP(d *Decoder) error
}

// Decode decodes the next item into v.
func Decode[T Decodable](d *Decoder, v T) error {
	return v.DecodeRLP(d)
}

// DecodeAsList decodes the next item as a list of homogeneous elements,
// calling newT for each element and collecting the results. It is the
// "flat sequence of T" helper referenced throughout the codec's design:
// callers use it for access lists, authorization lists, log topics, etc.
func DecodeAsList[T Decodable](d *Decoder, newT func() T) ([]T, error) {
	var out []T
	err := d.DecodeList(func(sub *Decoder) error {
		for !sub.IsDone() {
			v := newT()
			if err := v.DecodeRLP(sub); err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAsListOrNil is DecodeAsList but returns nil instead of an error.
func DecodeAsListOrNil[T Decodable](d *Decoder, newT func() T) []T {
	out, err := DecodeAsList(d, newT)
	if err != nil {
		return nil
	}
	return out
}

// Raw item access, for callers that need to keep an element's exact
// encoding (e.g. a blob sidecar's proof list) rather than interpreting it.

// DecodeRaw consumes and returns the next item's full encoding (header +
// payload), without interpreting it as a list or string.
func (d *Decoder) DecodeRaw() ([]byte, error) {
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	start := d.pos
	d.pos += h.totalLen
	return d.data[start : start+h.totalLen], nil
}

package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeAndCheckSize(t *testing.T, v Encodable) []byte {
	t.Helper()
	b, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, v.RLPSize(), len(b), "RLPSize budget must equal emitted length")
	return b
}

func TestZeroEncodesAsEmptyString(t *testing.T) {
	b := encodeAndCheckSize(t, Uint(0))
	assert.Equal(t, []byte{0x80}, b)
}

func TestSingleByteSelfEncodes(t *testing.T) {
	b := encodeAndCheckSize(t, Bytes{0x42})
	assert.Equal(t, []byte{0x42}, b)
}

func TestSingleHighByteGetsHeader(t *testing.T) {
	b := encodeAndCheckSize(t, Bytes{0x80})
	assert.Equal(t, []byte{0x81, 0x80}, b)
}

func TestShortAndLongStrings(t *testing.T) {
	short := encodeAndCheckSize(t, Bytes("dog"))
	assert.Equal(t, append([]byte{0x83}, "dog"...), short)

	long := make([]byte, 56)
	for i := range long {
		long[i] = 'a'
	}
	enc := encodeAndCheckSize(t, Bytes(long))
	assert.Equal(t, byte(0xb8), enc[0])
	assert.Equal(t, byte(56), enc[1])
}

func TestListHeader(t *testing.T) {
	l := List{Bytes("cat"), Bytes("dog")}
	enc := encodeAndCheckSize(t, l)
	assert.Equal(t, byte(0xc8), enc[0])
}

func TestEmptyList(t *testing.T) {
	enc := encodeAndCheckSize(t, List{})
	assert.Equal(t, []byte{0xc0}, enc)
}

func TestIntegerRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 0x7f, 0x80, 21000, 0xffffffffffffffff} {
		enc := encodeAndCheckSize(t, Uint(n))
		d := NewDecoder(enc)
		got, err := d.DecodeUint64()
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.True(t, d.IsDone())
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	n := new(big.Int)
	n.SetString("53940392390000001024", 10)
	enc := encodeAndCheckSize(t, BigInt{n})
	d := NewDecoder(enc)
	got, err := d.DecodeBigInt()
	require.NoError(t, err)
	assert.Equal(t, 0, n.Cmp(got))
}

func TestBytesRoundTrip(t *testing.T) {
	for _, b := range [][]byte{
		{}, {0x00}, {0x7f}, {0x80}, {0xff},
		[]byte("Lorem ipsum dolor sit amet, consectetur adipisicing elit"),
	} {
		enc := encodeAndCheckSize(t, Bytes(b))
		d := NewDecoder(enc)
		got, err := d.DecodeBytes()
		require.NoError(t, err)
		assert.Equal(t, b, got)
		assert.True(t, d.IsDone())
	}
}

func TestNestedListRoundTrip(t *testing.T) {
	l := List{
		Uint(1),
		List{Bytes("a"), Bytes("bc")},
		Bytes("tail"),
	}
	enc := encodeAndCheckSize(t, l)

	d := NewDecoder(enc)
	isList, err := d.IsNextElementList()
	require.NoError(t, err)
	assert.True(t, isList)

	var first uint64
	var second [][]byte
	var third []byte
	err = d.DecodeList(func(sub *Decoder) error {
		v, err := sub.DecodeUint64()
		if err != nil {
			return err
		}
		first = v
		err = sub.DecodeList(func(inner *Decoder) error {
			for !inner.IsDone() {
				b, err := inner.DecodeBytes()
				if err != nil {
					return err
				}
				second = append(second, b)
			}
			return nil
		})
		if err != nil {
			return err
		}
		third, err = sub.DecodeBytes()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("bc")}, second)
	assert.Equal(t, []byte("tail"), third)
	assert.True(t, d.IsDone())
}

func TestDecoderRejectsTrailingGarbageInList(t *testing.T) {
	// A list header claiming 2 bytes of payload but whose content the
	// callback only partially consumes must fail.
	enc := MustEncode(List{Bytes("a"), Bytes("b")})
	d := NewDecoder(enc)
	err := d.DecodeList(func(sub *Decoder) error {
		_, err := sub.DecodeBytes()
		return err // intentionally don't consume the second element
	})
	assert.ErrorIs(t, err, ErrInvalidRLP)
}

func TestDecoderRejectsNonMinimalSingleByteString(t *testing.T) {
	// 0x8100 is byte-string-of-length-1 containing 0x00, whose canonical
	// encoding is the single byte 0x00 itself.
	d := NewDecoder([]byte{0x81, 0x00})
	_, err := d.DecodeBytes()
	assert.ErrorIs(t, err, ErrInvalidRLP)
}

func TestDecoderRejectsNonMinimalInteger(t *testing.T) {
	// A 2-byte string encoding a value that fits in 1 byte (leading zero).
	d := NewDecoder([]byte{0x82, 0x00, 0x01})
	_, err := d.DecodeUint64()
	assert.ErrorIs(t, err, ErrInvalidRLP)
}

func TestDecoderNeverReadsPastDeclaredLength(t *testing.T) {
	// Short string claims 3 bytes but only 2 are present.
	d := NewDecoder([]byte{0x83, 0x01, 0x02})
	_, err := d.DecodeBytes()
	assert.ErrorIs(t, err, ErrInvalidRLP)
}

func TestDecodeAsListFlatSequence(t *testing.T) {
	l := List{Bytes("a"), Bytes("b"), Bytes("c")}
	enc := MustEncode(l)
	d := NewDecoder(enc)
	items, err := DecodeAsList(d, func() *rawItem { return &rawItem{} })
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", string(items[0].b))
	assert.Equal(t, "c", string(items[2].b))
}

type rawItem struct{ b []byte }

func (r *rawItem) DecodeRLP(d *Decoder) error {
	b, err := d.DecodeBytes()
	if err != nil {
		return err
	}
	r.b = append([]byte(nil), b...)
	return nil
}

package hexutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x7f},
		{0x80},
		{0xff},
		{0x01, 0x02, 0x03},
		{0x00, 0x00, 0x01},
	}
	for _, b := range cases {
		got, err := Decode(EncodeNoPrefix(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)

		got2, err := Decode(Encode(b))
		require.NoError(t, err)
		assert.Equal(t, b, got2)
	}
}

func TestOddLengthLeftPads(t *testing.T) {
	b, err := Decode("f")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0f}, b)
}

func TestNumericEncoding(t *testing.T) {
	assert.Equal(t, "0x0", EncodeUint64(0))
	assert.Equal(t, "0x5208", EncodeUint64(21000))
	n, err := DecodeUint64("0x5208")
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), n)

	assert.Equal(t, "0x0", EncodeBig(big.NewInt(0)))
	assert.Equal(t, "0x5208", EncodeBig(big.NewInt(21000)))
}

func TestInvalidHexRejected(t *testing.T) {
	_, err := Decode("0xzz")
	assert.ErrorIs(t, err, ErrInvalidHex)

	assert.False(t, IsValidHex(""))
	assert.False(t, IsValidHex("0xgg"))
	assert.True(t, IsValidHex("0x0f"))
}

func TestDecodeUnsafeNeverErrors(t *testing.T) {
	got := DecodeUnsafe("0xzzzz")
	assert.Equal(t, []byte{0xff, 0xff}, got)
}

func TestEncodeBigNegativePanics(t *testing.T) {
	assert.Panics(t, func() {
		EncodeBig(big.NewInt(-1))
	})
}

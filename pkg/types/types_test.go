package types

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressChecksum(t *testing.T) {
	// Canonical EIP-55 test vector.
	a, err := ParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", a.Checksum(nil))
	assert.True(t, ValidChecksum("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil))
	assert.True(t, ValidChecksum("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", nil))
	assert.False(t, ValidChecksum("0x5aAeb6053F3E94c9b9A09f33669435E7Ef1BeAed", nil))
}

func TestAddressChecksumEIP1191VariesByChain(t *testing.T) {
	// Canonical EIP-1191 test vector: the same address checksums
	// differently on RSK mainnet (chain 30) vs. RSK testnet (chain 31),
	// and differently again from plain EIP-55.
	a, err := ParseAddress("0x27b1fdb04752bbc536007a920d24acb045561c26")
	require.NoError(t, err)

	mainnet := uint64(30)
	testnet := uint64(31)

	assert.Equal(t, "0x27b1FdB04752BBc536007A920D24ACB045561c26", a.Checksum(&mainnet))
	assert.Equal(t, "0x27B1FdB04752BbC536007a920D24acB045561C26", a.Checksum(&testnet))
	assert.NotEqual(t, a.Checksum(&mainnet), a.Checksum(&testnet))
	assert.NotEqual(t, a.Checksum(&mainnet), a.Checksum(nil))

	assert.True(t, ValidChecksum(a.Checksum(&mainnet), &mainnet))
	assert.False(t, ValidChecksum(a.Checksum(&mainnet), &testnet))
}

func TestAddressStringIsLowercaseByDefault(t *testing.T) {
	a, err := ParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", a.String())

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"`, string(b))
}

func TestAddressJSONRoundTrip(t *testing.T) {
	a, err := ParseAddress("0x0000000000000000000000000000000000000042")
	require.NoError(t, err)

	b, err := json.Marshal(a)
	require.NoError(t, err)

	var got Address
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, a, got)
}

func TestAddressTextMarshalRoundTrip(t *testing.T) {
	a, err := ParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)

	text, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", string(text))

	var got Address
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, a, got)
}

func TestHashTextMarshalRoundTrip(t *testing.T) {
	var h Hash
	h[31] = 0xff

	text, err := h.MarshalText()
	require.NoError(t, err)

	var got Hash
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, h, got)
}

// TestStateOverrideJSONRoundTripNonEmpty exercises the map-key case that
// previously broke: Address and Hash as non-empty map keys require
// encoding.TextMarshaler, not just json.Marshaler.
func TestStateOverrideJSONRoundTripNonEmpty(t *testing.T) {
	addr, err := ParseAddress("0x0000000000000000000000000000000000000042")
	require.NoError(t, err)
	slot := Hash{1}
	value := Hash{2}

	override := StateOverride{
		addr: NewAccountOverride(nil, nil, nil, map[Hash]Hash{slot: value}, nil),
	}

	b, err := json.Marshal(override)
	require.NoError(t, err)

	var got StateOverride
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, override[addr].State, got[addr].State)
}

func TestHashJSONRoundTrip(t *testing.T) {
	var want Hash
	want[31] = 0xff
	b, err := json.Marshal(want)
	require.NoError(t, err)

	var got Hash
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, want, got)
}

func TestBloomAddAndTest(t *testing.T) {
	var bl Bloom
	bl.Add([]byte("hello"))
	assert.True(t, bl.Test([]byte("hello")))
	assert.False(t, bl.Test([]byte("world-probably-not-set")))
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := NewQuantity(big.NewInt(21000))
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, `"0x5208"`, string(b))

	var got Quantity
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, uint64(21000), got.Uint64())
}

func TestSignatureParityEncodings(t *testing.T) {
	cases := []struct {
		v      uint64
		parity byte
	}{
		{0, 0}, {1, 1}, {27, 0}, {28, 1}, {37, 0}, {38, 1},
	}
	for _, c := range cases {
		s := Signature{R: big.NewInt(1), S: big.NewInt(1), V: c.v}
		p, err := s.Parity()
		require.NoError(t, err)
		assert.Equal(t, c.parity, p, "v=%d", c.v)
	}

	s := Signature{V: 12}
	_, err := s.Parity()
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSignatureChainID(t *testing.T) {
	s := Signature{V: EIP155V(1, 1)}
	id, ok := s.ChainID()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)

	s2 := Signature{V: 27}
	_, ok2 := s2.ChainID()
	assert.False(t, ok2)
}

func TestAccountOverrideExclusivityPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewAccountOverride(nil, nil, nil,
			map[Hash]Hash{{}: {}},
			map[Hash]Hash{{1}: {1}},
		)
	})
}

func TestLogJSONDecodePreservesOtherFields(t *testing.T) {
	raw := []byte(`{
		"address":"0x0000000000000000000000000000000000000042",
		"topics":[],
		"data":"0x",
		"blockNumber":"0x1",
		"blockHash":"0x` + hash64("aa") + `",
		"transactionHash":"0x` + hash64("bb") + `",
		"transactionIndex":"0x0",
		"logIndex":"0x0",
		"removed":false,
		"weirdNodeSpecificField":"surprise"
	}`)
	var l Log
	require.NoError(t, json.Unmarshal(raw, &l))
	require.NotNil(t, l.OtherFields)
	_, ok := l.OtherFields["weirdNodeSpecificField"]
	assert.True(t, ok)
}

func TestStrictModeRejectsUnknownFields(t *testing.T) {
	require.NoError(t, os.Setenv(StrictModeEnv, "true"))
	defer os.Unsetenv(StrictModeEnv)

	raw := []byte(`{
		"address":"0x0000000000000000000000000000000000000042",
		"topics":[],
		"data":"0x",
		"blockNumber":"0x1",
		"blockHash":"0x` + hash64("aa") + `",
		"transactionHash":"0x` + hash64("bb") + `",
		"transactionIndex":"0x0",
		"logIndex":"0x0",
		"removed":false,
		"unknownField":"boom"
	}`)
	var l Log
	err := json.Unmarshal(raw, &l)
	assert.Error(t, err)
}

func TestSubscriptionTakeAndClose(t *testing.T) {
	ch := make(chan int, 4)
	ch <- 1
	ch <- 2
	ch <- 3
	closed := false
	sub := NewSubscription(ch, func() { closed = true })

	ctx := context.Background()
	v, ok, err := sub.Take(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	sub.Close()
	assert.True(t, sub.IsClosed())
	time.Sleep(time.Millisecond)
	assert.True(t, closed)

	v, ok, err = sub.Take(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSubscriptionTakeRespectsContextCancellation(t *testing.T) {
	ch := make(chan int)
	sub := NewSubscription(ch, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok, err := sub.Take(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func hash64(suffix string) string {
	out := make([]byte, 64)
	for i := range out {
		out[i] = '0'
	}
	copy(out[64-len(suffix):], suffix)
	return string(out)
}

package txn

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

func testSigner(t *testing.T) *PrivateKeySigner {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	s, err := NewPrivateKeySigner(key)
	require.NoError(t, err)
	return s
}

func mustAddr(t *testing.T, s string) types.Address {
	t.Helper()
	a, err := types.ParseAddress(s)
	require.NoError(t, err)
	return a
}

// property: recoverFromHash(keccak(msg), sign(key, keccak(msg))) == address(key)
func TestSignAndRecoverRoundTrip(t *testing.T) {
	signer := testSigner(t)
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	tx := NewLegacyTx(1, 5, &to, big.NewInt(1000), big.NewInt(1_000_000_000), 21000, nil)

	signed, err := Sign(tx, signer)
	require.NoError(t, err)

	from, err := signed.From()
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
	assert.True(t, signed.Valid())
}

func TestSignAndRecoverRoundTripAllTypes(t *testing.T) {
	signer := testSigner(t)
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	accessList := []AccessTuple{{Address: to, StorageKeys: []types.Hash{types.BytesToHash([]byte("slot-one"))}}}

	cases := map[string]*Data{
		"legacy-no-chainid": NewLegacyTx(0, 1, &to, big.NewInt(1), big.NewInt(10), 21000, nil),
		"legacy-eip155":     NewLegacyTx(1, 1, &to, big.NewInt(1), big.NewInt(10), 21000, nil),
		"access-list":       NewAccessListTx(1, 2, &to, big.NewInt(2), big.NewInt(10), 21000, []byte{1, 2, 3}, accessList),
		"dynamic-fee":       NewDynamicFeeTx(1, 3, &to, big.NewInt(3), big.NewInt(1), big.NewInt(10), 21000, nil, accessList),
		"set-code": NewSetCodeTx(1, 4, to, big.NewInt(4), big.NewInt(1), big.NewInt(10), 21000, nil, accessList,
			[]Authorization{{ChainID: 1, Address: to, Nonce: 0, V: 0, R: big.NewInt(1), S: big.NewInt(1)}}),
	}

	for name, tx := range cases {
		tx := tx
		t.Run(name, func(t *testing.T) {
			signed, err := Sign(tx, signer)
			require.NoError(t, err)
			from, err := signed.From()
			require.NoError(t, err)
			assert.Equal(t, signer.Address(), from)
		})
	}
}

// property: hash(tx) == hash(rlpDecode(rlpEncode(tx)))
func TestHashStableAcrossEncodeDecode(t *testing.T) {
	signer := testSigner(t)
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	accessList := []AccessTuple{{Address: to, StorageKeys: []types.Hash{types.BytesToHash([]byte("slot"))}}}

	cases := map[string]*Data{
		"legacy":       NewLegacyTx(1, 7, &to, big.NewInt(42), big.NewInt(60317759056), 21000, nil),
		"access-list":  NewAccessListTx(1, 8, &to, big.NewInt(42), big.NewInt(10), 21000, []byte{0xde, 0xad}, accessList),
		"dynamic-fee":  NewDynamicFeeTx(1, 9, &to, big.NewInt(42), big.NewInt(2), big.NewInt(20), 21000, nil, accessList),
		"set-code": NewSetCodeTx(1, 10, to, big.NewInt(42), big.NewInt(2), big.NewInt(20), 21000, nil, accessList,
			[]Authorization{{ChainID: 1, Address: to, Nonce: 1, V: 1, R: big.NewInt(2), S: big.NewInt(3)}}),
	}

	for name, tx := range cases {
		tx := tx
		t.Run(name, func(t *testing.T) {
			signed, err := Sign(tx, signer)
			require.NoError(t, err)

			wantHash, err := signed.Hash()
			require.NoError(t, err)

			env, err := signed.Tx.SignedEnvelope(signed.Signature)
			require.NoError(t, err)
			raw, err := EnvelopeBytes(env)
			require.NoError(t, err)

			decoded, err := Decode(raw)
			require.NoError(t, err)

			gotHash, err := decoded.Hash()
			require.NoError(t, err)
			assert.Equal(t, wantHash, gotHash)

			decodedFrom, err := decoded.From()
			require.NoError(t, err)
			assert.Equal(t, signer.Address(), decodedFrom)
		})
	}
}

func TestBlobSignatureHashInvariantToSidecar(t *testing.T) {
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	hashes := []types.Hash{types.BytesToHash([]byte("versioned-hash"))}

	withoutSidecar := NewBlobTx(1, 11, to, big.NewInt(1), big.NewInt(1), big.NewInt(10), 21000, nil, nil, big.NewInt(1), hashes, nil)

	sidecar := &BlobSidecar{
		Blobs:       [][BlobSize]byte{{}},
		Commitments: [][KZGSize]byte{{}},
		Proofs:      [][KZGSize]byte{{}},
	}
	withSidecar := NewBlobTx(1, 11, to, big.NewInt(1), big.NewInt(1), big.NewInt(10), 21000, nil, nil, big.NewInt(1), hashes, sidecar)

	h1, err := withoutSidecar.SignatureHash()
	require.NoError(t, err)
	h2, err := withSidecar.SignatureHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestBlobSidecarLengthMismatchPanics(t *testing.T) {
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	hashes := []types.Hash{types.BytesToHash([]byte("versioned-hash"))}
	sidecar := &BlobSidecar{
		Blobs:       [][BlobSize]byte{{}},
		Commitments: [][KZGSize]byte{{}, {}},
		Proofs:      [][KZGSize]byte{{}},
	}
	assert.Panics(t, func() {
		NewBlobTx(1, 11, to, big.NewInt(1), big.NewInt(1), big.NewInt(10), 21000, nil, nil, big.NewInt(1), hashes, sidecar)
	})
}

// Concrete legacy vector: a real mainnet-shaped signed transaction with no
// EIP-155 replay protection (chain id absent), verifying recovery accepts
// an externally produced electrum-form (v=28) signature.
func TestRecoverKnownLegacyVector(t *testing.T) {
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	tx := NewLegacyTx(0, 71, &to, bigFromString(t, "53940392390000001024"), big.NewInt(60317759056), 21000, nil)

	sig := types.Signature{
		R: bigFromString(t, "19421212088719815271344666575303211260201938119335252342119094927553198774356"),
		S: bigFromString(t, "31544167366976575860499615173798475590035610996395232018037175896014426317714"),
		V: 28,
	}

	_, ok := sig.ChainID()
	assert.False(t, ok, "v=28 is electrum form and carries no chain id")

	hash, err := tx.SignatureHash()
	require.NoError(t, err)

	_, err = RecoverSender(hash, sig)
	assert.NoError(t, err)
}

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestDecodeUnsupportedTypeByte(t *testing.T) {
	raw := []byte{0x7f, 0x01, 0x02}
	signed, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, signed.Tx.UnsupportedTypeByte)
	assert.Equal(t, byte(0x7f), *signed.Tx.UnsupportedTypeByte)
}

func TestNonLegacyTxRequiresPositiveChainID(t *testing.T) {
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	assert.Panics(t, func() {
		NewAccessListTx(0, 1, &to, big.NewInt(1), big.NewInt(1), 21000, nil, nil)
	})
}

func TestSetCodeTxRequiresAuthorizationList(t *testing.T) {
	to := mustAddr(t, "0x32Be343B94f860124dC4fEe278FDCBD38C102D88")
	assert.Panics(t, func() {
		NewSetCodeTx(1, 1, to, big.NewInt(1), big.NewInt(1), big.NewInt(10), 21000, nil, nil, nil)
	})
}

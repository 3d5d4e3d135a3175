package txn

import (
	"math/big"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

// Data holds the unsigned fields of a transaction of any supported type.
// Which fields are meaningful depends on Type; construct via the New*
// helpers, which enforce the invariants in spec rather than via a struct
// literal.
type Data struct {
	Type Type

	ChainID uint64 // 0 only for legacy without EIP-155
	Nonce   uint64

	GasPrice  *big.Int // legacy, access-list
	GasTipCap *big.Int // dynamic-fee, blob, set-code
	GasFeeCap *big.Int // dynamic-fee, blob, set-code

	Gas   uint64
	To    *types.Address // nil = contract creation; forbidden for blob/set-code
	Value *big.Int
	Data  []byte

	AccessList []AccessTuple // access-list, dynamic-fee, blob, set-code

	BlobFeeCap          *big.Int
	BlobVersionedHashes []types.Hash
	Sidecar             *BlobSidecar // network-encoding only; absent from signature hash

	AuthorizationList []Authorization // set-code

	// UnsupportedTypeByte is set (and every other field is zero) when this
	// Data was decoded from an envelope whose type byte this library does
	// not recognize; it can be observed but never re-encoded or signed.
	UnsupportedTypeByte *byte
}

func mustNonNegative(name string, v *big.Int) {
	if v != nil && v.Sign() < 0 {
		panic("txn: " + name + " must not be negative")
	}
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func cloneAccessList(al []AccessTuple) []AccessTuple {
	if al == nil {
		return nil
	}
	out := make([]AccessTuple, len(al))
	copy(out, al)
	return out
}

// NewLegacyTx constructs a type-0 transaction. chainID of 0 means "no
// EIP-155 replay protection" (legacy is the only type this is legal for).
func NewLegacyTx(chainID, nonce uint64, to *types.Address, value, gasPrice *big.Int, gas uint64, data []byte) *Data {
	mustNonNegative("value", value)
	mustNonNegative("gasPrice", gasPrice)
	return &Data{
		Type: LegacyType, ChainID: chainID, Nonce: nonce, To: to,
		Value: cloneBig(value), GasPrice: cloneBig(gasPrice), Gas: gas, Data: data,
	}
}

// NewAccessListTx constructs a type-1 (EIP-2930) transaction.
func NewAccessListTx(chainID, nonce uint64, to *types.Address, value, gasPrice *big.Int, gas uint64, data []byte, accessList []AccessTuple) *Data {
	mustPositiveChainID(chainID)
	mustNonNegative("value", value)
	mustNonNegative("gasPrice", gasPrice)
	return &Data{
		Type: AccessListType, ChainID: chainID, Nonce: nonce, To: to,
		Value: cloneBig(value), GasPrice: cloneBig(gasPrice), Gas: gas, Data: data,
		AccessList: cloneAccessList(accessList),
	}
}

// NewDynamicFeeTx constructs a type-2 (EIP-1559) transaction.
func NewDynamicFeeTx(chainID, nonce uint64, to *types.Address, value, gasTipCap, gasFeeCap *big.Int, gas uint64, data []byte, accessList []AccessTuple) *Data {
	mustPositiveChainID(chainID)
	mustNonNegative("value", value)
	mustNonNegative("gasTipCap", gasTipCap)
	mustNonNegative("gasFeeCap", gasFeeCap)
	return &Data{
		Type: DynamicFeeType, ChainID: chainID, Nonce: nonce, To: to,
		Value: cloneBig(value), GasTipCap: cloneBig(gasTipCap), GasFeeCap: cloneBig(gasFeeCap),
		Gas: gas, Data: data, AccessList: cloneAccessList(accessList),
	}
}

// NewBlobTx constructs a type-3 (EIP-4844) transaction. to is required (no
// contract creation via blob tx); sidecar may be nil (canonical encoding
// only, e.g. when reconstructing a mined transaction).
func NewBlobTx(chainID, nonce uint64, to types.Address, value, gasTipCap, gasFeeCap *big.Int, gas uint64, data []byte, accessList []AccessTuple, blobFeeCap *big.Int, blobHashes []types.Hash, sidecar *BlobSidecar) *Data {
	mustPositiveChainID(chainID)
	mustNonNegative("value", value)
	mustNonNegative("gasTipCap", gasTipCap)
	mustNonNegative("gasFeeCap", gasFeeCap)
	mustNonNegative("blobFeeCap", blobFeeCap)
	if gasFeeCap != nil && gasTipCap != nil && gasFeeCap.Cmp(gasTipCap) < 0 {
		panic("txn: blob tx gasFeeCap must be >= gasTipCap")
	}
	if err := sidecar.Validate(); err != nil {
		panic("txn: " + err.Error())
	}
	hashes := make([]types.Hash, len(blobHashes))
	copy(hashes, blobHashes)
	return &Data{
		Type: BlobType, ChainID: chainID, Nonce: nonce, To: &to,
		Value: cloneBig(value), GasTipCap: cloneBig(gasTipCap), GasFeeCap: cloneBig(gasFeeCap),
		Gas: gas, Data: data, AccessList: cloneAccessList(accessList),
		BlobFeeCap: cloneBig(blobFeeCap), BlobVersionedHashes: hashes, Sidecar: sidecar,
	}
}

// NewSetCodeTx constructs a type-4 (EIP-7702) transaction. authList must
// be non-empty.
func NewSetCodeTx(chainID, nonce uint64, to types.Address, value, gasTipCap, gasFeeCap *big.Int, gas uint64, data []byte, accessList []AccessTuple, authList []Authorization) *Data {
	mustPositiveChainID(chainID)
	mustNonNegative("value", value)
	mustNonNegative("gasTipCap", gasTipCap)
	mustNonNegative("gasFeeCap", gasFeeCap)
	if len(authList) == 0 {
		panic("txn: set-code transaction requires a non-empty authorizationList")
	}
	auths := make([]Authorization, len(authList))
	copy(auths, authList)
	return &Data{
		Type: SetCodeType, ChainID: chainID, Nonce: nonce, To: &to,
		Value: cloneBig(value), GasTipCap: cloneBig(gasTipCap), GasFeeCap: cloneBig(gasFeeCap),
		Gas: gas, Data: data, AccessList: cloneAccessList(accessList), AuthorizationList: auths,
	}
}

func mustPositiveChainID(chainID uint64) {
	if chainID == 0 {
		panic("txn: non-legacy transaction requires a positive chainId")
	}
}

// IsFillable reports whether gas/nonce are sane enough for a transaction
// built from a call request to be submitted: gas >= 21000 intrinsic floor,
// nonce is always non-negative by Go's uint64 type.
func (d *Data) IsFillable() bool {
	return d.Gas >= 21000
}

// IsContractCreation reports whether To is unset.
func (d *Data) IsContractCreation() bool {
	return d.To == nil
}

// Signed pairs unsigned transaction data with its signature and caches its
// derived hash and sender, computed once under Hash()/From().
type Signed struct {
	Tx        *Data
	Signature types.Signature

	hash    *types.Hash
	from    *types.Address
	invalid bool
}

// NewSigned wraps tx with an already-computed signature, without verifying
// it recovers to any particular sender; call From() to recover lazily.
func NewSigned(tx *Data, sig types.Signature) *Signed {
	return &Signed{Tx: tx, Signature: sig}
}

// Package txn implements the EIP-2718 typed transaction envelopes: legacy,
// access-list (EIP-2930), dynamic-fee (EIP-1559), blob (EIP-4844), and
// set-code (EIP-7702). Each type's RLP envelope, signature hash, and
// sender recovery are implemented against pkg/rlp and secp256k1 directly
// rather than delegating to a full execution-client codec.
package txn

import (
	"errors"
	"math/big"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

// Type identifies a transaction's EIP-2718 envelope kind.
type Type byte

const (
	LegacyType     Type = 0
	AccessListType Type = 1
	DynamicFeeType Type = 2
	BlobType       Type = 3
	SetCodeType    Type = 4
)

func (t Type) String() string {
	switch t {
	case LegacyType:
		return "legacy"
	case AccessListType:
		return "access-list"
	case DynamicFeeType:
		return "dynamic-fee"
	case BlobType:
		return "blob"
	case SetCodeType:
		return "set-code"
	default:
		return "unsupported"
	}
}

// ErrInvalidSignature is returned by recovery/verification helpers; it is
// distinct from types.ErrInvalidSignature (a malformed v value) in that it
// signals a signature that parses but doesn't recover or verify.
var ErrInvalidSignature = errors.New("txn: invalid signature")

// ErrUnsupportedType is returned when an operation (signing, encoding)
// requiring a known envelope shape is attempted on an Unsupported marker.
var ErrUnsupportedType = errors.New("txn: unsupported transaction type")

// AccessTuple is one (address, storage keys) entry of an EIP-2930 access
// list.
type AccessTuple struct {
	Address     types.Address
	StorageKeys []types.Hash
}

// Authorization is one EIP-7702 set-code delegation: the EOA at Address
// authorizes its code to temporarily point at the code currently deployed
// there, signed independently of the carrying transaction.
type Authorization struct {
	ChainID uint64
	Address types.Address
	Nonce   uint64
	V       uint64
	R       *big.Int
	S       *big.Int
}

// BlobSidecar carries the blobs, KZG commitments, and KZG proofs of an
// EIP-4844 transaction. It is opaque data as far as this library is
// concerned: no KZG proof math is implemented, only the fixed-size framing
// and the network-vs-canonical encoding split.
type BlobSidecar struct {
	Blobs       [][BlobSize]byte
	Commitments [][KZGSize]byte
	Proofs      [][KZGSize]byte
}

// BlobSize and KZGSize are the fixed widths mandated by EIP-4844: a blob is
// exactly 128 KiB, and each commitment/proof is 48 bytes.
const (
	BlobSize = 131072
	KZGSize  = 48
)

// Validate checks that the sidecar's three lists have equal length (each
// blob needs exactly one commitment and one proof).
func (s *BlobSidecar) Validate() error {
	if s == nil {
		return nil
	}
	if len(s.Blobs) != len(s.Commitments) || len(s.Blobs) != len(s.Proofs) {
		return errors.New("txn: blob sidecar blobs/commitments/proofs length mismatch")
	}
	return nil
}

package types

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidSignature is returned for malformed signatures or unrecognized
// v encodings.
var ErrInvalidSignature = errors.New("types: invalid signature")

// Signature is an ECDSA (r, s, v) triple over secp256k1. v encodes the
// recovery parity using one of three conventions: the electrum offset
// (27/28), EIP-155 (35 + 2*chainId + parity), or a raw parity bit (0/1).
type Signature struct {
	R *big.Int
	S *big.Int
	V uint64
}

// Parity extracts the recovery bit (0 or 1) from V, recognizing the three
// documented encodings. It does not accept any other value.
func (s Signature) Parity() (byte, error) {
	switch {
	case s.V == 0 || s.V == 1:
		return byte(s.V), nil
	case s.V == 27 || s.V == 28:
		return byte(s.V - 27), nil
	case s.V >= 35:
		return byte((s.V - 35) % 2), nil
	default:
		return 0, fmt.Errorf("%w: v=%d is not electrum, EIP-155, or raw parity", ErrInvalidSignature, s.V)
	}
}

// ChainID recovers the chain id encoded in an EIP-155 v value, or (0, false)
// if V does not use that encoding.
func (s Signature) ChainID() (uint64, bool) {
	if s.V < 35 {
		return 0, false
	}
	return (s.V - 35) / 2, true
}

// EIP155V computes the v value for a legacy signature under EIP-155.
func EIP155V(chainID uint64, parity byte) uint64 {
	return 35 + 2*chainID + uint64(parity)
}

// ElectrumV computes the v value under the legacy electrum convention.
func ElectrumV(parity byte) uint64 {
	return 27 + uint64(parity)
}

// RSV serializes the signature as a 65-byte [R(32) | S(32) | V(1)] array
// with V normalized to 27+parity, the form most secp256k1 libraries expect.
func (s Signature) RSV() ([65]byte, error) {
	var out [65]byte
	parity, err := s.Parity()
	if err != nil {
		return out, err
	}
	if s.R == nil || s.S == nil {
		return out, fmt.Errorf("%w: nil r or s", ErrInvalidSignature)
	}
	rb := s.R.Bytes()
	sb := s.S.Bytes()
	if len(rb) > 32 || len(sb) > 32 {
		return out, fmt.Errorf("%w: r or s overflows 32 bytes", ErrInvalidSignature)
	}
	copy(out[32-len(rb):32], rb)
	copy(out[64-len(sb):64], sb)
	out[64] = 27 + parity
	return out, nil
}

package abi

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes data with the Keccak-256 permutation used throughout the
// Ethereum wire format (note: not NIST SHA3-256, which differs in padding).
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Selector returns the 4-byte function selector: the first four bytes of
// the Keccak-256 hash of the canonical "name(type,...)" signature.
func Selector(name string, fields []Field) ([4]byte, error) {
	sig := Signature(name, fields...)
	h := Keccak256([]byte(sig))
	var out [4]byte
	copy(out[:], h[:4])
	return out, nil
}

// EventTopic returns the full 32-byte Keccak-256 hash of the event's
// canonical signature, used as topic0 for non-anonymous events.
func EventTopic(name string, fields []Field) [32]byte {
	sig := Signature(name, fields...)
	h := Keccak256([]byte(sig))
	var out [32]byte
	copy(out[:], h)
	return out
}

package txn

import (
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

// Signer signs transaction signature hashes with a held private key and
// reports the address it signs for. A raw-private-key implementation is
// provided (PrivateKeySigner); key-store backends are an external
// collaborator per spec's scope.
type Signer interface {
	Address() types.Address
	SignHash(hash types.Hash) (types.Signature, error)
}

// PrivateKeySigner signs directly with an in-memory secp256k1 private key.
type PrivateKeySigner struct {
	key  *secp256k1.PrivateKey
	addr types.Address
}

// NewPrivateKeySigner constructs a signer from a 32-byte secp256k1 private
// key, deriving its address once.
func NewPrivateKeySigner(privKey []byte) (*PrivateKeySigner, error) {
	if len(privKey) != 32 {
		return nil, fmt.Errorf("txn: private key must be 32 bytes, got %d", len(privKey))
	}
	key := secp256k1.PrivKeyFromBytes(privKey)
	addr, err := addressFromPublicKey(key.PubKey())
	if err != nil {
		return nil, err
	}
	return &PrivateKeySigner{key: key, addr: addr}, nil
}

func (s *PrivateKeySigner) Address() types.Address { return s.addr }

// SignHash produces a signature with V as a raw parity bit (0/1); callers
// encoding a legacy transaction must re-derive the electrum/EIP-155 V
// themselves via types.ElectrumV/types.EIP155V before embedding it.
func (s *PrivateKeySigner) SignHash(hash types.Hash) (types.Signature, error) {
	compact := ecdsa.SignCompact(s.key, hash[:], false)
	if len(compact) != 65 {
		return types.Signature{}, fmt.Errorf("%w: unexpected compact signature length %d", ErrInvalidSignature, len(compact))
	}
	parity := uint64(compact[0] - 27)
	r := new(big.Int).SetBytes(compact[1:33])
	sVal := new(big.Int).SetBytes(compact[33:65])
	return types.Signature{R: r, S: sVal, V: parity}, nil
}

func addressFromPublicKey(pub *secp256k1.PublicKey) (types.Address, error) {
	uncompressed := pub.SerializeUncompressed() // 0x04 || X(32) || Y(32)
	if len(uncompressed) != 65 || uncompressed[0] != 0x04 {
		return types.Address{}, fmt.Errorf("%w: malformed public key", ErrInvalidSignature)
	}
	h := types.Keccak256(uncompressed[1:])
	return types.BytesToAddress(h[12:]), nil
}

// RecoverSender recovers the sending address from a signature over hash,
// using secp256k1 public key recovery.
func RecoverSender(hash types.Hash, sig types.Signature) (types.Address, error) {
	parity, err := sig.Parity()
	if err != nil {
		return types.Address{}, err
	}
	if sig.R == nil || sig.S == nil {
		return types.Address{}, fmt.Errorf("%w: nil r or s", ErrInvalidSignature)
	}
	compact := make([]byte, 65)
	compact[0] = 27 + parity
	rb := sig.R.Bytes()
	sb := sig.S.Bytes()
	if len(rb) > 32 || len(sb) > 32 {
		return types.Address{}, fmt.Errorf("%w: r or s overflows 32 bytes", ErrInvalidSignature)
	}
	copy(compact[33-len(rb):33], rb)
	copy(compact[65-len(sb):65], sb)

	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return types.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return addressFromPublicKey(pub)
}

// Sign computes tx's signature hash, signs it with signer, and returns the
// resulting Signed transaction. For legacy transactions the signature's V
// is rewritten from the signer's raw parity into the electrum or EIP-155
// form depending on whether tx carries a chain id.
func Sign(tx *Data, signer Signer) (*Signed, error) {
	hash, err := tx.SignatureHash()
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignHash(hash)
	if err != nil {
		return nil, err
	}
	if tx.Type == LegacyType {
		parity := byte(sig.V)
		if tx.ChainID != 0 {
			sig.V = types.EIP155V(tx.ChainID, parity)
		} else {
			sig.V = types.ElectrumV(parity)
		}
	}
	return &Signed{Tx: tx, Signature: sig}, nil
}

// From recovers (and memoizes) the sender address via signature recovery
// over the transaction's signature hash.
func (s *Signed) From() (types.Address, error) {
	if s.from != nil {
		return *s.from, nil
	}
	hash, err := s.Tx.SignatureHash()
	if err != nil {
		return types.Address{}, err
	}
	addr, err := RecoverSender(hash, s.Signature)
	if err != nil {
		s.invalid = true
		return types.Address{}, err
	}
	s.from = &addr
	return addr, nil
}

// Valid reports whether From() has succeeded; it triggers recovery if not
// already attempted.
func (s *Signed) Valid() bool {
	if s.from != nil {
		return true
	}
	_, err := s.From()
	return err == nil
}

package txn

import (
	"fmt"
	"math/big"

	"github.com/lattice-labs/evmrpc/pkg/rlp"
	"github.com/lattice-labs/evmrpc/pkg/types"
)

func bigOrZero(v *big.Int) rlp.Encodable {
	if v == nil {
		return rlp.Uint(0)
	}
	return rlp.BigInt{V: v}
}

func addrBytes(a *types.Address) rlp.Bytes {
	if a == nil {
		return rlp.Bytes{}
	}
	return rlp.Bytes(a.Bytes())
}

func encodeAccessList(al []AccessTuple) rlp.List {
	out := make(rlp.List, len(al))
	for i, t := range al {
		keys := make(rlp.List, len(t.StorageKeys))
		for j, k := range t.StorageKeys {
			keys[j] = rlp.Bytes(k.Bytes())
		}
		out[i] = rlp.List{rlp.Bytes(t.Address.Bytes()), keys}
	}
	return out
}

func decodeAccessList(d *rlp.Decoder) ([]AccessTuple, error) {
	var out []AccessTuple
	err := d.DecodeList(func(sub *rlp.Decoder) error {
		for !sub.IsDone() {
			var entry AccessTuple
			err := sub.DecodeList(func(tupleDec *rlp.Decoder) error {
				addrB, err := tupleDec.DecodeBytes()
				if err != nil {
					return err
				}
				entry.Address = types.BytesToAddress(addrB)
				return tupleDec.DecodeList(func(keysDec *rlp.Decoder) error {
					for !keysDec.IsDone() {
						kb, err := keysDec.DecodeBytes()
						if err != nil {
							return err
						}
						entry.StorageKeys = append(entry.StorageKeys, types.BytesToHash(kb))
					}
					return nil
				})
			})
			if err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func encodeAuthorizationList(al []Authorization) rlp.List {
	out := make(rlp.List, len(al))
	for i, a := range al {
		out[i] = rlp.List{
			rlp.Uint(a.ChainID),
			rlp.Bytes(a.Address.Bytes()),
			rlp.Uint(a.Nonce),
			rlp.Uint(a.V),
			bigOrZero(a.R),
			bigOrZero(a.S),
		}
	}
	return out
}

func decodeAuthorizationList(d *rlp.Decoder) ([]Authorization, error) {
	var out []Authorization
	err := d.DecodeList(func(sub *rlp.Decoder) error {
		for !sub.IsDone() {
			var a Authorization
			err := sub.DecodeList(func(tupleDec *rlp.Decoder) error {
				var err error
				if a.ChainID, err = tupleDec.DecodeUint64(); err != nil {
					return err
				}
				addrB, err := tupleDec.DecodeBytes()
				if err != nil {
					return err
				}
				a.Address = types.BytesToAddress(addrB)
				if a.Nonce, err = tupleDec.DecodeUint64(); err != nil {
					return err
				}
				if a.V, err = tupleDec.DecodeUint64(); err != nil {
					return err
				}
				if a.R, err = tupleDec.DecodeBigInt(); err != nil {
					return err
				}
				if a.S, err = tupleDec.DecodeBigInt(); err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// unsignedFields builds the RLP field list for d, in per-type EIP order, up
// to (but not including) the signature fields.
func (d *Data) unsignedFields() (rlp.List, error) {
	if d.UnsupportedTypeByte != nil {
		return nil, fmt.Errorf("%w: type byte 0x%02x", ErrUnsupportedType, *d.UnsupportedTypeByte)
	}
	switch d.Type {
	case LegacyType:
		return rlp.List{
			rlp.Uint(d.Nonce), bigOrZero(d.GasPrice), rlp.Uint(d.Gas),
			addrBytes(d.To), bigOrZero(d.Value), rlp.Bytes(d.Data),
		}, nil
	case AccessListType:
		return rlp.List{
			rlp.Uint(d.ChainID), rlp.Uint(d.Nonce), bigOrZero(d.GasPrice), rlp.Uint(d.Gas),
			addrBytes(d.To), bigOrZero(d.Value), rlp.Bytes(d.Data), encodeAccessList(d.AccessList),
		}, nil
	case DynamicFeeType:
		return rlp.List{
			rlp.Uint(d.ChainID), rlp.Uint(d.Nonce), bigOrZero(d.GasTipCap), bigOrZero(d.GasFeeCap),
			rlp.Uint(d.Gas), addrBytes(d.To), bigOrZero(d.Value), rlp.Bytes(d.Data), encodeAccessList(d.AccessList),
		}, nil
	case BlobType:
		hashes := make(rlp.List, len(d.BlobVersionedHashes))
		for i, h := range d.BlobVersionedHashes {
			hashes[i] = rlp.Bytes(h.Bytes())
		}
		return rlp.List{
			rlp.Uint(d.ChainID), rlp.Uint(d.Nonce), bigOrZero(d.GasTipCap), bigOrZero(d.GasFeeCap),
			rlp.Uint(d.Gas), addrBytes(d.To), bigOrZero(d.Value), rlp.Bytes(d.Data), encodeAccessList(d.AccessList),
			bigOrZero(d.BlobFeeCap), hashes,
		}, nil
	case SetCodeType:
		return rlp.List{
			rlp.Uint(d.ChainID), rlp.Uint(d.Nonce), bigOrZero(d.GasTipCap), bigOrZero(d.GasFeeCap),
			rlp.Uint(d.Gas), addrBytes(d.To), bigOrZero(d.Value), rlp.Bytes(d.Data), encodeAccessList(d.AccessList),
			encodeAuthorizationList(d.AuthorizationList),
		}, nil
	default:
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedType, d.Type)
	}
}

func signatureFields(sig types.Signature, legacy bool, chainID uint64) (rlp.Encodable, rlp.Encodable, rlp.Encodable, error) {
	if legacy {
		return bigOrZero(big.NewInt(int64(sig.V))), bigOrZero(sig.R), bigOrZero(sig.S), nil
	}
	parity, err := sig.Parity()
	if err != nil {
		return nil, nil, nil, err
	}
	return rlp.Uint(parity), bigOrZero(sig.R), bigOrZero(sig.S), nil
}

// EnvelopeForHash builds the RLP list whose keccak-256 is the signature
// hash: the unsigned field list, with legacy's EIP-155 (chainId, 0, 0)
// extension appended when chainId is set.
func (d *Data) EnvelopeForHash() (rlp.Encodable, error) {
	fields, err := d.unsignedFields()
	if err != nil {
		return nil, err
	}
	if d.Type == LegacyType {
		if d.ChainID != 0 {
			fields = append(fields, rlp.Uint(d.ChainID), rlp.Bytes{}, rlp.Bytes{})
		}
		return fields, nil
	}
	return typedEnvelope(byte(d.Type), fields), nil
}

// typedEnvelope wraps a field list with its EIP-2718 type-byte prefix.
// rlp.List cannot itself carry a leading non-RLP byte, so the wrapper is
// not nested inside another RLP item; its Bytes method renders the type
// byte followed by the encoded list.
type typePrefixedList struct {
	typeByte byte
	fields   rlp.List
}

func typedEnvelope(typeByte byte, fields rlp.List) rlp.Encodable {
	return typePrefixedList{typeByte: typeByte, fields: fields}
}

func (t typePrefixedList) RLPSize() int {
	return 1 + t.fields.RLPSize()
}

func (t typePrefixedList) EncodeRLP(enc *rlp.Encoder) error {
	return fmt.Errorf("txn: typePrefixedList must be serialized via Bytes(), not nested EncodeRLP")
}

// Bytes renders the full envelope: the type byte followed by the RLP list.
func (t typePrefixedList) Bytes() ([]byte, error) {
	body, err := rlp.Encode(t.fields)
	if err != nil {
		return nil, err
	}
	return append([]byte{t.typeByte}, body...), nil
}

// EnvelopeBytes renders env (as returned by EnvelopeForHash or
// SignedEnvelope) to its final byte form, handling both the legacy
// (bare RLP list) and typed (type-byte-prefixed) cases.
func EnvelopeBytes(env rlp.Encodable) ([]byte, error) {
	if tp, ok := env.(typePrefixedList); ok {
		return tp.Bytes()
	}
	return rlp.Encode(env)
}

// SignatureHash is keccak256 of the envelope with no signature present:
// the input to secp256k1 signing.
func (d *Data) SignatureHash() (types.Hash, error) {
	env, err := d.EnvelopeForHash()
	if err != nil {
		return types.Hash{}, err
	}
	b, err := EnvelopeBytes(env)
	if err != nil {
		return types.Hash{}, err
	}
	return types.BytesToHash(types.Keccak256(b)), nil
}

// SignedEnvelope builds the canonical (on-chain) signed envelope: the
// unsigned fields followed by (v, r, s). For blob transactions this never
// includes the sidecar, matching spec's "transaction hash... differs from
// the broadcast wire form" note.
func (d *Data) SignedEnvelope(sig types.Signature) (rlp.Encodable, error) {
	fields, err := d.unsignedFields()
	if err != nil {
		return nil, err
	}
	v, r, s, err := signatureFields(sig, d.Type == LegacyType, d.ChainID)
	if err != nil {
		return nil, err
	}
	fields = append(fields, v, r, s)
	if d.Type == LegacyType {
		return fields, nil
	}
	return typedEnvelope(byte(d.Type), fields), nil
}

// NetworkEnvelope builds the blob transaction's network encoding (with
// sidecar): type || rlp([signed_fields, blobs, commitments, proofs]).
// Valid only for BlobType with a non-nil Sidecar.
func (d *Data) NetworkEnvelope(sig types.Signature) (rlp.Encodable, error) {
	if d.Type != BlobType || d.Sidecar == nil {
		return nil, fmt.Errorf("txn: network encoding requires a blob transaction with a sidecar")
	}
	fields, err := d.unsignedFields()
	if err != nil {
		return nil, err
	}
	v, r, s, err := signatureFields(sig, false, d.ChainID)
	if err != nil {
		return nil, err
	}
	fields = append(fields, v, r, s)

	blobs := make(rlp.List, len(d.Sidecar.Blobs))
	for i, b := range d.Sidecar.Blobs {
		blobs[i] = rlp.Bytes(b[:])
	}
	commitments := make(rlp.List, len(d.Sidecar.Commitments))
	for i, c := range d.Sidecar.Commitments {
		commitments[i] = rlp.Bytes(c[:])
	}
	proofs := make(rlp.List, len(d.Sidecar.Proofs))
	for i, p := range d.Sidecar.Proofs {
		proofs[i] = rlp.Bytes(p[:])
	}

	return typedEnvelope(byte(d.Type), rlp.List{fields, blobs, commitments, proofs}), nil
}

// Hash is the transaction hash: keccak256 of the canonical signed
// envelope (never the network/sidecar form).
func (s *Signed) Hash() (types.Hash, error) {
	if s.hash != nil {
		return *s.hash, nil
	}
	env, err := s.Tx.SignedEnvelope(s.Signature)
	if err != nil {
		return types.Hash{}, err
	}
	b, err := EnvelopeBytes(env)
	if err != nil {
		return types.Hash{}, err
	}
	h := types.BytesToHash(types.Keccak256(b))
	s.hash = &h
	return h, nil
}

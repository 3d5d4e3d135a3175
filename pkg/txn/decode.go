package txn

import (
	"fmt"

	"github.com/lattice-labs/evmrpc/pkg/rlp"
	"github.com/lattice-labs/evmrpc/pkg/types"
)

// Decode parses a raw transaction envelope (legacy bare RLP list, or
// type-byte-prefixed typed envelope) into a signed transaction. Any other
// leading byte below 0xc0 (an unrecognized type byte, 0x00 included)
// decodes into a Data with UnsupportedTypeByte set rather than failing.
func Decode(raw []byte) (*Signed, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty envelope", rlp.ErrInvalidRLP)
	}
	if raw[0] >= 0xc0 {
		return decodeLegacy(raw)
	}
	typeByte := raw[0]
	body := raw[1:]
	switch Type(typeByte) {
	case AccessListType:
		return decodeTyped(AccessListType, body, decodeAccessListFields)
	case DynamicFeeType:
		return decodeTyped(DynamicFeeType, body, decodeDynamicFeeFields)
	case BlobType:
		return decodeTyped(BlobType, body, decodeBlobFields)
	case SetCodeType:
		return decodeTyped(SetCodeType, body, decodeSetCodeFields)
	default:
		b := typeByte
		return &Signed{Tx: &Data{UnsupportedTypeByte: &b}}, nil
	}
}

func decodeLegacy(raw []byte) (*Signed, error) {
	d := rlp.NewDecoder(raw)
	var tx Data
	var sig types.Signature
	err := d.DecodeList(func(sub *rlp.Decoder) error {
		var err error
		if tx.Nonce, err = sub.DecodeUint64(); err != nil {
			return err
		}
		if tx.GasPrice, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		if tx.Gas, err = sub.DecodeUint64(); err != nil {
			return err
		}
		toB, err := sub.DecodeBytes()
		if err != nil {
			return err
		}
		if len(toB) > 0 {
			a := types.BytesToAddress(toB)
			tx.To = &a
		}
		if tx.Value, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		if tx.Data, err = sub.DecodeBytes(); err != nil {
			return err
		}
		vBig, err := sub.DecodeBigInt()
		if err != nil {
			return err
		}
		if sig.R, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		if sig.S, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		sig.V = vBig.Uint64()
		return nil
	})
	if err != nil {
		return nil, err
	}
	tx.Type = LegacyType
	if chainID, ok := sig.ChainID(); ok {
		tx.ChainID = chainID
	}
	return &Signed{Tx: &tx, Signature: sig}, nil
}

func decodeTyped(t Type, body []byte, fieldsFn func(*rlp.Decoder, *Data) error) (*Signed, error) {
	d := rlp.NewDecoder(body)
	var tx Data
	var sig types.Signature
	err := d.DecodeList(func(sub *rlp.Decoder) error {
		if err := fieldsFn(sub, &tx); err != nil {
			return err
		}
		parity, err := sub.DecodeUint64()
		if err != nil {
			return err
		}
		if sig.R, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		if sig.S, err = sub.DecodeBigInt(); err != nil {
			return err
		}
		sig.V = parity
		return nil
	})
	if err != nil {
		return nil, err
	}
	tx.Type = t
	return &Signed{Tx: &tx, Signature: sig}, nil
}

func decodeTo(sub *rlp.Decoder) (*types.Address, error) {
	toB, err := sub.DecodeBytes()
	if err != nil {
		return nil, err
	}
	if len(toB) == 0 {
		return nil, nil
	}
	a := types.BytesToAddress(toB)
	return &a, nil
}

func decodeAccessListFields(sub *rlp.Decoder, tx *Data) error {
	var err error
	if tx.ChainID, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.Nonce, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.GasPrice, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	if tx.Gas, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.To, err = decodeTo(sub); err != nil {
		return err
	}
	if tx.Value, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	if tx.Data, err = sub.DecodeBytes(); err != nil {
		return err
	}
	tx.AccessList, err = decodeAccessList(sub)
	return err
}

func decodeDynamicFeeFields(sub *rlp.Decoder, tx *Data) error {
	var err error
	if tx.ChainID, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.Nonce, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.GasTipCap, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	if tx.GasFeeCap, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	if tx.Gas, err = sub.DecodeUint64(); err != nil {
		return err
	}
	if tx.To, err = decodeTo(sub); err != nil {
		return err
	}
	if tx.Value, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	if tx.Data, err = sub.DecodeBytes(); err != nil {
		return err
	}
	tx.AccessList, err = decodeAccessList(sub)
	return err
}

func decodeBlobFields(sub *rlp.Decoder, tx *Data) error {
	if err := decodeDynamicFeeFields(sub, tx); err != nil {
		return err
	}
	var err error
	if tx.BlobFeeCap, err = sub.DecodeBigInt(); err != nil {
		return err
	}
	err = sub.DecodeList(func(hd *rlp.Decoder) error {
		for !hd.IsDone() {
			hb, err := hd.DecodeBytes()
			if err != nil {
				return err
			}
			tx.BlobVersionedHashes = append(tx.BlobVersionedHashes, types.BytesToHash(hb))
		}
		return nil
	})
	return err
}

func decodeSetCodeFields(sub *rlp.Decoder, tx *Data) error {
	if err := decodeDynamicFeeFields(sub, tx); err != nil {
		return err
	}
	var err error
	tx.AuthorizationList, err = decodeAuthorizationList(sub)
	return err
}

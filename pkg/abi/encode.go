package abi

import (
	"fmt"
	"math/big"
)

const wordSize = 32

var twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)

func roundUpWord(n int) int {
	if n%wordSize == 0 {
		return n
	}
	return n + (wordSize - n%wordSize)
}

func padLeft32(b []byte) []byte {
	if len(b) >= wordSize {
		return b[len(b)-wordSize:]
	}
	out := make([]byte, wordSize)
	copy(out[wordSize-len(b):], b)
	return out
}

func padRight(b []byte, total int) []byte {
	out := make([]byte, total)
	copy(out, b)
	return out
}

func encodeUint256(n *big.Int) []byte {
	return padLeft32(n.Bytes())
}

func encodeUint256Int(n int) []byte {
	return encodeUint256(big.NewInt(int64(n)))
}

func encodeSignedInt(n *big.Int) []byte {
	if n.Sign() >= 0 {
		return padLeft32(n.Bytes())
	}
	twos := new(big.Int).Add(twoPow256, n)
	return padLeft32(twos.Bytes())
}

// Encode encodes a tuple of values against types using the Solidity ABI
// head/tail layout: one 32-byte head slot (or, for static composites, a
// run of slots) per top-level argument, static values inline, dynamic
// values referenced by a tail offset.
func Encode(types []Type, values []Value) ([]byte, error) {
	return encodeTupleValues(types, values)
}

// EncodeWithPrefix emits the 4-byte function selector for (name, types)
// followed by the tuple encoding of values.
func EncodeWithPrefix(name string, fields []Field, values []Value) ([]byte, error) {
	sel, err := Selector(name, fields)
	if err != nil {
		return nil, err
	}
	types := make([]Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	body, err := Encode(types, values)
	if err != nil {
		return nil, err
	}
	return append(sel[:], body...), nil
}

func encodeTupleValues(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("%w: %d types but %d values", ErrInvalidABI, len(types), len(values))
	}
	headSlots := 0
	for _, t := range types {
		if t.IsDynamic() {
			headSlots++
		} else {
			headSlots += t.HeadSlots()
		}
	}
	headSize := headSlots * wordSize
	head := make([]byte, 0, headSize)
	var tail []byte
	for i, t := range types {
		v := values[i]
		if t.IsDynamic() {
			offset := headSize + len(tail)
			head = append(head, encodeUint256Int(offset)...)
			enc, err := encodeDynamicValue(t, v)
			if err != nil {
				return nil, err
			}
			tail = append(tail, enc...)
		} else {
			enc, err := encodeStaticValue(t, v)
			if err != nil {
				return nil, err
			}
			head = append(head, enc...)
		}
	}
	return append(head, tail...), nil
}

func encodeStaticValue(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case KindAddress:
		return padLeft32(v.Addr[:]), nil
	case KindBool:
		w := make([]byte, wordSize)
		if v.Bool {
			w[wordSize-1] = 1
		}
		return w, nil
	case KindUint:
		if v.Int == nil || v.Int.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative or nil uint%d value", ErrInvalidABI, t.Bits)
		}
		return encodeUint256(v.Int), nil
	case KindInt:
		if v.Int == nil {
			return nil, fmt.Errorf("%w: nil int%d value", ErrInvalidABI, t.Bits)
		}
		return encodeSignedInt(v.Int), nil
	case KindFixedBytes:
		if len(v.Bytes) != t.Bits {
			return nil, fmt.Errorf("%w: fixed bytes%d got %d bytes", ErrInvalidABI, t.Bits, len(v.Bytes))
		}
		return padRight(v.Bytes, wordSize), nil
	case KindFixedArray:
		if len(v.Elems) != t.Length {
			return nil, fmt.Errorf("%w: fixed array length %d got %d elements", ErrInvalidABI, t.Length, len(v.Elems))
		}
		types := make([]Type, t.Length)
		for i := range types {
			types[i] = *t.Elem
		}
		return encodeConcatStatic(types, v.Elems)
	case KindTuple:
		types := make([]Type, len(t.Fields))
		for i, f := range t.Fields {
			types[i] = f.Type
		}
		return encodeConcatStatic(types, v.Fields)
	default:
		return nil, fmt.Errorf("%w: static encode of dynamic kind %v", ErrInvalidABI, t.Kind)
	}
}

// encodeConcatStatic concatenates each element's static encoding with no
// head/tail split: valid only when every element type is itself static.
func encodeConcatStatic(types []Type, values []Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("%w: %d types but %d values", ErrInvalidABI, len(types), len(values))
	}
	var out []byte
	for i, t := range types {
		enc, err := encodeStaticValue(t, values[i])
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

func encodeDynamicValue(t Type, v Value) ([]byte, error) {
	switch t.Kind {
	case KindBytes:
		return encodeBytesLike(v.Bytes), nil
	case KindString:
		return encodeBytesLike([]byte(v.String)), nil
	case KindArray:
		types := make([]Type, len(v.Elems))
		for i := range types {
			types[i] = *t.Elem
		}
		body, err := encodeTupleValues(types, v.Elems)
		if err != nil {
			return nil, err
		}
		return append(encodeUint256Int(len(v.Elems)), body...), nil
	case KindFixedArray:
		if len(v.Elems) != t.Length {
			return nil, fmt.Errorf("%w: fixed array length %d got %d elements", ErrInvalidABI, t.Length, len(v.Elems))
		}
		types := make([]Type, t.Length)
		for i := range types {
			types[i] = *t.Elem
		}
		return encodeTupleValues(types, v.Elems)
	case KindTuple:
		types := make([]Type, len(t.Fields))
		for i, f := range t.Fields {
			types[i] = f.Type
		}
		return encodeTupleValues(types, v.Fields)
	default:
		return nil, fmt.Errorf("%w: dynamic encode of static kind %v", ErrInvalidABI, t.Kind)
	}
}

func encodeBytesLike(b []byte) []byte {
	out := make([]byte, 0, wordSize+roundUpWord(len(b)))
	out = append(out, encodeUint256Int(len(b))...)
	out = append(out, padRight(b, roundUpWord(len(b)))...)
	return out
}

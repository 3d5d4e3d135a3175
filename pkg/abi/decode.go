package abi

import (
	"fmt"
	"math/big"
)

// Decode decodes a tuple encoded by Encode back into values, one per type.
// Every tail offset is bounds-checked against the buffer and against every
// other claimed tail region: overlapping dynamic payloads are rejected
// rather than silently aliased.
func Decode(types []Type, data []byte) ([]Value, error) {
	values, consumed, err := decodeTupleValues(types, data)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after tuple", ErrInvalidABI, len(data)-consumed)
	}
	return values, nil
}

type byteRange struct{ start, end int }

func (r byteRange) overlaps(o byteRange) bool {
	return r.start < o.end && o.start < r.end
}

// decodeTupleValues decodes types against data (a self-contained tuple
// buffer: head followed by tail, with all offsets relative to data's own
// start) and returns the tight extent of data actually used.
func decodeTupleValues(types []Type, data []byte) ([]Value, int, error) {
	headSlots := 0
	for _, t := range types {
		if t.IsDynamic() {
			headSlots++
		} else {
			headSlots += t.HeadSlots()
		}
	}
	headSize := headSlots * wordSize
	if len(data) < headSize {
		return nil, 0, fmt.Errorf("%w: tuple head truncated", ErrInvalidABI)
	}

	values := make([]Value, len(types))
	var claims []byteRange
	consumed := headSize
	pos := 0
	for i, t := range types {
		if t.IsDynamic() {
			offset, err := readOffset(data[pos:pos+wordSize], len(data))
			if err != nil {
				return nil, 0, err
			}
			if offset < headSize {
				return nil, 0, fmt.Errorf("%w: tail offset points into head", ErrInvalidABI)
			}
			v, n, err := decodeDynamicValue(t, data, offset)
			if err != nil {
				return nil, 0, err
			}
			c := byteRange{offset, offset + n}
			for _, prev := range claims {
				if c.overlaps(prev) {
					return nil, 0, fmt.Errorf("%w: overlapping tail regions", ErrInvalidABI)
				}
			}
			claims = append(claims, c)
			if c.end > consumed {
				consumed = c.end
			}
			values[i] = v
			pos += wordSize
		} else {
			v, n, err := decodeStaticValue(t, data[pos:])
			if err != nil {
				return nil, 0, err
			}
			values[i] = v
			pos += n
		}
	}
	return values, consumed, nil
}

func readOffset(word []byte, bufLen int) (int, error) {
	n := new(big.Int).SetBytes(word)
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: tail offset too large", ErrInvalidABI)
	}
	v := n.Int64()
	if v < 0 || v > int64(bufLen) {
		return 0, fmt.Errorf("%w: tail offset out of bounds", ErrInvalidABI)
	}
	return int(v), nil
}

func readLength(word []byte, bufLen int) (int, error) {
	n, err := readOffset(word, bufLen)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length prefix", ErrInvalidABI)
	}
	return n, nil
}

func decodeStaticValue(t Type, data []byte) (Value, int, error) {
	switch t.Kind {
	case KindAddress:
		if len(data) < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated address", ErrInvalidABI)
		}
		var a [20]byte
		copy(a[:], data[wordSize-20:wordSize])
		return VAddress(a), wordSize, nil
	case KindBool:
		if len(data) < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated bool", ErrInvalidABI)
		}
		return VBool(data[wordSize-1] != 0), wordSize, nil
	case KindUint:
		if len(data) < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated uint%d", ErrInvalidABI, t.Bits)
		}
		return VUint(new(big.Int).SetBytes(data[:wordSize])), wordSize, nil
	case KindInt:
		if len(data) < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated int%d", ErrInvalidABI, t.Bits)
		}
		return VInt(decodeSignedInt(data[:wordSize])), wordSize, nil
	case KindFixedBytes:
		if len(data) < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated bytes%d", ErrInvalidABI, t.Bits)
		}
		b := append([]byte(nil), data[:t.Bits]...)
		return VFixedBytes(b), wordSize, nil
	case KindFixedArray:
		types := make([]Type, t.Length)
		for i := range types {
			types[i] = *t.Elem
		}
		elems, n, err := decodeConcatStatic(types, data)
		if err != nil {
			return Value{}, 0, err
		}
		return VFixedArray(elems...), n, nil
	case KindTuple:
		types := make([]Type, len(t.Fields))
		for i, f := range t.Fields {
			types[i] = f.Type
		}
		fields, n, err := decodeConcatStatic(types, data)
		if err != nil {
			return Value{}, 0, err
		}
		return VTuple(fields...), n, nil
	default:
		return Value{}, 0, fmt.Errorf("%w: static decode of dynamic kind %v", ErrInvalidABI, t.Kind)
	}
}

func decodeConcatStatic(types []Type, data []byte) ([]Value, int, error) {
	values := make([]Value, len(types))
	pos := 0
	for i, t := range types {
		if pos > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated static composite", ErrInvalidABI)
		}
		v, n, err := decodeStaticValue(t, data[pos:])
		if err != nil {
			return nil, 0, err
		}
		values[i] = v
		pos += n
	}
	return values, pos, nil
}

func decodeSignedInt(word []byte) *big.Int {
	n := new(big.Int).SetBytes(word)
	if word[0]&0x80 != 0 {
		n.Sub(n, twoPow256)
	}
	return n
}

// decodeDynamicValue decodes the dynamic value of type t whose payload
// begins at data[offset:]; data is the full enclosing tuple buffer. It
// returns the number of bytes, measured from offset, that the payload
// occupies.
func decodeDynamicValue(t Type, data []byte, offset int) (Value, int, error) {
	switch t.Kind {
	case KindBytes, KindString:
		if len(data)-offset < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated length prefix", ErrInvalidABI)
		}
		n, err := readLength(data[offset:offset+wordSize], len(data)-offset-wordSize)
		if err != nil {
			return Value{}, 0, err
		}
		start := offset + wordSize
		if len(data)-start < n {
			return Value{}, 0, fmt.Errorf("%w: truncated bytes/string payload", ErrInvalidABI)
		}
		payload := make([]byte, n)
		copy(payload, data[start:start+n])
		consumed := wordSize + roundUpWord(n)
		if t.Kind == KindBytes {
			return VBytes(payload), consumed, nil
		}
		return VString(string(payload)), consumed, nil

	case KindArray:
		if len(data)-offset < wordSize {
			return Value{}, 0, fmt.Errorf("%w: truncated array length", ErrInvalidABI)
		}
		n, err := readLength(data[offset:offset+wordSize], len(data)-offset-wordSize)
		if err != nil {
			return Value{}, 0, err
		}
		types := make([]Type, n)
		for i := range types {
			types[i] = *t.Elem
		}
		elems, consumedBody, err := decodeTupleValues(types, data[offset+wordSize:])
		if err != nil {
			return Value{}, 0, err
		}
		return VArray(elems...), wordSize + consumedBody, nil

	case KindFixedArray:
		types := make([]Type, t.Length)
		for i := range types {
			types[i] = *t.Elem
		}
		elems, consumedBody, err := decodeTupleValues(types, data[offset:])
		if err != nil {
			return Value{}, 0, err
		}
		return VFixedArray(elems...), consumedBody, nil

	case KindTuple:
		types := make([]Type, len(t.Fields))
		for i, f := range t.Fields {
			types[i] = f.Type
		}
		fields, consumedBody, err := decodeTupleValues(types, data[offset:])
		if err != nil {
			return Value{}, 0, err
		}
		return VTuple(fields...), consumedBody, nil

	default:
		return Value{}, 0, fmt.Errorf("%w: dynamic decode of static kind %v", ErrInvalidABI, t.Kind)
	}
}

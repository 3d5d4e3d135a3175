// Package abi implements Solidity ABI v2 tuple encoding/decoding: the
// head/tail layout used for contract call arguments, return values, and
// event log data.
package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidABI is returned by Decode on malformed or inconsistent input
// (bad offsets, truncated data, overlapping tails).
var ErrInvalidABI = errors.New("abi: invalid encoding")

// Kind enumerates the recognized ABI type variants. No other shape exists
// in the schema.
type Kind int

const (
	KindAddress Kind = iota
	KindBool
	KindFixedBytes
	KindBytes
	KindString
	KindUint
	KindInt
	KindFixedArray
	KindArray
	KindTuple
)

// Type is a node in the ABI type schema: either a scalar, a fixed/dynamic
// array, or a tuple of fields. Construct via the Address/Bool/... helper
// functions rather than the struct literal.
type Type struct {
	Kind Kind

	// KindFixedBytes / KindUint / KindInt
	Bits int // UInt/Int bit width; FixedBytes byte width stored here too

	// KindFixedArray / KindArray
	Elem   *Type
	Length int // KindFixedArray only

	// KindTuple
	Fields []Field
}

// Field names one element of a tuple. Name is carried for the caller and
// for log-decoding error messages; encoding and canonical signatures are
// positional and ignore it.
type Field struct {
	Name string
	Type Type
}

func Address() Type                 { return Type{Kind: KindAddress} }
func Bool() Type                    { return Type{Kind: KindBool} }
func Bytes() Type                   { return Type{Kind: KindBytes} }
func String() Type                  { return Type{Kind: KindString} }
func FixedBytes(n int) Type         { mustValidFixedBytes(n); return Type{Kind: KindFixedBytes, Bits: n} }
func UInt(bits int) Type            { mustValidBits(bits); return Type{Kind: KindUint, Bits: bits} }
func Int(bits int) Type             { mustValidBits(bits); return Type{Kind: KindInt, Bits: bits} }
func FixedArray(n int, elem Type) Type { return Type{Kind: KindFixedArray, Length: n, Elem: &elem} }
func Array(elem Type) Type          { return Type{Kind: KindArray, Elem: &elem} }
func Tuple(fields ...Field) Type    { return Type{Kind: KindTuple, Fields: fields} }

// F is shorthand for constructing a Field.
func F(name string, t Type) Field { return Field{Name: name, Type: t} }

func mustValidBits(bits int) {
	if bits < 8 || bits > 256 || bits%8 != 0 {
		panic(fmt.Sprintf("abi: invalid integer bit width %d", bits))
	}
}

func mustValidFixedBytes(n int) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("abi: invalid FixedBytes width %d", n))
	}
}

// IsDynamic reports whether t is a dynamic type (variable-size payload,
// represented in its parent's head as a 32-byte tail offset) as opposed to
// a static type (fixed 32-byte head slot, or for a fixed-size composite,
// a fixed run of slots).
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString, KindArray:
		return true
	case KindFixedArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, f := range t.Fields {
			if f.Type.IsDynamic() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// HeadSlots returns the number of 32-byte slots t occupies in the head
// region when static. Only meaningful when !t.IsDynamic().
func (t Type) HeadSlots() int {
	switch t.Kind {
	case KindFixedArray:
		return t.Length * t.Elem.HeadSlots()
	case KindTuple:
		n := 0
		for _, f := range t.Fields {
			n += f.Type.HeadSlots()
		}
		return n
	default:
		return 1
	}
}

// CanonicalString is the Solidity canonical type string used in function
// selectors and event topics: elementary types by name, tuples expand
// recursively to "(t1,t2,...)".
func (t Type) CanonicalString() string {
	switch t.Kind {
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindUint:
		return "uint" + strconv.Itoa(t.Bits)
	case KindInt:
		return "int" + strconv.Itoa(t.Bits)
	case KindFixedBytes:
		return "bytes" + strconv.Itoa(t.Bits)
	case KindFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem.CanonicalString(), t.Length)
	case KindArray:
		return t.Elem.CanonicalString() + "[]"
	case KindTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Type.CanonicalString()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		panic("abi: unknown type kind")
	}
}

// Signature builds the canonical "name(type,type,...)" signature used for
// function selectors and event topics.
func Signature(name string, fields ...Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Type.CanonicalString()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

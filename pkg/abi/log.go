package abi

import "fmt"

// EventField extends Field with whether the parameter is indexed (and thus
// carried in a log topic rather than the data blob).
type EventField struct {
	Field
	Indexed bool
}

// EF is shorthand for constructing an EventField.
func EF(name string, t Type, indexed bool) EventField {
	return EventField{Field: Field{Name: name, Type: t}, Indexed: indexed}
}

func isValueType(k Kind) bool {
	switch k {
	case KindAddress, KindBool, KindUint, KindInt, KindFixedBytes:
		return true
	default:
		return false
	}
}

// LogArg is one decoded event parameter. For indexed reference types
// (bytes, string, arrays, tuples) Solidity stores only the Keccak-256 hash
// of the value in the topic, so Value is nil and TopicHash holds the raw
// 32 bytes; Hashed reports this case.
type LogArg struct {
	Field     Field
	Indexed   bool
	Value     *Value
	TopicHash [32]byte
	Hashed    bool
}

// DecodeLog splits a log's topics and data back into named arguments.
// topics must include topic0 (the event signature hash) unless anonymous
// is true, in which case topics holds only the indexed argument values.
func DecodeLog(fields []EventField, anonymous bool, topics [][32]byte, data []byte) ([]LogArg, error) {
	topicIdx := 0
	if !anonymous {
		topicIdx = 1
	}

	var nonIndexedTypes []Type
	var nonIndexedIdx []int
	out := make([]LogArg, len(fields))

	for i, f := range fields {
		out[i] = LogArg{Field: f.Field, Indexed: f.Indexed}
		if !f.Indexed {
			nonIndexedTypes = append(nonIndexedTypes, f.Type)
			nonIndexedIdx = append(nonIndexedIdx, i)
			continue
		}
		if topicIdx >= len(topics) {
			return nil, fmt.Errorf("%w: not enough topics for indexed arguments", ErrInvalidABI)
		}
		topic := topics[topicIdx]
		topicIdx++
		if isValueType(f.Type.Kind) {
			v, _, err := decodeStaticValue(f.Type, topic[:])
			if err != nil {
				return nil, fmt.Errorf("%w: indexed argument %q: %v", ErrInvalidABI, f.Name, err)
			}
			out[i].Value = &v
		} else {
			out[i].TopicHash = topic
			out[i].Hashed = true
		}
	}

	if topicIdx != len(topics) {
		return nil, fmt.Errorf("%w: %d unconsumed topics", ErrInvalidABI, len(topics)-topicIdx)
	}

	if len(nonIndexedTypes) > 0 {
		values, err := Decode(nonIndexedTypes, data)
		if err != nil {
			return nil, fmt.Errorf("%w: log data: %v", ErrInvalidABI, err)
		}
		for j, idx := range nonIndexedIdx {
			v := values[j]
			out[idx].Value = &v
		}
	} else if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in log data with no non-indexed fields", ErrInvalidABI, len(data))
	}

	return out, nil
}

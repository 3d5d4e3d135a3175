package types

import (
	"encoding/json"
	"math/big"

	"github.com/lattice-labs/evmrpc/pkg/hexutil"
)

// Quantity is a big, possibly-huge, non-negative integer carried over the
// wire as minimal "0x"-prefixed hex — the representation used for balances,
// gas prices, and block numbers in the JSON-RPC surface.
type Quantity struct {
	V *big.Int
}

func NewQuantity(v *big.Int) Quantity { return Quantity{V: v} }
func QuantityFromUint64(v uint64) Quantity {
	return Quantity{V: new(big.Int).SetUint64(v)}
}

func (q Quantity) Big() *big.Int {
	if q.V == nil {
		return new(big.Int)
	}
	return q.V
}

func (q Quantity) Uint64() uint64 { return q.Big().Uint64() }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.EncodeBig(q.Big()))
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := hexutil.DecodeBig(s)
	if err != nil {
		return err
	}
	q.V = v
	return nil
}

// Uint64Quantity is Quantity's narrower sibling for fields that are never
// expected to exceed 64 bits (gas limits, nonces, timestamps, indices).
type Uint64Quantity uint64

func (q Uint64Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.EncodeUint64(uint64(q)))
}

func (q *Uint64Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := hexutil.DecodeUint64(s)
	if err != nil {
		return err
	}
	*q = Uint64Quantity(v)
	return nil
}

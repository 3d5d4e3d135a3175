package types

import "github.com/lattice-labs/evmrpc/pkg/hexutil"

// CallRequest is the argument object for eth_call, eth_estimateGas, and
// eth_createAccessList. The input field is named "data" on the wire (not
// "input"), matching the Ethereum JSON-RPC convention for call requests as
// opposed to mined transaction objects.
type CallRequest struct {
	From       *Address           `json:"from,omitempty"`
	To         *Address           `json:"to,omitempty"`
	Gas        *Uint64Quantity    `json:"gas,omitempty"`
	GasPrice   *Quantity          `json:"gasPrice,omitempty"`
	MaxFeePerGas     *Quantity    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFee   *Quantity    `json:"maxPriorityFeePerGas,omitempty"`
	Value      *Quantity          `json:"value,omitempty"`
	Data       Bytes              `json:"data,omitempty"`
	Nonce      *Uint64Quantity    `json:"nonce,omitempty"`
	AccessList []AccessListEntry  `json:"accessList,omitempty"`
	ChainID    *Quantity          `json:"chainId,omitempty"`
}

// BlockNumberOrTag selects a block by numeric quantity or one of the
// well-known tags ("latest", "earliest", "pending", "safe", "finalized").
type BlockNumberOrTag struct {
	Number *uint64
	Tag    string
}

func BlockTag(tag string) BlockNumberOrTag         { return BlockNumberOrTag{Tag: tag} }
func BlockNumber(n uint64) BlockNumberOrTag         { return BlockNumberOrTag{Number: &n} }

// Latest, Pending, and Earliest are the block tags used throughout the
// typed client surface as default arguments.
var (
	Latest   = BlockTag("latest")
	Pending  = BlockTag("pending")
	Earliest = BlockTag("earliest")
	Safe     = BlockTag("safe")
	Finalized = BlockTag("finalized")
)

func (b BlockNumberOrTag) MarshalJSON() ([]byte, error) {
	if b.Number != nil {
		return []byte(`"` + quantityHex(*b.Number) + `"`), nil
	}
	if b.Tag == "" {
		return []byte(`"latest"`), nil
	}
	return []byte(`"` + b.Tag + `"`), nil
}

func quantityHex(n uint64) string {
	return hexutil.EncodeUint64(n)
}

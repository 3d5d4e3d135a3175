package types

import "encoding/json"

// Block is an eth_getBlockByHash/eth_getBlockByNumber result. Transactions
// holds either hashes or full bodies depending on the "full transaction
// objects" flag of the request; TransactionHashes/Transactions are
// mutually populated based on that. Block has no Withdrawals field; a
// "withdrawals" key is not a known field, so it lands in OtherFields.
type Block struct {
	Number           Uint64Quantity
	Hash             Hash
	ParentHash       Hash
	Nonce            Bytes
	SHA3Uncles       Hash
	LogsBloom        Bloom
	TransactionsRoot Hash
	StateRoot        Hash
	ReceiptsRoot     Hash
	Miner            Address
	Difficulty       Quantity
	ExtraData        Bytes
	Size             Uint64Quantity
	GasLimit         Uint64Quantity
	GasUsed          Uint64Quantity
	Timestamp        Uint64Quantity
	Uncles           []Hash

	BaseFeePerGas *Quantity

	TransactionHashes []Hash
	Transactions      []Transaction

	OtherFields OtherFields
}

// Transaction is a transaction as embedded in a full block body or
// returned directly by eth_getTransactionByHash.
type Transaction struct {
	Hash             Hash
	BlockHash        *Hash
	BlockNumber      *Uint64Quantity
	TransactionIndex *Uint64Quantity
	From             Address
	To               *Address
	Value            Quantity
	Gas              Uint64Quantity
	GasPrice         *Quantity
	Input            Bytes
	Nonce            Uint64Quantity
	Type             Uint64Quantity
	ChainID          *Quantity
	MaxFeePerGas     *Quantity
	MaxPriorityFee   *Quantity
	AccessList       []AccessListEntry
	V                Quantity
	R                Quantity
	S                Quantity

	OtherFields OtherFields
}

// AccessListEntry is one (address, storage keys) pair of an EIP-2930
// access list, in its JSON-RPC wire shape.
type AccessListEntry struct {
	Address     Address `json:"address"`
	StorageKeys []Hash  `json:"storageKeys"`
}

type blockJSON struct {
	Number           Uint64Quantity    `json:"number"`
	Hash             Hash              `json:"hash"`
	ParentHash       Hash              `json:"parentHash"`
	Nonce            Bytes             `json:"nonce"`
	SHA3Uncles       Hash              `json:"sha3Uncles"`
	LogsBloom        Bloom             `json:"logsBloom"`
	TransactionsRoot Hash              `json:"transactionsRoot"`
	StateRoot        Hash              `json:"stateRoot"`
	ReceiptsRoot     Hash              `json:"receiptsRoot"`
	Miner            Address           `json:"miner"`
	Difficulty       Quantity          `json:"difficulty"`
	ExtraData        Bytes             `json:"extraData"`
	Size             Uint64Quantity    `json:"size"`
	GasLimit         Uint64Quantity    `json:"gasLimit"`
	GasUsed          Uint64Quantity    `json:"gasUsed"`
	Timestamp        Uint64Quantity    `json:"timestamp"`
	Uncles           []Hash            `json:"uncles"`
	BaseFeePerGas    *Quantity         `json:"baseFeePerGas,omitempty"`
	Transactions     []json.RawMessage `json:"transactions"`
}

var blockKnownFields = []string{
	"number", "hash", "parentHash", "nonce", "sha3Uncles", "logsBloom",
	"transactionsRoot", "stateRoot", "receiptsRoot", "miner", "difficulty",
	"extraData", "size", "gasLimit", "gasUsed", "timestamp", "uncles",
	"baseFeePerGas", "transactions",
}

// UnmarshalJSON decodes a block body, detecting whether "transactions" is
// an array of hash strings or an array of full transaction objects.
func (b *Block) UnmarshalJSON(data []byte) error {
	var j blockJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	*b = Block{
		Number: j.Number, Hash: j.Hash, ParentHash: j.ParentHash, Nonce: j.Nonce,
		SHA3Uncles: j.SHA3Uncles, LogsBloom: j.LogsBloom,
		TransactionsRoot: j.TransactionsRoot, StateRoot: j.StateRoot,
		ReceiptsRoot: j.ReceiptsRoot, Miner: j.Miner, Difficulty: j.Difficulty,
		ExtraData: j.ExtraData, Size: j.Size, GasLimit: j.GasLimit,
		GasUsed: j.GasUsed, Timestamp: j.Timestamp, Uncles: j.Uncles,
		BaseFeePerGas: j.BaseFeePerGas,
	}

	for _, raw := range j.Transactions {
		var hash Hash
		if err := json.Unmarshal(raw, &hash); err == nil {
			b.TransactionHashes = append(b.TransactionHashes, hash)
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return err
		}
		b.Transactions = append(b.Transactions, tx)
	}

	other, err := ExtractOtherFields(data, blockKnownFields...)
	if err != nil {
		return err
	}
	b.OtherFields = other
	return nil
}

type transactionJSON struct {
	Hash             Hash              `json:"hash"`
	BlockHash        *Hash             `json:"blockHash"`
	BlockNumber      *Uint64Quantity   `json:"blockNumber"`
	TransactionIndex *Uint64Quantity   `json:"transactionIndex"`
	From             Address           `json:"from"`
	To               *Address          `json:"to"`
	Value            Quantity          `json:"value"`
	Gas              Uint64Quantity    `json:"gas"`
	GasPrice         *Quantity         `json:"gasPrice,omitempty"`
	Input            Bytes             `json:"input"`
	Nonce            Uint64Quantity    `json:"nonce"`
	Type             Uint64Quantity    `json:"type"`
	ChainID          *Quantity         `json:"chainId,omitempty"`
	MaxFeePerGas     *Quantity         `json:"maxFeePerGas,omitempty"`
	MaxPriorityFee   *Quantity         `json:"maxPriorityFeePerGas,omitempty"`
	AccessList       []AccessListEntry `json:"accessList,omitempty"`
	V                Quantity          `json:"v"`
	R                Quantity          `json:"r"`
	S                Quantity          `json:"s"`
}

var transactionKnownFields = []string{
	"hash", "blockHash", "blockNumber", "transactionIndex", "from", "to",
	"value", "gas", "gasPrice", "input", "nonce", "type", "chainId",
	"maxFeePerGas", "maxPriorityFeePerGas", "accessList", "v", "r", "s",
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j transactionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	other, err := ExtractOtherFields(data, transactionKnownFields...)
	if err != nil {
		return err
	}
	*t = Transaction{
		Hash: j.Hash, BlockHash: j.BlockHash, BlockNumber: j.BlockNumber,
		TransactionIndex: j.TransactionIndex, From: j.From, To: j.To,
		Value: j.Value, Gas: j.Gas, GasPrice: j.GasPrice, Input: j.Input,
		Nonce: j.Nonce, Type: j.Type, ChainID: j.ChainID,
		MaxFeePerGas: j.MaxFeePerGas, MaxPriorityFee: j.MaxPriorityFee,
		AccessList: j.AccessList, V: j.V, R: j.R, S: j.S,
		OtherFields: other,
	}
	return nil
}

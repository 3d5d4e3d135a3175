package types

import "encoding/json"

// Receipt is an eth_getTransactionReceipt result. Status is post-Byzantium
// 0/1; a failed on-chain status is still a successfully *included*
// transaction as far as the pending-inclusion watcher is concerned.
type Receipt struct {
	TransactionHash   Hash
	TransactionIndex  Uint64Quantity
	BlockHash         Hash
	BlockNumber       Uint64Quantity
	From              Address
	To                *Address
	CumulativeGasUsed Uint64Quantity
	GasUsed           Uint64Quantity
	EffectiveGasPrice Quantity
	ContractAddress   *Address
	Logs              []Log
	LogsBloom         Bloom
	Status            *Uint64Quantity
	Type              Uint64Quantity

	// Blob transaction fields (EIP-4844), present only for type-3 receipts.
	BlobGasUsed       *Uint64Quantity
	BlobGasPrice      *Quantity

	OtherFields OtherFields
}

// Successful reports whether the post-Byzantium status field is 1. Pre-
// Byzantium receipts (no status field) are treated as successful.
func (r Receipt) Successful() bool {
	return r.Status == nil || *r.Status == 1
}

type receiptJSON struct {
	TransactionHash   Hash            `json:"transactionHash"`
	TransactionIndex  Uint64Quantity  `json:"transactionIndex"`
	BlockHash         Hash            `json:"blockHash"`
	BlockNumber       Uint64Quantity  `json:"blockNumber"`
	From              Address         `json:"from"`
	To                *Address        `json:"to"`
	CumulativeGasUsed Uint64Quantity  `json:"cumulativeGasUsed"`
	GasUsed           Uint64Quantity  `json:"gasUsed"`
	EffectiveGasPrice Quantity        `json:"effectiveGasPrice"`
	ContractAddress   *Address        `json:"contractAddress"`
	Logs              []Log           `json:"logs"`
	LogsBloom         Bloom           `json:"logsBloom"`
	Status            *Uint64Quantity `json:"status,omitempty"`
	Type              Uint64Quantity  `json:"type"`
	BlobGasUsed       *Uint64Quantity `json:"blobGasUsed,omitempty"`
	BlobGasPrice      *Quantity       `json:"blobGasPrice,omitempty"`
}

var receiptKnownFields = []string{
	"transactionHash", "transactionIndex", "blockHash", "blockNumber",
	"from", "to", "cumulativeGasUsed", "gasUsed", "effectiveGasPrice",
	"contractAddress", "logs", "logsBloom", "status", "type",
	"blobGasUsed", "blobGasPrice",
}

func (r Receipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{
		TransactionHash: r.TransactionHash, TransactionIndex: r.TransactionIndex,
		BlockHash: r.BlockHash, BlockNumber: r.BlockNumber, From: r.From, To: r.To,
		CumulativeGasUsed: r.CumulativeGasUsed, GasUsed: r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice, ContractAddress: r.ContractAddress,
		Logs: r.Logs, LogsBloom: r.LogsBloom, Status: r.Status, Type: r.Type,
		BlobGasUsed: r.BlobGasUsed, BlobGasPrice: r.BlobGasPrice,
	})
}

func (r *Receipt) UnmarshalJSON(data []byte) error {
	var j receiptJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	other, err := ExtractOtherFields(data, receiptKnownFields...)
	if err != nil {
		return err
	}
	*r = Receipt{
		TransactionHash: j.TransactionHash, TransactionIndex: j.TransactionIndex,
		BlockHash: j.BlockHash, BlockNumber: j.BlockNumber, From: j.From, To: j.To,
		CumulativeGasUsed: j.CumulativeGasUsed, GasUsed: j.GasUsed,
		EffectiveGasPrice: j.EffectiveGasPrice, ContractAddress: j.ContractAddress,
		Logs: j.Logs, LogsBloom: j.LogsBloom, Status: j.Status, Type: j.Type,
		BlobGasUsed: j.BlobGasUsed, BlobGasPrice: j.BlobGasPrice,
		OtherFields: other,
	}
	return nil
}

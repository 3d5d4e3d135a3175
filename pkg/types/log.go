package types

import "encoding/json"

// Log is a single event log entry as returned by eth_getLogs,
// eth_getTransactionReceipt, and newPendingLogs/newHeads-adjacent
// subscriptions.
type Log struct {
	Address          Address
	Topics           []Hash
	Data             Bytes
	BlockNumber      Uint64Quantity
	BlockHash        Hash
	TransactionHash  Hash
	TransactionIndex Uint64Quantity
	LogIndex         Uint64Quantity
	Removed          bool

	OtherFields OtherFields
}

type logJSON struct {
	Address          Address        `json:"address"`
	Topics           []Hash         `json:"topics"`
	Data             Bytes          `json:"data"`
	BlockNumber      Uint64Quantity `json:"blockNumber"`
	BlockHash        Hash           `json:"blockHash"`
	TransactionHash  Hash           `json:"transactionHash"`
	TransactionIndex Uint64Quantity `json:"transactionIndex"`
	LogIndex         Uint64Quantity `json:"logIndex"`
	Removed          bool           `json:"removed"`
}

var logKnownFields = []string{
	"address", "topics", "data", "blockNumber", "blockHash",
	"transactionHash", "transactionIndex", "logIndex", "removed",
}

func (l Log) MarshalJSON() ([]byte, error) {
	return json.Marshal(logJSON{
		Address: l.Address, Topics: l.Topics, Data: l.Data,
		BlockNumber: l.BlockNumber, BlockHash: l.BlockHash,
		TransactionHash: l.TransactionHash, TransactionIndex: l.TransactionIndex,
		LogIndex: l.LogIndex, Removed: l.Removed,
	})
}

func (l *Log) UnmarshalJSON(data []byte) error {
	var j logJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	other, err := ExtractOtherFields(data, logKnownFields...)
	if err != nil {
		return err
	}
	*l = Log{
		Address: j.Address, Topics: j.Topics, Data: j.Data,
		BlockNumber: j.BlockNumber, BlockHash: j.BlockHash,
		TransactionHash: j.TransactionHash, TransactionIndex: j.TransactionIndex,
		LogIndex: j.LogIndex, Removed: j.Removed,
		OtherFields: other,
	}
	return nil
}

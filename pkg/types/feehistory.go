package types

import "encoding/json"

// FeeHistory is the eth_feeHistory result: per-block base fee, gas-used
// ratio, and (if requested) a reward matrix keyed by requested percentile.
type FeeHistory struct {
	OldestBlock   Uint64Quantity
	BaseFeePerGas []Quantity
	GasUsedRatio  []float64
	Reward        [][]Quantity

	OtherFields OtherFields
}

type feeHistoryJSON struct {
	OldestBlock   Uint64Quantity `json:"oldestBlock"`
	BaseFeePerGas []Quantity     `json:"baseFeePerGas"`
	GasUsedRatio  []float64      `json:"gasUsedRatio"`
	Reward        [][]Quantity   `json:"reward,omitempty"`
}

var feeHistoryKnownFields = []string{"oldestBlock", "baseFeePerGas", "gasUsedRatio", "reward"}

func (f *FeeHistory) UnmarshalJSON(data []byte) error {
	var j feeHistoryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	other, err := ExtractOtherFields(data, feeHistoryKnownFields...)
	if err != nil {
		return err
	}
	*f = FeeHistory{
		OldestBlock: j.OldestBlock, BaseFeePerGas: j.BaseFeePerGas,
		GasUsedRatio: j.GasUsedRatio, Reward: j.Reward, OtherFields: other,
	}
	return nil
}

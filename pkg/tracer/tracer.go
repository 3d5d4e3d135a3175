// Package tracer holds the configuration and result shapes for
// debug_traceTransaction/debug_traceCall-style tracing. It fills in a gap
// the distilled specification leaves unelaborated (tracer support, 5%
// share of the overall budget), shaped after the debug-namespace
// tracer-config conventions visible across the wider Ethereum JSON-RPC
// ecosystem rather than copied from any single example — the two
// standardized output shapes (struct-logger steps, call-tracer tree) are
// both represented here, with OtherFields passthrough for whichever
// custom tracer the node happens to run.
package tracer

import (
	"encoding/json"
	"time"

	"github.com/lattice-labs/evmrpc/pkg/types"
)

// Config is the tracer-options argument of debug_traceTransaction (second
// position) and debug_traceCall (third position, after the call and the
// block): the tracer to run, its JS/JSON config, a timeout, and (traceCall
// only) an optional state/block override.
type Config struct {
	Tracer       string          `json:"tracer,omitempty"`
	TracerConfig json.RawMessage `json:"tracerConfig,omitempty"`
	Timeout      string          `json:"timeout,omitempty"`

	// StateOverride and BlockOverride apply only to debug_traceCall,
	// mirroring eth_call's override object (§3).
	StateOverride types.StateOverride `json:"stateOverride,omitempty"`
	BlockOverride *BlockOverride      `json:"blockOverride,omitempty"`
}

// WithTimeout sets Timeout from a time.Duration, formatted the way go
// duration strings are ("5s", "500ms") — the form node tracer configs
// expect.
func (c Config) WithTimeout(d time.Duration) Config {
	c.Timeout = d.String()
	return c
}

// BlockOverride overrides block-context fields visible to the EVM during
// a traced call (timestamp, number, etc.), independent of account state.
type BlockOverride struct {
	Number     *types.Quantity `json:"number,omitempty"`
	Timestamp  *types.Quantity `json:"time,omitempty"`
	GasLimit   *types.Quantity `json:"gasLimit,omitempty"`
	BaseFee    *types.Quantity `json:"baseFee,omitempty"`
	Difficulty *types.Quantity `json:"difficulty,omitempty"`
}

// StructLog is one step of the struct-logger ("opcode tracer") output:
// the default tracer when Tracer is empty.
type StructLog struct {
	Pc            uint64            `json:"pc"`
	Op            string            `json:"op"`
	Gas           uint64            `json:"gas"`
	GasCost       uint64            `json:"gasCost"`
	Depth         int               `json:"depth"`
	Error         string            `json:"error,omitempty"`
	Stack         []string          `json:"stack,omitempty"`
	Memory        []string          `json:"memory,omitempty"`
	Storage       map[string]string `json:"storage,omitempty"`
	RefundCounter uint64            `json:"refund,omitempty"`
}

// StructLogResult is debug_traceTransaction's result shape when no named
// tracer is requested.
type StructLogResult struct {
	Gas         uint64      `json:"gas"`
	Failed      bool        `json:"failed"`
	ReturnValue string      `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`
}

// CallFrame is one node of the call-tracer's nested call tree ("tracer":
// "callTracer"). Unrecognized fields (gas-specific extensions some nodes
// add) are preserved via OtherFields rather than dropped when decoding;
// MarshalJSON writes only the named fields, not OtherFields.
type CallFrame struct {
	Type    string          `json:"type"`
	From    types.Address   `json:"from"`
	To      *types.Address  `json:"to,omitempty"`
	Value   *types.Quantity `json:"value,omitempty"`
	Gas     types.Uint64Quantity `json:"gas"`
	GasUsed types.Uint64Quantity `json:"gasUsed"`
	Input   types.Bytes     `json:"input"`
	Output  types.Bytes     `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
	Calls   []CallFrame     `json:"calls,omitempty"`

	OtherFields types.OtherFields `json:"-"`
}

type callFrameAlias CallFrame

// UnmarshalJSON decodes a CallFrame while preserving any field this type
// does not name, per §9's OtherFields passthrough convention.
func (f *CallFrame) UnmarshalJSON(data []byte) error {
	var alias callFrameAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	other, err := types.ExtractOtherFields(data,
		"type", "from", "to", "value", "gas", "gasUsed", "input", "output", "error", "calls")
	if err != nil {
		return err
	}
	*f = CallFrame(alias)
	f.OtherFields = other
	return nil
}

func (f CallFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(callFrameAlias(f))
}

package types

import "encoding/json"

// AccountOverride simulates a different world-state entry for a single
// account during eth_call/eth_estimateGas/debug_traceCall. An account with
// every field left zero/nil represents a self-destruct.
//
// State (full storage replacement) and StateDiff (partial storage patch)
// are mutually exclusive: the source left their simultaneous use
// ambiguous, so construction panics rather than guessing a precedence.
type AccountOverride struct {
	Nonce     *Uint64Quantity
	Balance   *Quantity
	Code      Bytes
	State     map[Hash]Hash
	StateDiff map[Hash]Hash
}

// NewAccountOverride validates the State/StateDiff exclusivity invariant
// and returns the override. Use struct literals directly only when you
// have already checked this invariant yourself.
func NewAccountOverride(nonce *Uint64Quantity, balance *Quantity, code Bytes, state, stateDiff map[Hash]Hash) AccountOverride {
	if len(state) > 0 && len(stateDiff) > 0 {
		panic("types: AccountOverride cannot set both state and stateDiff")
	}
	return AccountOverride{Nonce: nonce, Balance: balance, Code: code, State: state, StateDiff: stateDiff}
}

type accountOverrideJSON struct {
	Nonce     *Uint64Quantity `json:"nonce,omitempty"`
	Balance   *Quantity       `json:"balance,omitempty"`
	Code      Bytes           `json:"code,omitempty"`
	State     map[Hash]Hash   `json:"state,omitempty"`
	StateDiff map[Hash]Hash   `json:"stateDiff,omitempty"`
}

func (a AccountOverride) MarshalJSON() ([]byte, error) {
	if len(a.State) > 0 && len(a.StateDiff) > 0 {
		panic("types: AccountOverride cannot set both state and stateDiff")
	}
	return json.Marshal(accountOverrideJSON{
		Nonce: a.Nonce, Balance: a.Balance, Code: a.Code,
		State: a.State, StateDiff: a.StateDiff,
	})
}

func (a *AccountOverride) UnmarshalJSON(data []byte) error {
	var j accountOverrideJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if len(j.State) > 0 && len(j.StateDiff) > 0 {
		panic("types: AccountOverride cannot set both state and stateDiff")
	}
	*a = AccountOverride{
		Nonce: j.Nonce, Balance: j.Balance, Code: j.Code,
		State: j.State, StateDiff: j.StateDiff,
	}
	return nil
}

// StateOverride is the per-call map of per-account overrides passed to
// eth_call/eth_estimateGas/debug_traceCall as the final "state override"
// parameter. Key order is unobservable (see OtherFields).
type StateOverride map[Address]AccountOverride

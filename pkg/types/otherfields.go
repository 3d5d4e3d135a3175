package types

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// OtherFields carries JSON object keys not recognized by a struct's typed
// fields, keyed by field name. Go map iteration does not preserve
// insertion order, so unlike an ordered mapping this is order-unobservable
// by design — a deliberate deviation documented alongside the type.
type OtherFields map[string]json.RawMessage

// StrictModeEnv is the single environment variable the JSON decoding layer
// consults: when "true", unrecognized fields are rejected instead of
// collected into OtherFields.
const StrictModeEnv = "ETHERS_JSON_STRICT_MODE"

// StrictMode reports whether ETHERS_JSON_STRICT_MODE is set to "true".
func StrictMode() bool {
	return os.Getenv(StrictModeEnv) == "true"
}

// ExtractOtherFields re-parses data as a JSON object, removes the known
// keys, and returns whatever remains. In strict mode, any leftover key is
// an error instead of being collected.
func ExtractOtherFields(data []byte, known ...string) (OtherFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if StrictMode() {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("types: unrecognized fields %v (strict mode)", keys)
	}
	return OtherFields(raw), nil
}

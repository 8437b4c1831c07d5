package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexID is an entity id that can be unmarshaled from either a JSON number or a JSON string.
// Form-encoded clients send ids as strings, JSON clients as numbers.
type FlexID uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return f.UnmarshalText([]byte(s))
	}

	return fmt.Errorf("FlexID: unexpected type, expected number or string")
}

// UnmarshalText lets form and query decoders fill a FlexID.
func (f *FlexID) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*f = 0
		return nil
	}
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("FlexID: invalid id %q: %w", s, err)
	}
	*f = FlexID(val)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts FlexID back to uint64.
func (f FlexID) Uint64() uint64 {
	return uint64(f)
}

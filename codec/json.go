package codec

import "encoding/json"

// JSON encodes with encoding/json, for artifacts that must match what other
// encoding/json based tools produce byte for byte.
type JSON struct{}

// Name returns "json".
func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) MarshalIndent(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

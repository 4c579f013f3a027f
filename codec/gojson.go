package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes with github.com/goccy/go-json. Its output is
// interchangeable with JSON's.
type GoJSON struct{}

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) MarshalIndent(v any) ([]byte, error) { return gojson.MarshalIndent(v, "", "  ") }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

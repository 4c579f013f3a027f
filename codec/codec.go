// Package codec centralizes the JSON encodings used for emitted artifacts and
// build manifests.
//
// Manifests record the codec name of every JSON artifact, so a codec can be
// swapped without breaking readers of older builds.
package codec

import "strings"

// Codec encodes and decodes manifest and artifact payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is implemented by codecs that can produce human-readable output.
type Indenter interface {
	MarshalIndent(v any) ([]byte, error)
}

// Default is the codec used for manifests and JSON artifacts unless
// configured otherwise.
var Default Codec = GoJSON{}

var builtin = []Codec{GoJSON{}, JSON{}}

// Names lists the built-in codec names, the default first.
func Names() []string {
	names := make([]string, len(builtin))
	for i, c := range builtin {
		names[i] = c.Name()
	}
	return names
}

// ByName returns a built-in codec by its stable name, ignoring case.
func ByName(name string) (Codec, bool) {
	for _, c := range builtin {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// Or returns c, or Default when c is nil.
func Or(c Codec) Codec {
	if c == nil {
		return Default
	}
	return c
}

// Encode marshals v with c, indenting when asked and supported.
func Encode(c Codec, v any, indent bool) ([]byte, error) {
	c = Or(c)
	if ind, ok := c.(Indenter); ok && indent {
		return ind.MarshalIndent(v)
	}
	return c.Marshal(v)
}

// Package emit writes compiled artifacts in their consumable forms.
//
// Three emitters are provided:
//
//   - GoSource: a gofmt'd Go file holding the packed byte table, the row
//     multiplier and a Lookup function; optionally the domain enumerations.
//   - Binary: the self-describing artifact file format (see package artifact).
//   - JSON: a JSON document for tooling in other languages.
//
// All emitters are deterministic: the same artifact always yields the same
// bytes.
package emit

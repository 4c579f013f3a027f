// Package relation parses relation documents into an uncompressed, in-memory
// form.
//
// A relation document is comma-separated text. The header names both domains
// and lists the column members; every following line names a row member and
// marks related cells with any non-empty value:
//
//	Animal/Color,Red,Green,Blue
//	Cat,,x,
//	Dog,x,,x
//
// There is no quoting, escaping or trimming. The domain separator in the first
// header field may be '/' or '\'.
//
// # Diagnostics
//
// Structural problems are returned as data ([Diagnostics]), never panics:
//
//	rel, diags := relation.Parse("colors.csv", "colors.AnimalColor", text)
//	if err := diags.Err(); err != nil {
//	    // report and skip this document
//	}
//	if !rel.Usable() {
//	    // no domain names or no columns: nothing to compile, nothing to report
//	}
//
// A header without two domain names, or without columns, is not an error. The
// relation is returned unusable and callers skip it silently.
package relation

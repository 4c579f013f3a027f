// Package testutil provides testing utilities for relpack.
//
// This package is intended for use in tests and benchmarks only.
// It generates random relation documents together with the set of cells they
// mark, so packing and querying can be checked exhaustively.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	doc := rng.Document(rows, columns, 0.1)
//	rel, _ := relation.Parse("doc.csv", "pkg.Doc", doc.Text)
//	for r, c := range doc.Cells { ... }
package testutil

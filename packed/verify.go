package packed

import (
	"errors"
	"fmt"

	"github.com/hupe1980/relpack/relation"
)

// ErrVerifyMismatch is returned by Verify when the artifact disagrees with its
// source relation.
var ErrVerifyMismatch = errors.New("packed: artifact does not match relation")

// Verify queries every (row, column) pair of art and compares the answer with
// rel. It also checks the buffer dimensions.
func Verify(rel *relation.Relation, art *Artifact) error {
	if art == nil {
		if rel.Usable() {
			return fmt.Errorf("%w: missing artifact", ErrVerifyMismatch)
		}
		return nil
	}
	if art.RowCount != rel.RowCount() || art.ColumnCount != rel.ColumnCount() {
		return fmt.Errorf("%w: dimensions %dx%d, want %dx%d", ErrVerifyMismatch,
			art.RowCount, art.ColumnCount, rel.RowCount(), rel.ColumnCount())
	}
	if want := BytesPerColumn(art.RowCount) * art.ColumnCount; len(art.Bits) != want {
		return fmt.Errorf("%w: buffer length %d, want %d", ErrVerifyMismatch, len(art.Bits), want)
	}

	t := art.Table()
	for c := range art.ColumnCount {
		for r := range art.RowCount {
			if got, want := t.Lookup(r, c), rel.Contains(r, c); got != want {
				return fmt.Errorf("%w: cell (%d, %d) = %t, want %t", ErrVerifyMismatch, r, c, got, want)
			}
		}
	}
	return nil
}

package relation

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Relation is the uncompressed form of a parsed document.
//
// RowMembers and ColumnMembers keep the order of appearance in the source
// text. Duplicate member names are kept as-is.
type Relation struct {
	// Name is the caller-supplied identifier of the generated artifact.
	Name string

	RowDomain    string
	ColumnDomain string

	RowMembers    []string
	ColumnMembers []string

	// columns[c] holds the row indices of the true cells in column c.
	columns []*roaring.Bitmap
}

// New returns an empty relation with the given domains and column members.
func New(name, rowDomain, columnDomain string, columnMembers []string) *Relation {
	r := &Relation{
		Name:          name,
		RowDomain:     rowDomain,
		ColumnDomain:  columnDomain,
		ColumnMembers: columnMembers,
	}
	r.columns = make([]*roaring.Bitmap, len(columnMembers))
	for i := range r.columns {
		r.columns[i] = roaring.New()
	}
	return r
}

// Usable reports whether the relation has both domain names and at least one
// column. Unusable relations produce no artifact and no diagnostic.
func (r *Relation) Usable() bool {
	return r != nil && r.RowDomain != "" && r.ColumnDomain != "" && len(r.ColumnMembers) > 0
}

// RowCount returns the number of row members.
func (r *Relation) RowCount() int { return len(r.RowMembers) }

// ColumnCount returns the number of column members.
func (r *Relation) ColumnCount() int { return len(r.ColumnMembers) }

// AddRow appends a row member and returns its index.
func (r *Relation) AddRow(member string) int {
	r.RowMembers = append(r.RowMembers, member)
	return len(r.RowMembers) - 1
}

// Set marks the cell (row, column) as true. Setting a cell twice is a no-op.
func (r *Relation) Set(row, column int) {
	r.columns[column].Add(uint32(row))
}

// Contains reports whether (row, column) is a true cell.
func (r *Relation) Contains(row, column int) bool {
	if row < 0 || column < 0 || column >= len(r.columns) {
		return false
	}
	return r.columns[column].Contains(uint32(row))
}

// CellCount returns the number of true cells.
func (r *Relation) CellCount() int {
	var n uint64
	for _, col := range r.columns {
		n += col.GetCardinality()
	}
	return int(n)
}

// Cells iterates the true cells as (row, column) pairs, column by column with
// rows ascending.
func (r *Relation) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for c, col := range r.columns {
			it := col.Iterator()
			for it.HasNext() {
				if !yield(int(it.Next()), c) {
					return
				}
			}
		}
	}
}

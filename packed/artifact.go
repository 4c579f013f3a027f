package packed

import (
	"github.com/hupe1980/relpack/relation"
)

// Artifact is a compiled relation.
//
// Bits is owned by the artifact and must not be modified after Compile.
type Artifact struct {
	Name         string
	RowDomain    string
	ColumnDomain string

	RowMembers    []string
	ColumnMembers []string

	RowCount       int
	ColumnCount    int
	BytesPerColumn int

	Bits []byte
}

// Compile packs every true cell of rel.
//
// It returns nil when rel is not usable. It panics if rel holds a cell outside
// its own dimensions, which only happens for relations that were parsed with
// diagnostics and must not be compiled.
func Compile(rel *relation.Relation) *Artifact {
	if !rel.Usable() {
		return nil
	}

	rowCount := rel.RowCount()
	columnCount := rel.ColumnCount()
	bytesPerColumn := BytesPerColumn(rowCount)

	bits := make([]byte, bytesPerColumn*columnCount)
	for row, column := range rel.Cells() {
		byteIndex, bitIndex := BitIndex(row, rowCount, column, columnCount)
		bits[byteIndex] |= 1 << bitIndex
	}

	return &Artifact{
		Name:           rel.Name,
		RowDomain:      rel.RowDomain,
		ColumnDomain:   rel.ColumnDomain,
		RowMembers:     rel.RowMembers,
		ColumnMembers:  rel.ColumnMembers,
		RowCount:       rowCount,
		ColumnCount:    columnCount,
		BytesPerColumn: bytesPerColumn,
		Bits:           bits,
	}
}

// Namespace returns the part of Name before the last '.'.
func (a *Artifact) Namespace() string {
	ns, _ := relation.SplitName(a.Name)
	return ns
}

// SimpleName returns the part of Name after the last '.'.
func (a *Artifact) SimpleName() string {
	_, simple := relation.SplitName(a.Name)
	return simple
}

// Lookup reports whether (row, column) is related. Both are 0-based ordinals
// in the order the relation was parsed.
func (a *Artifact) Lookup(row, column int) bool {
	return a.Table().Lookup(row, column)
}

// Table returns the query view of the artifact.
func (a *Artifact) Table() Table {
	return Table{rowCount: a.RowCount, bits: a.Bits}
}

// CellCount returns the number of set bits.
func (a *Artifact) CellCount() int {
	return popcount(a.Bits)
}

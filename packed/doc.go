// Package packed compiles a relation into a dense bit table and answers
// membership queries against it.
//
// # Layout
//
// Cells are stored column-major. Each column occupies RowCount consecutive
// bits; a cell's flat bit offset is
//
//	offset = row + column*RowCount
//
// and lives in byte offset/8 at bit offset%8, least-significant bit first.
// The buffer is BytesPerColumn(RowCount)*ColumnCount bytes long, with
// BytesPerColumn(n) = ceil(n/8).
//
// The multiplier is always the number of row members. A consumer must carry
// RowCount alongside the bytes: it cannot be recovered from the buffer length
// once the column count is unknown.
//
// # Usage
//
//	art := packed.Compile(rel)     // nil when rel is not usable
//	ok := art.Lookup(row, column)  // O(1), reads one byte
//
//	t := packed.NewTable(art.RowCount, art.Bits)
//	ok = t.Lookup(row, column)
package packed

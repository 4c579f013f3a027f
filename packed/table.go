package packed

import "math/bits"

// Table answers queries against a packed buffer.
//
// Its zero value is an empty table for which every query is false.
type Table struct {
	rowCount int
	bits     []byte
}

// NewTable wraps bits packed for rowCount row members. rowCount must be the
// value used at packing time.
func NewTable(rowCount int, bits []byte) Table {
	return Table{rowCount: rowCount, bits: bits}
}

// RowCount returns the row multiplier of the table.
func (t Table) RowCount() int { return t.rowCount }

// Bytes returns the packed buffer.
func (t Table) Bytes() []byte { return t.bits }

// Lookup reports whether the bit for (row, column) is set.
// Ordinals outside the buffer, or negative ones, report false.
func (t Table) Lookup(row, column int) bool {
	if row < 0 || column < 0 || row >= t.rowCount {
		return false
	}
	offset := Offset(row, column, t.rowCount)
	byteIndex := int(uint(offset) / 8)
	bitIndex := offset & (8 - 1)
	if byteIndex >= len(t.bits) {
		return false
	}
	return t.bits[byteIndex]&(1<<bitIndex) != 0
}

func popcount(buf []byte) int {
	var n int
	for _, b := range buf {
		n += bits.OnesCount8(b)
	}
	return n
}

package packed

import "fmt"

// ErrIndexOutOfRange reports a cell outside the declared dimensions.
//
// It is raised by panic: a relation produced by the parser never contains
// such cells, so hitting it means an internal invariant is broken.
type ErrIndexOutOfRange struct {
	Axis  string // "row" or "column"
	Index int
	Count int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("packed: %s index %d out of range [0, %d)", e.Axis, e.Index, e.Count)
}

// BytesPerColumn returns the number of bytes needed for rowCount bits.
func BytesPerColumn(rowCount int) int {
	var rem int
	n := divRem8(rowCount, &rem)
	if rem > 0 {
		n++
	}
	return n
}

// Offset returns the flat bit offset of (row, column).
func Offset(row, column, rowCount int) int {
	return row + column*rowCount
}

// BitIndex returns the byte and the bit within that byte holding (row, column).
// It panics with *ErrIndexOutOfRange if the cell is outside the table.
func BitIndex(row, rowCount, column, columnCount int) (byteIndex, bitIndex int) {
	if row < 0 || row >= rowCount {
		panic(&ErrIndexOutOfRange{Axis: "row", Index: row, Count: rowCount})
	}
	if column < 0 || column >= columnCount {
		panic(&ErrIndexOutOfRange{Axis: "column", Index: column, Count: columnCount})
	}
	byteIndex = divRem8(Offset(row, column, rowCount), &bitIndex)
	return byteIndex, bitIndex
}

// divRem8 returns n/8 and stores n%8 in rem. n must be non-negative.
func divRem8(n int, rem *int) int {
	*rem = n & 7
	return int(uint(n) >> 3)
}

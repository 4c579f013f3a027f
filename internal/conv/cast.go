package conv

import (
	"fmt"
	"math"
)

// ErrOverflow reports a value that does not fit the target type.
type ErrOverflow struct {
	Value  int64
	Target string
}

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("integer overflow: %d cannot be converted to %s", e.Value, e.Target)
}

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, &ErrOverflow{Value: int64(v), Target: "uint32"}
	}
	return uint32(v), nil
}

// Uint32ToInt converts uint32 to int safely.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, &ErrOverflow{Value: int64(v), Target: "int"}
	}
	return int(v), nil
}

// Dimensions converts a table's row and column counts to their fixed-width
// form, checking both.
func Dimensions(rows, columns int) (uint32, uint32, error) {
	r, err := IntToUint32(rows)
	if err != nil {
		return 0, 0, fmt.Errorf("rows: %w", err)
	}
	c, err := IntToUint32(columns)
	if err != nil {
		return 0, 0, fmt.Errorf("columns: %w", err)
	}
	return r, c, nil
}

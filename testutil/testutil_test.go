package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument(t *testing.T) {
	rng := NewRNG(4711)

	doc := rng.Document(10, 4, 0.5)

	lines := strings.Split(strings.TrimSuffix(string(doc.Text), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Row/Column,C0,C1,C2,C3", lines[0])
	assert.Len(t, doc.RowMembers, 10)
	assert.Len(t, doc.ColumnMembers, 4)

	for row, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 5)
		for c, f := range fields[1:] {
			assert.Equal(t, f != "", doc.Has(row, c))
		}
	}
}

func TestDocument_Deterministic(t *testing.T) {
	a := NewRNG(42).Document(16, 16, 0.2)
	b := NewRNG(42).Document(16, 16, 0.2)
	assert.Equal(t, a.Text, b.Text)

	rng := NewRNG(42)
	first := rng.Document(4, 4, 0.5)
	rng.Reset()
	assert.Equal(t, first.Text, rng.Document(4, 4, 0.5).Text)
	assert.Equal(t, int64(42), rng.Seed())
}

func TestDocument_DensityBounds(t *testing.T) {
	rng := NewRNG(1)
	assert.Empty(t, rng.Document(8, 8, 0).Cells)
	assert.Len(t, rng.Document(8, 8, 1).Cells, 64)
	assert.Less(t, rng.Intn(3), 3)
}

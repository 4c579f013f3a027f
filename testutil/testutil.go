package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Cell is a (row, column) pair.
type Cell struct {
	Row    int
	Column int
}

// Document is a generated relation document.
type Document struct {
	Text          []byte
	RowMembers    []string
	ColumnMembers []string
	Cells         map[Cell]struct{}
}

// Has reports whether the document marks (row, column).
func (d *Document) Has(row, column int) bool {
	_, ok := d.Cells[Cell{Row: row, Column: column}]
	return ok
}

// cellValues are written for true cells; any non-empty text counts.
var cellValues = []string{"x", "1", "yes", " ", "true"}

// Document generates a "Row/Column" document with the given dimensions in
// which each cell is true with probability density.
func (r *RNG) Document(rows, columns int, density float64) *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := &Document{
		RowMembers:    make([]string, rows),
		ColumnMembers: make([]string, columns),
		Cells:         make(map[Cell]struct{}),
	}

	var sb strings.Builder
	sb.WriteString("Row/Column")
	for c := range columns {
		doc.ColumnMembers[c] = fmt.Sprintf("C%d", c)
		sb.WriteByte(',')
		sb.WriteString(doc.ColumnMembers[c])
	}

	for row := range rows {
		doc.RowMembers[row] = fmt.Sprintf("R%d", row)
		sb.WriteByte('\n')
		sb.WriteString(doc.RowMembers[row])
		for c := range columns {
			sb.WriteByte(',')
			if r.rand.Float64() < density {
				sb.WriteString(cellValues[r.rand.Intn(len(cellValues))])
				doc.Cells[Cell{Row: row, Column: c}] = struct{}{}
			}
		}
	}
	sb.WriteByte('\n')

	doc.Text = []byte(sb.String())
	return doc
}

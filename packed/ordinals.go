package packed

import "fmt"

// Ordinals binds domain members to their 0-based ordinals.
//
// Tables are queried by ordinal; how a caller's enumeration maps to ordinals
// is up to the caller and is injected through this interface.
type Ordinals interface {
	Ordinal(member string) (int, bool)
}

// OrdinalMap is an Ordinals backed by a map.
type OrdinalMap map[string]int

// Ordinal implements Ordinals.
func (m OrdinalMap) Ordinal(member string) (int, bool) {
	i, ok := m[member]
	return i, ok
}

// IndexOrdinals assigns each member its position. When a member appears more
// than once, the first position wins.
func IndexOrdinals(members []string) OrdinalMap {
	m := make(OrdinalMap, len(members))
	for i, name := range members {
		if _, ok := m[name]; !ok {
			m[name] = i
		}
	}
	return m
}

// ErrUnknownMember is returned when a member has no ordinal.
type ErrUnknownMember struct {
	Domain string
	Member string
}

func (e *ErrUnknownMember) Error() string {
	return fmt.Sprintf("packed: unknown %s member %q", e.Domain, e.Member)
}

// Resolver answers queries by member name.
type Resolver struct {
	table   Table
	rows    Ordinals
	columns Ordinals
}

// NewResolver returns a Resolver that maps names through rows and columns
// before querying t.
func NewResolver(t Table, rows, columns Ordinals) *Resolver {
	return &Resolver{table: t, rows: rows, columns: columns}
}

// Resolver returns a Resolver using the member order of the artifact.
func (a *Artifact) Resolver() *Resolver {
	return NewResolver(a.Table(), IndexOrdinals(a.RowMembers), IndexOrdinals(a.ColumnMembers))
}

// Lookup reports whether row and column are related.
func (r *Resolver) Lookup(row, column string) (bool, error) {
	ri, ok := r.rows.Ordinal(row)
	if !ok {
		return false, &ErrUnknownMember{Domain: "row", Member: row}
	}
	ci, ok := r.columns.Ordinal(column)
	if !ok {
		return false, &ErrUnknownMember{Domain: "column", Member: column}
	}
	return r.table.Lookup(ri, ci), nil
}

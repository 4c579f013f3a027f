package mmap

// Region is a bounds-checked window into a Mapping, such as the bit table of
// an artifact. It shares the parent's lifetime.
type Region struct {
	m   *Mapping
	off int
	n   int
}

// Region returns the window [off, off+n).
func (m *Mapping) Region(off, n int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || n > len(m.data)-off {
		return nil, ErrOutOfBounds
	}
	return &Region{m: m, off: off, n: n}, nil
}

// Len returns the window length.
func (r *Region) Len() int { return r.n }

// Bytes returns the window, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	data := r.m.Bytes()
	if data == nil {
		return nil
	}
	return data[r.off : r.off+r.n : r.off+r.n]
}

// Advise hints the access pattern for the window only.
func (r *Region) Advise(a Advice) error {
	data := r.m.Bytes()
	if data == nil && r.m.closed.Load() {
		return ErrClosed
	}
	if r.n == 0 {
		return nil
	}
	return osAdvise(data[r.off:r.off+r.n], a)
}

package mmap

import (
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Mapping is a read-only view of a whole file.
type Mapping struct {
	path   string
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. An empty file yields a mapping with
// no data and nothing to unmap.
func Open(path string, opts ...Option) (*Mapping, error) {
	var o openOptions
	for _, fn := range opts {
		fn(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() > math.MaxInt {
		return nil, ErrTooLarge
	}

	m := &Mapping{path: path}
	if fi.Size() == 0 {
		return m, nil
	}

	m.data, m.unmap, err = osMap(f, int(fi.Size()))
	if err != nil {
		return nil, err
	}
	if o.advice != AdviceNormal {
		// Advice is a hint; a refusal leaves the mapping usable.
		_ = osAdvise(m.data, o.advice)
	}
	return m, nil
}

// Path returns the mapped file's path.
func (m *Mapping) Path() string { return m.path }

// Len returns the mapped length in bytes. It stays valid after Close.
func (m *Mapping) Len() int { return len(m.data) }

// Bytes returns the mapped bytes, or nil once closed. The slice must not be
// retained past Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Advise hints the access pattern for the whole mapping.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, a)
}

// ReadAt implements io.ReaderAt over the mapping.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. Calling it again is a no-op.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}

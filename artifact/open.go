package artifact

import (
	"github.com/hupe1980/relpack/internal/hash"
	"github.com/hupe1980/relpack/internal/mmap"
	"github.com/hupe1980/relpack/packed"
)

// File is an artifact opened from disk.
//
// Uncompressed bits are queried directly from the mapping; compressed bits are
// inflated onto the heap once.
type File struct {
	m   *mmap.Mapping
	art *packed.Artifact
}

// Open maps and validates the artifact file at path.
func Open(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	art, err := openMapping(m)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return &File{m: m, art: art}, nil
}

func openMapping(m *mmap.Mapping) (*packed.Artifact, error) {
	data := m.Bytes()
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if err := h.validate(len(data)); err != nil {
		return nil, err
	}
	if !hash.Matches(data[HeaderSize:], h.Checksum) {
		return nil, ErrChecksum
	}
	if h.Compression != CompressionNone {
		return Unmarshal(data)
	}

	region, err := m.Region(int(h.BitsOffset), int(h.BitsSize))
	if err != nil {
		return nil, err
	}
	_ = region.Advise(mmap.AdviceRandom)

	art := &packed.Artifact{
		RowCount:       int(h.RowCount),
		ColumnCount:    int(h.ColumnCount),
		BytesPerColumn: int(h.BytesPerColumn),
		Bits:           region.Bytes(),
	}
	if err := decodeNames(data[h.NamesOffset:], art); err != nil {
		return nil, err
	}
	return art, nil
}

// Artifact returns the decoded artifact. Its Bits are only valid until Close.
func (f *File) Artifact() *packed.Artifact { return f.art }

// Table returns the query view of the file. It is only valid until Close.
func (f *File) Table() packed.Table { return f.art.Table() }

// Lookup reports whether (row, column) is related.
func (f *File) Lookup(row, column int) bool { return f.art.Lookup(row, column) }

// Close unmaps the file. It is idempotent.
func (f *File) Close() error { return f.m.Close() }

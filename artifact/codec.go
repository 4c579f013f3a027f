package artifact

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/relpack/internal/conv"
	"github.com/hupe1980/relpack/internal/hash"
	"github.com/hupe1980/relpack/packed"
)

// Marshal encodes art into the artifact file format.
func Marshal(art *packed.Artifact, c Compression) ([]byte, error) {
	if !c.valid() {
		return nil, &ErrUnknownCompression{Compression: c}
	}
	rows, columns, err := conv.Dimensions(art.RowCount, art.ColumnCount)
	if err != nil {
		return nil, fmt.Errorf("artifact: dimensions %dx%d exceed format limits: %w", art.RowCount, art.ColumnCount, err)
	}
	bytesPerColumn, err := conv.IntToUint32(art.BytesPerColumn)
	if err != nil {
		return nil, fmt.Errorf("artifact: bytes per column: %w", err)
	}

	bits := art.Bits
	if c != CompressionNone {
		if bits, err = compressBlock(art.Bits, c); err != nil {
			return nil, err
		}
	}

	names := appendString(nil, art.Name)
	names = appendString(names, art.RowDomain)
	names = appendString(names, art.ColumnDomain)
	for _, m := range art.RowMembers {
		names = appendString(names, m)
	}
	for _, m := range art.ColumnMembers {
		names = appendString(names, m)
	}

	h := FileHeader{
		Magic:          MagicNumber,
		Version:        Version,
		RowCount:       rows,
		ColumnCount:    columns,
		BytesPerColumn: bytesPerColumn,
		Compression:    c,
		BitsOffset:     HeaderSize,
		BitsSize:       uint64(len(bits)),
	}
	h.NamesOffset = h.BitsOffset + h.BitsSize

	crc := hash.NewCRC32C()
	_, _ = crc.Write(bits)
	_, _ = crc.Write(names)
	h.Checksum = crc.Sum32()

	out := make([]byte, 0, HeaderSize+len(bits)+len(names))
	out = append(out, h.Encode()...)
	out = append(out, bits...)
	out = append(out, names...)
	return out, nil
}

// Unmarshal decodes an artifact file. For uncompressed files the returned
// Bits alias data.
func Unmarshal(data []byte) (*packed.Artifact, error) {
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

	stored := data[h.BitsOffset:h.NamesOffset]
	bits := stored
	if h.Compression != CompressionNone {
		if bits, err = decompressBlock(stored, h.Compression, h.BitsLen()); err != nil {
			return nil, err
		}
	}

	art := &packed.Artifact{
		RowCount:       int(h.RowCount),
		ColumnCount:    int(h.ColumnCount),
		BytesPerColumn: int(h.BytesPerColumn),
		Bits:           bits,
	}
	if err := decodeNames(data[h.NamesOffset:], art); err != nil {
		return nil, err
	}
	return art, nil
}

func decodeNames(buf []byte, art *packed.Artifact) error {
	r := nameReader{buf: buf}
	art.Name = r.next()
	art.RowDomain = r.next()
	art.ColumnDomain = r.next()
	art.RowMembers = make([]string, art.RowCount)
	for i := range art.RowMembers {
		art.RowMembers[i] = r.next()
	}
	art.ColumnMembers = make([]string, art.ColumnCount)
	for i := range art.ColumnMembers {
		art.ColumnMembers[i] = r.next()
	}
	return r.err
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

type nameReader struct {
	buf []byte
	err error
}

func (r *nameReader) next() string {
	if r.err != nil {
		return ""
	}
	n, k := binary.Uvarint(r.buf)
	if k <= 0 || uint64(len(r.buf)-k) < n {
		r.err = ErrTruncated
		return ""
	}
	s := string(r.buf[k : k+int(n)])
	r.buf = r.buf[k+int(n):]
	return s
}

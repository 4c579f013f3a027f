package artifact

import (
	"encoding/binary"
	"errors"
)

const (
	MagicNumber = 0x52504B31 // "RPK1"
	Version     = 1
)

var (
	ErrInvalidMagic    = errors.New("artifact: invalid magic number")
	ErrInvalidVersion  = errors.New("artifact: unsupported version")
	ErrTruncated       = errors.New("artifact: truncated data")
	ErrChecksum        = errors.New("artifact: checksum mismatch")
	ErrInvalidSections = errors.New("artifact: invalid section offsets")
)

// FileHeader describes the layout of an artifact file.
// It is stored at the beginning of the file.
type FileHeader struct {
	Magic          uint32
	Version        uint32
	RowCount       uint32
	ColumnCount    uint32
	BytesPerColumn uint32
	Compression    Compression
	_              [3]byte
	BitsOffset     uint64
	BitsSize       uint64 // stored size, including the block header when compressed
	NamesOffset    uint64
	Checksum       uint32 // CRC32C of everything after the header
	_              [4]byte
}

// HeaderSize is the encoded size of FileHeader.
const HeaderSize = 4 + 4 + 4 + 4 + 4 + 1 + 3 + 8 + 8 + 8 + 4 + 4

// Encode returns the binary form of h.
func (h *FileHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	binary.LittleEndian.PutUint32(buf[8:], h.RowCount)
	binary.LittleEndian.PutUint32(buf[12:], h.ColumnCount)
	binary.LittleEndian.PutUint32(buf[16:], h.BytesPerColumn)
	buf[20] = byte(h.Compression)
	// Padding [21:24]
	binary.LittleEndian.PutUint64(buf[24:], h.BitsOffset)
	binary.LittleEndian.PutUint64(buf[32:], h.BitsSize)
	binary.LittleEndian.PutUint64(buf[40:], h.NamesOffset)
	binary.LittleEndian.PutUint32(buf[48:], h.Checksum)
	return buf
}

// DecodeHeader parses and validates the header at the start of buf.
func DecodeHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < HeaderSize {
		return nil, ErrTruncated
	}
	h := &FileHeader{}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	if h.Version != Version {
		return nil, ErrInvalidVersion
	}
	h.RowCount = binary.LittleEndian.Uint32(buf[8:])
	h.ColumnCount = binary.LittleEndian.Uint32(buf[12:])
	h.BytesPerColumn = binary.LittleEndian.Uint32(buf[16:])
	h.Compression = Compression(buf[20])
	h.BitsOffset = binary.LittleEndian.Uint64(buf[24:])
	h.BitsSize = binary.LittleEndian.Uint64(buf[32:])
	h.NamesOffset = binary.LittleEndian.Uint64(buf[40:])
	h.Checksum = binary.LittleEndian.Uint32(buf[48:])
	return h, nil
}

// BitsLen returns the length of the uncompressed bit table.
func (h *FileHeader) BitsLen() int {
	return int(h.BytesPerColumn) * int(h.ColumnCount)
}

func (h *FileHeader) validate(size int) error {
	if !h.Compression.valid() {
		return &ErrUnknownCompression{Compression: h.Compression}
	}
	if h.BitsOffset != HeaderSize ||
		h.NamesOffset != h.BitsOffset+h.BitsSize ||
		h.NamesOffset > uint64(size) {
		return ErrInvalidSections
	}
	if uint64(h.BytesPerColumn) != (uint64(h.RowCount)+7)/8 {
		return ErrInvalidSections
	}
	// The three names and every member take at least one length byte each.
	if uint64(size)-h.NamesOffset < 3+uint64(h.RowCount)+uint64(h.ColumnCount) {
		return ErrTruncated
	}
	if h.Compression == CompressionNone && h.BitsSize != uint64(h.BitsLen()) {
		return ErrInvalidSections
	}
	return nil
}

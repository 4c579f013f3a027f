package artifact

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how the bit table is stored.
type Compression uint8

const (
	// CompressionNone stores the bits as-is. Only these files are queried in
	// place by Open.
	CompressionNone Compression = 0
	// CompressionLZ4 stores the bits as an LZ4 block.
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores the bits as a ZSTD frame.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

// ErrUnknownCompression reports an unsupported compression type.
type ErrUnknownCompression struct {
	Compression Compression
	Name        string
}

func (e *ErrUnknownCompression) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("artifact: unknown compression %q", e.Name)
	}
	return fmt.Sprintf("artifact: unknown compression %d", uint8(e.Compression))
}

// ParseCompression returns the Compression named s ("", "none", "lz4", "zstd").
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, &ErrUnknownCompression{Name: s}
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means Data is stored uncompressed.
const blockHeaderSize = 8

var errBlockSize = errors.New("artifact: decompressed size mismatch")

// compressBlock compresses data. Data that does not shrink is stored raw
// behind the block header.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0: incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, &ErrUnknownCompression{Compression: c}
	}

	if len(compressed) == 0 || len(compressed) >= len(data) {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

// decompressBlock reverses compressBlock. want is the size the header
// promises; a block claiming any other size is rejected before allocating.
func decompressBlock(block []byte, c Compression, want int) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, ErrTruncated
	}
	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	if uint64(uncompressedSize) != uint64(want) {
		return nil, errBlockSize
	}

	if compressedSize == 0 {
		if uint64(len(block)) < blockHeaderSize+uint64(uncompressedSize) {
			return nil, ErrTruncated
		}
		out := make([]byte, uncompressedSize)
		copy(out, block[blockHeaderSize:])
		return out, nil
	}

	if uint64(len(block)) < blockHeaderSize+uint64(compressedSize) {
		return nil, ErrTruncated
	}
	data := block[blockHeaderSize : blockHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errBlockSize
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(data, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errBlockSize
		}
		return decoded, nil
	default:
		return nil, &ErrUnknownCompression{Compression: c}
	}
}

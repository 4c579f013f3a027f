package hash

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a streaming Castagnoli hash for writers that never hold
// the whole blob, such as emitters writing to a store.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}

// CRC32CBase64 returns the checksum in the form S3 expects for
// ChecksumCRC32C: the big-endian sum, base64 encoded.
func CRC32CBase64(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], CRC32C(data))
	return base64.StdEncoding.EncodeToString(b[:])
}

// Matches reports whether data has checksum want.
func Matches(data []byte, want uint32) bool {
	return CRC32C(data) == want
}

// Package hash provides the CRC32-Castagnoli checksum used by the artifact
// format, the manifest and the S3 upload path.
//
//	sum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(body)
//	sum = h.Sum32()
//
// The table is computed once at package init; hash/crc32 picks the SSE4.2 or
// ARM CRC instructions when available.
package hash

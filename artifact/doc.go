// Package artifact implements the binary file format for compiled relations.
//
// # File Layout
//
//	+----------------------+ 0
//	| FileHeader (56 B)    |  magic "RPK1", version, dimensions,
//	|                      |  compression, section offsets, CRC32C
//	+----------------------+ BitsOffset
//	| bits                 |  packed table, or a compressed block
//	+----------------------+ NamesOffset
//	| names                |  uvarint-prefixed strings: name, row domain,
//	|                      |  column domain, row members, column members
//	+----------------------+
//
// All integers are little-endian. The checksum covers everything after the
// header.
//
// Uncompressed files can be opened with [Open], which maps the file and
// queries the bits in place.
package artifact

// Package mmap provides read-only memory-mapped file access.
//
// Compiled artifacts are small, immutable and queried at random, which makes
// them a good fit for mapping: the bit table is used in place and never
// copied onto the heap.
//
//	m, err := mmap.Open("animal_color.rpk")
//	if err != nil { ... }
//	defer m.Close()
//
//	bits, _ := m.Region(offset, size)
//	_ = bits.Advise(mmap.AdviceRandom)
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Close is idempotent. Slices returned by Bytes and Region.Bytes must not be
// used after Close.
package mmap

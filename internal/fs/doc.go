// Package fs provides a read-only file system abstraction for source
// documents, with fault injection for tests.
//
//   - [File]: an open document
//   - [FileSystem]: open, stat, list and glob
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that fails opens, reads or closes
//
// # Usage
//
//	text, err := fs.ReadFile(fs.Default, "Maps/Permissions.csv")
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("Permissions.csv", fs.Fault{FailOnOpen: true})
//
// Operations take no context.Context. Reading a local document is short and
// not interruptible at the syscall level; remote data goes through blobstore.
package fs

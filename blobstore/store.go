package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConflict is returned by PutIfNotExists when the blob already exists.
var ErrConflict = errors.New("blobstore: blob already exists")

var errNegativeOffset = errors.New("blobstore: negative offset")

// BlobStore is an abstraction for storing emitted artifacts and manifests.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for streaming writes. The blob becomes visible
	// when the returned writer is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	Sync() error
}

// ConditionalPutter is an optional interface for stores that can create a blob
// only if it does not exist yet.
type ConditionalPutter interface {
	// PutIfNotExists writes a blob unless one with that name exists, in
	// which case it returns an error satisfying errors.Is(err, ErrConflict).
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// ReadAll returns the whole content of the named blob.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), data...), nil
	}

	buf := make([]byte, b.Size())
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if int64(n) != b.Size() {
		return nil, fmt.Errorf("blobstore: short read of %s: %d of %d bytes", name, n, b.Size())
	}
	return buf, nil
}

// WriteTo streams fn's output into a new blob. The blob is only committed when
// fn succeeds.
func WriteTo(ctx context.Context, store BlobStore, name string, fn func(w io.Writer) error) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		if a, ok := w.(interface{ Abort() error }); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// sectionReader adapts a context-aware ReadAt to io.Reader.
type sectionReader struct {
	ctx   context.Context
	read  func(ctx context.Context, p []byte, off int64) (int, error)
	off   int64
	limit int64
}

func (r *sectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.read(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return
}

// ContentType returns the MIME type recorded with a blob in object stores,
// derived from the emitted file's extension.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".go":
		return "text/x-go; charset=utf-8"
	case ".json":
		return "application/json"
	}
	if path.Base(name) == "CURRENT" {
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

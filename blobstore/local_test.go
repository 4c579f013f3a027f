package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store BlobStore) {
	ctx := context.Background()

	// 1. Create a blob
	blobName := "out/AnimalColor.rpk"
	data := []byte("hello world, this is a test blob for relpack")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. Put and List
	require.NoError(t, store.Put(ctx, "MANIFEST-000001.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "out/Other.go", []byte("package x")))

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"MANIFEST-000001.json", blobName, "out/Other.go"}, blobs)

	blobs, err = store.List(ctx, "out/")
	require.NoError(t, err)
	require.Equal(t, []string{blobName, "out/Other.go"}, blobs)

	got, err := ReadAll(ctx, store, "out/Other.go")
	require.NoError(t, err)
	require.Equal(t, "package x", string(got))

	// 5. Put replaces
	require.NoError(t, store.Put(ctx, "out/Other.go", []byte("package y")))
	got, err = ReadAll(ctx, store, "out/Other.go")
	require.NoError(t, err)
	require.Equal(t, "package y", string(got))

	// 6. Delete
	require.NoError(t, store.Delete(ctx, "out/Other.go"))
	require.NoError(t, store.Delete(ctx, "out/Other.go"))

	_, err = store.Open(ctx, "out/Other.go")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = ReadAll(ctx, store, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func testStoreWriteTo(t *testing.T, store BlobStore) {
	ctx := context.Background()

	require.NoError(t, WriteTo(ctx, store, "ok.bin", func(w io.Writer) error {
		_, err := w.Write([]byte("payload"))
		return err
	}))
	got, err := ReadAll(ctx, store, "ok.bin")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	boom := errors.New("boom")
	err = WriteTo(ctx, store, "failed.bin", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Open(ctx, "failed.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testStoreReadRangeBoundaries(t *testing.T, store BlobStore) {
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: Read full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Case 2: Read past end
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: Offset past EOF
	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)

	// Case 4: ReadAt past end
	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 2, n)
}

func testStorePutIfNotExists(t *testing.T, store BlobStore) {
	ctx := context.Background()

	cp, ok := store.(ConditionalPutter)
	require.True(t, ok)

	require.NoError(t, cp.PutIfNotExists(ctx, "MANIFEST-000001.json", []byte("first")))
	err := cp.PutIfNotExists(ctx, "MANIFEST-000001.json", []byte("second"))
	require.ErrorIs(t, err, ErrConflict)

	got, err := ReadAll(ctx, store, "MANIFEST-000001.json")
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"MANIFEST-000001.json"}, names)
}

func TestLocalStore(t *testing.T) {
	t.Run("Lifecycle", func(t *testing.T) { testStoreLifecycle(t, NewLocalStore(t.TempDir())) })
	t.Run("WriteTo", func(t *testing.T) { testStoreWriteTo(t, NewLocalStore(t.TempDir())) })
	t.Run("ReadRange", func(t *testing.T) { testStoreReadRangeBoundaries(t, NewLocalStore(t.TempDir())) })
	t.Run("PutIfNotExists", func(t *testing.T) { testStorePutIfNotExists(t, NewLocalStore(t.TempDir())) })
}

func TestMemoryStore(t *testing.T) {
	t.Run("Lifecycle", func(t *testing.T) { testStoreLifecycle(t, NewMemoryStore()) })
	t.Run("WriteTo", func(t *testing.T) { testStoreWriteTo(t, NewMemoryStore()) })
	t.Run("ReadRange", func(t *testing.T) { testStoreReadRangeBoundaries(t, NewMemoryStore()) })
	t.Run("PutIfNotExists", func(t *testing.T) { testStorePutIfNotExists(t, NewMemoryStore()) })
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.bin", []byte("a")))
	_ = WriteTo(ctx, store, "b.bin", func(io.Writer) error { return errors.New("fail") })

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bin", entries[0].Name())

	_, err = os.Stat(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, filepath.Join(filepath.Dir(store.Root()), "does-not-exist"), store.Root())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/x-go; charset=utf-8", ContentType("gen/animal_color.go"))
	assert.Equal(t, "application/json", ContentType("MANIFEST-000001.json"))
	assert.Equal(t, "application/octet-stream", ContentType("animal_color.rpk"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("prefix/CURRENT"))
}

func TestMemoryBlob_Ranges(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBlob([]byte("Row/Column"))

	p := make([]byte, 6)
	n, err := b.ReadAt(ctx, p, 4)
	require.NoError(t, err)
	assert.Equal(t, "Column", string(p[:n]))

	_, err = b.ReadAt(ctx, p, -1)
	assert.Error(t, err)

	_, err = b.ReadRange(ctx, 10, 1)
	assert.ErrorIs(t, err, io.EOF)
}

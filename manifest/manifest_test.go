package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *Manifest {
	return &Manifest{
		Format: "go",
		Entries: []Entry{{
			Name:         "colors.AnimalColor",
			Source:       "maps/animal_color.csv",
			Blob:         "AnimalColor.go",
			Format:       "go",
			RowDomain:    "Animal",
			ColumnDomain: "Color",
			Rows:         2,
			Columns:      3,
			Cells:        3,
			Size:         412,
			CRC32C:       0xdeadbeef,
		}},
		Failures: []Failure{{Source: "maps/bad.csv", Name: "x.Bad", Diagnostics: []string{"maps/bad.csv:2:0-3: RPK003 error: invalid csv row"}}},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for _, store := range []blobstore.BlobStore{blobstore.NewMemoryStore(), blobstore.NewLocalStore(t.TempDir())} {
		s := NewStore(store, nil)

		_, err := s.Load(ctx)
		require.ErrorIs(t, err, ErrNotFound)

		m := sampleManifest()
		require.NoError(t, s.Save(ctx, m))
		assert.Equal(t, uint64(1), m.ID)
		assert.Equal(t, CurrentVersion, m.Version)
		assert.False(t, m.CreatedAt.IsZero())

		loaded, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, m.Entries, loaded.Entries)
		assert.Equal(t, m.Failures, loaded.Failures)
		assert.True(t, m.CreatedAt.Equal(loaded.CreatedAt))

		e, ok := loaded.Entry("colors.AnimalColor")
		require.True(t, ok)
		assert.Equal(t, "AnimalColor.go", e.Blob)
		_, ok = loaded.Entry("missing")
		assert.False(t, ok)

		m2 := sampleManifest()
		m2.Format = "binary"
		require.NoError(t, s.Save(ctx, m2))
		assert.Equal(t, uint64(2), m2.ID)

		current, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "binary", current.Format)

		first, err := s.LoadVersion(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "go", first.Format)

		ids, err := s.ListVersions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2}, ids)

		_, err = s.LoadVersion(ctx, 7)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestStore_IncompatibleVersion(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	s := NewStore(store, codec.JSON{})

	require.NoError(t, s.Save(ctx, sampleManifest()))

	data, err := blobstore.ReadAll(ctx, store, FileName(1))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["version"] = 999
	data, err = json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, FileName(1), data))

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestStore_CorruptManifest(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, CurrentFileName, []byte(FileName(3))))
	require.NoError(t, store.Put(ctx, FileName(3), []byte("{not json")))

	_, err := NewStore(store, nil).Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

// conflictingStore simulates another writer creating the next manifest
// between listing and writing.
type conflictingStore struct {
	*blobstore.MemoryStore
	once sync.Once
}

func (c *conflictingStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	c.once.Do(func() {
		_ = c.MemoryStore.Put(ctx, name, []byte(`{"version":1}`))
	})
	return c.MemoryStore.PutIfNotExists(ctx, name, data)
}

func TestStore_SaveRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := &conflictingStore{MemoryStore: blobstore.NewMemoryStore()}
	s := NewStore(store, nil)

	m := sampleManifest()
	require.NoError(t, s.Save(ctx, m))
	assert.Equal(t, uint64(2), m.ID)

	current, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current.ID)
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	s := NewStore(store, nil)

	for range 5 {
		require.NoError(t, s.Save(ctx, sampleManifest()))
	}

	deleted, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, deleted)

	ids, err := s.ListVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, ids)

	require.NoError(t, s.DeleteVersion(ctx, 4))
	ids, err = s.ListVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, ids)
}

func TestParseFileName(t *testing.T) {
	for i, name := range []string{"MANIFEST-000001.json", "MANIFEST-1234567.json"} {
		id, ok := ParseFileName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, FileName(id), fmt.Sprint(i))
	}
	for _, name := range []string{"MANIFEST-000000.json", "MANIFEST-abc.json", "MANIFEST-000001.bin", "CURRENT"} {
		_, ok := ParseFileName(name)
		assert.False(t, ok, name)
	}
}

// Package manifest records the artifacts produced by a build.
//
// Every build writes a new MANIFEST-%06d.json blob and then points CURRENT at
// it, so readers always see a complete build.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/codec"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	// CurrentVersion is the version of the manifest format.
	CurrentVersion = 1

	maxSaveAttempts = 8
)

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrNotFound is returned when no manifest has been committed yet.
	ErrNotFound = errors.New("manifest not found")
)

// Manifest describes the output of one build.
type Manifest struct {
	Version     int       `json:"version"`
	ID          uint64    `json:"id"`
	BuildID     string    `json:"build_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Format      string    `json:"format"`
	Compression string    `json:"compression,omitempty"`
	Codec       string    `json:"codec,omitempty"`
	Entries     []Entry   `json:"entries"`
	Failures    []Failure `json:"failures,omitempty"`
}

// Entry describes one emitted artifact.
type Entry struct {
	Name         string `json:"name"`
	Source       string `json:"source"`
	Blob         string `json:"blob"`
	Format       string `json:"format"`
	RowDomain    string `json:"row_domain"`
	ColumnDomain string `json:"column_domain"`
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	Cells        int    `json:"cells"`
	Size         int64  `json:"size"`
	CRC32C       uint32 `json:"crc32c"`
}

// Failure records a document that was not compiled.
type Failure struct {
	Source      string   `json:"source"`
	Name        string   `json:"name"`
	Diagnostics []string `json:"diagnostics"`
}

// Entry returns the entry for the relation name.
func (m *Manifest) Entry(name string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FileName returns the blob name of manifest version id.
func FileName(id uint64) string {
	return fmt.Sprintf("%s-%06d.json", ManifestFileName, id)
}

// ParseFileName returns the version id encoded in a manifest blob name.
func ParseFileName(name string) (uint64, bool) {
	rest, ok := strings.CutPrefix(name, ManifestFileName+"-")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Store manages manifest blobs and the CURRENT pointer.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a new manifest store. A nil codec selects codec.Default.
func NewStore(store blobstore.BlobStore, c codec.Codec) *Store {
	return &Store{store: store, codec: codec.Or(c)}
}

// Load loads the current manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	return s.LoadVersion(ctx, 0)
}

// LoadVersion loads a specific version ID. 0 means latest.
func (s *Store) LoadVersion(ctx context.Context, versionID uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var manifestFilename string
	if versionID == 0 {
		content, err := blobstore.ReadAll(ctx, s.store, CurrentFileName)
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		manifestFilename = strings.TrimSpace(string(content))
	} else {
		manifestFilename = FileName(versionID)
	}

	data, err := blobstore.ReadAll(ctx, s.store, manifestFilename)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, manifestFilename)
		}
		return nil, fmt.Errorf("failed to open manifest %s: %w", manifestFilename, err)
	}

	m := &Manifest{}
	if err := s.codec.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", manifestFilename, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, m.Version, CurrentVersion)
	}
	return m, nil
}

// ListVersions returns the ids of all stored manifests in ascending order.
func (s *Store) ListVersions(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listVersions(ctx)
}

func (s *Store) listVersions(ctx context.Context) ([]uint64, error) {
	files, err := s.store.List(ctx, ManifestFileName+"-")
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, f := range files {
		if id, ok := ParseFileName(f); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Save writes m as the next version and makes it current. It sets m.Version,
// m.ID and m.CreatedAt.
//
// Stores implementing blobstore.ConditionalPutter make concurrent saves pick
// distinct versions.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listVersions(ctx)
	if err != nil {
		return err
	}
	var next uint64 = 1
	if len(ids) > 0 {
		next = ids[len(ids)-1] + 1
	}

	m.Version = CurrentVersion
	m.CreatedAt = time.Now().UTC()

	for attempt := 0; ; attempt++ {
		m.ID = next
		filename := FileName(m.ID)

		data, err := s.encode(m)
		if err != nil {
			return err
		}

		err = s.put(ctx, filename, data)
		if errors.Is(err, blobstore.ErrConflict) && attempt+1 < maxSaveAttempts {
			next++
			continue
		}
		if err != nil {
			return err
		}

		return s.store.Put(ctx, CurrentFileName, []byte(filename))
	}
}

func (s *Store) encode(m *Manifest) ([]byte, error) {
	return codec.Encode(s.codec, m, true)
}

func (s *Store) put(ctx context.Context, name string, data []byte) error {
	if cp, ok := s.store.(blobstore.ConditionalPutter); ok {
		return cp.PutIfNotExists(ctx, name, data)
	}
	return s.store.Put(ctx, name, data)
}

// DeleteVersion deletes the manifest blob for the given version.
func (s *Store) DeleteVersion(ctx context.Context, versionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Delete(ctx, FileName(versionID))
}

// Prune deletes all but the newest keep manifest versions. The current
// version is never deleted.
func (s *Store) Prune(ctx context.Context, keep int) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listVersions(ctx)
	if err != nil {
		return nil, err
	}
	if keep < 1 {
		keep = 1
	}
	if len(ids) <= keep {
		return nil, nil
	}

	var current uint64
	if content, err := blobstore.ReadAll(ctx, s.store, CurrentFileName); err == nil {
		current, _ = ParseFileName(strings.TrimSpace(string(content)))
	}

	var deleted []uint64
	for _, id := range ids[:len(ids)-keep] {
		if id == current {
			continue
		}
		if err := s.store.Delete(ctx, FileName(id)); err != nil {
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

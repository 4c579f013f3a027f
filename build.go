package relpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/config"
	"github.com/hupe1980/relpack/emit"
	"github.com/hupe1980/relpack/internal/hash"
	"github.com/hupe1980/relpack/internal/resource"
	"github.com/hupe1980/relpack/manifest"
)

// BuildResult is the outcome of Build.
type BuildResult struct {
	// Manifest is the committed manifest. It is nil when the build failed
	// before anything was committed.
	Manifest *manifest.Manifest
	Results  []*Result
	// Store holds the emitted artifacts and the manifest.
	Store blobstore.BlobStore
}

// Build compiles every map document of cfg, emits the artifacts into the
// configured blob store and commits a manifest.
//
// Documents with diagnostics are recorded as manifest failures and reported
// as *ErrDocumentFailed values joined into the returned error; the returned
// BuildResult is valid in that case. Other errors abort the build.
func (c *Compiler) Build(ctx context.Context, cfg *config.Config) (*BuildResult, error) {
	id := uuid.NewString()
	log := c.opts.logger.WithBuildID(id)

	docs, err := cfg.Documents(c.opts.fs)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	emitter, err := cfg.Emitter()
	if err != nil {
		return nil, err
	}

	store := c.opts.store
	if store == nil {
		if store, err = OpenStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	srcs := make([]Source, len(docs))
	for i, d := range docs {
		srcs[i] = Source{Path: d.Path, Name: d.Name}
	}
	results, err := c.CompileAll(ctx, srcs)
	if err != nil {
		log.LogBuild(ctx, 0, 0, 0, 0, err)
		return nil, err
	}

	m := &manifest.Manifest{
		BuildID:     id,
		Format:      emitter.Name(),
		Compression: cfg.Output.Compression,
		Codec:       cfg.Output.Codec,
	}

	var (
		failures []error
		skipped  int
		jobs     []emitJob
		owners   = make(map[string]string)
	)
	for _, res := range results {
		switch {
		case res.Failed():
			failures = append(failures, res.Err())
			m.Failures = append(m.Failures, newFailure(res))
		case res.Skipped():
			skipped++
		default:
			blob := emit.FileName(res.Artifact, emitter)
			if first, ok := owners[blob]; ok {
				err := &ErrDuplicateBlob{Blob: blob, First: first, Second: res.Source.Path}
				log.LogBuild(ctx, 0, 0, skipped, len(failures), err)
				return nil, err
			}
			owners[blob] = res.Source.Path
			jobs = append(jobs, emitJob{res: res, blob: blob})
		}
	}

	entries, err := c.emitAll(ctx, log, store, emitter, jobs)
	if err != nil {
		log.LogBuild(ctx, 0, 0, skipped, len(failures), err)
		return nil, err
	}
	m.Entries = entries

	ms := manifest.NewStore(store, nil)
	if err := ms.Save(ctx, m); err != nil {
		err = fmt.Errorf("relpack: commit manifest: %w", err)
		log.LogBuild(ctx, 0, len(entries), skipped, len(failures), err)
		return nil, err
	}
	if keep := cfg.Build.KeepManifests; keep > 0 {
		if _, err := ms.Prune(ctx, keep); err != nil {
			log.WarnContext(ctx, "manifest prune failed", "error", err)
		}
	}

	log.LogBuild(ctx, m.ID, len(entries), skipped, len(failures), nil)

	return &BuildResult{
		Manifest: m,
		Results:  results,
		Store:    store,
	}, errors.Join(failures...)
}

type emitJob struct {
	res  *Result
	blob string
}

func (c *Compiler) emitAll(ctx context.Context, log *Logger, store blobstore.BlobStore, e emit.Emitter, jobs []emitJob) ([]manifest.Entry, error) {
	entries := make([]manifest.Entry, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)

	for i, job := range jobs {
		g.Go(func() error {
			entry, err := c.emit(gctx, store, e, job)
			log.LogEmit(gctx, job.blob, e.Name(), entry.Size, err)
			if err != nil {
				return fmt.Errorf("relpack: emit %s: %w", job.blob, err)
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Compiler) emit(ctx context.Context, store blobstore.BlobStore, e emit.Emitter, job emitJob) (manifest.Entry, error) {
	art := job.res.Artifact
	start := time.Now()

	crc := hash.NewCRC32C()
	cw := &countingWriter{}
	err := blobstore.WriteTo(ctx, store, job.blob, func(w io.Writer) error {
		rw := resource.NewRateLimitedWriter(ctx, w, c.rc)
		return e.Emit(io.MultiWriter(rw, crc, cw), art)
	})
	c.opts.metricsCollector.RecordEmit(e.Name(), cw.n, time.Since(start), err)
	if err != nil {
		return manifest.Entry{}, err
	}

	return manifest.Entry{
		Name:         art.Name,
		Source:       job.res.Source.Path,
		Blob:         job.blob,
		Format:       e.Name(),
		RowDomain:    art.RowDomain,
		ColumnDomain: art.ColumnDomain,
		Rows:         art.RowCount,
		Columns:      art.ColumnCount,
		Cells:        art.CellCount(),
		Size:         cw.n,
		CRC32C:       crc.Sum32(),
	}, nil
}

func newFailure(res *Result) manifest.Failure {
	f := manifest.Failure{
		Source: res.Source.Path,
		Name:   res.Source.name(),
	}
	for _, d := range res.Diagnostics {
		f.Diagnostics = append(f.Diagnostics, d.Error())
	}
	return f
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

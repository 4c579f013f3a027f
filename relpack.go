package relpack

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/relpack/internal/fs"
	"github.com/hupe1980/relpack/internal/resource"
	"github.com/hupe1980/relpack/packed"
	"github.com/hupe1980/relpack/relation"
)

// Source is one relation document.
type Source struct {
	// Path identifies the document in diagnostics. It is read through the
	// configured file system when Text is nil.
	Path string
	// Name is the fully qualified relation name, e.g. "colors.AnimalColor".
	// It defaults to the file stem of Path.
	Name string
	Text []byte
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Result is the outcome of compiling one Source.
type Result struct {
	Source      Source
	Relation    *relation.Relation
	Artifact    *packed.Artifact
	Diagnostics relation.Diagnostics
}

// Failed reports whether the document had diagnostics. Failed documents have
// no artifact.
func (r *Result) Failed() bool { return len(r.Diagnostics) > 0 }

// Skipped reports whether the document parsed cleanly but its header does not
// describe a usable relation.
func (r *Result) Skipped() bool { return !r.Failed() && r.Artifact == nil }

// Err returns an *ErrDocumentFailed for failed documents and nil otherwise.
func (r *Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return &ErrDocumentFailed{
		Path:        r.Source.Path,
		Name:        r.Source.name(),
		Diagnostics: r.Diagnostics,
	}
}

// Compiler parses and packs relation documents.
// It is safe for concurrent use.
type Compiler struct {
	opts options
	rc   *resource.Controller
}

// New returns a Compiler configured by opts.
func New(optFns ...Option) *Compiler {
	o := applyOptions(optFns)
	return &Compiler{
		opts: o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   o.limits.MemoryLimitBytes,
			MaxWorkers:         int64(o.workers),
			IOLimitBytesPerSec: o.limits.IOLimitBytesPerSec,
		}),
	}
}

// Logger returns the configured logger.
func (c *Compiler) Logger() *Logger { return c.opts.logger }

// Compile parses src and packs it.
//
// Problems in the document are reported in Result.Diagnostics, not as an
// error. The returned error is reserved for cancellation, resource limits and
// failed verification.
func (c *Compiler) Compile(ctx context.Context, src Source) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.rc.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer c.rc.ReleaseWorker()

	name := src.name()
	res := &Result{Source: src}
	log := c.opts.logger.WithDocument(src.Path, name)

	text := src.Text
	if text == nil {
		data, err := fs.ReadFile(c.opts.fs, src.Path)
		if err != nil {
			log.DebugContext(ctx, "document unreadable", "error", err)
		}
		text = data
	}
	if len(text) == 0 {
		res.Diagnostics = relation.Diagnostics{relation.NewDocumentDiagnostic(src.Path)}
		c.opts.metricsCollector.RecordParse(0, len(res.Diagnostics))
		log.LogParse(ctx, len(res.Diagnostics))
		return res, nil
	}

	start := time.Now()
	rel, diags := relation.Parse(src.Path, name, text)
	c.opts.metricsCollector.RecordParse(time.Since(start), len(diags))
	log.LogParse(ctx, len(diags))

	res.Relation, res.Diagnostics = rel, diags
	if len(diags) > 0 {
		return res, nil
	}
	if !rel.Usable() {
		log.LogSkip(ctx)
		return res, nil
	}

	size := int64(packed.BytesPerColumn(rel.RowCount()) * rel.ColumnCount())
	if err := c.rc.AcquireMemory(ctx, size); err != nil {
		return nil, fmt.Errorf("relpack: compile %s: %w", name, err)
	}
	defer c.rc.ReleaseMemory(size)

	start = time.Now()
	art := packed.Compile(rel)

	var err error
	if c.opts.verify {
		err = packed.Verify(rel, art)
	}

	c.opts.metricsCollector.RecordCompile(rel.CellCount(), len(art.Bits), time.Since(start), err)
	log.LogCompile(ctx, art.RowCount, art.ColumnCount, len(art.Bits), err)
	if err != nil {
		return nil, fmt.Errorf("relpack: compile %s: %w", name, err)
	}

	res.Artifact = art
	return res, nil
}

// CompileAll compiles srcs concurrently. Results are in input order. A
// document with diagnostics does not affect the others; the first error
// cancels the remaining compiles.
func (c *Compiler) CompileAll(ctx context.Context, srcs []Source) ([]*Result, error) {
	results := make([]*Result, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)

	for i, src := range srcs {
		g.Go(func() error {
			res, err := c.Compile(gctx, src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

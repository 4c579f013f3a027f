package relpack

import (
	"log/slog"

	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/internal/fs"
)

// ResourceLimits bounds what a Compiler may use. Zero values mean unlimited.
type ResourceLimits struct {
	// MemoryLimitBytes bounds the bit tables packed concurrently.
	MemoryLimitBytes int64
	// IOLimitBytesPerSec bounds the write throughput towards the blob store.
	IOLimitBytesPerSec int64
}

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	workers          int
	verify           bool
	fs               fs.FileSystem
	limits           ResourceLimits
	store            blobstore.BlobStore
}

// Option configures a Compiler.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring builds.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &relpack.BasicMetricsCollector{}
//	c := relpack.New(relpack.WithMetricsCollector(metrics))
//	// ... compile ...
//	stats := metrics.GetStats()
//	fmt.Printf("Compiled: %d, Bytes: %d\n", stats.CompileCount, stats.CompileBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := relpack.NewJSONLogger(slog.LevelInfo)
//	c := relpack.New(relpack.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithWorkers sets how many documents are compiled and emitted concurrently.
// Values below 1 select a single worker.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithVerify makes every compile check the packed table against the parsed
// relation, cell by cell.
func WithVerify(verify bool) Option {
	return func(o *options) {
		o.verify = verify
	}
}

// WithFileSystem sets the file system documents are read from.
// If nil is passed, the local file system is used.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithResourceLimits bounds memory and write throughput.
func WithResourceLimits(limits ResourceLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithStore makes Build write to store instead of the store named in the
// build file.
func WithStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		workers:          1,
		fs:               fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/relpack/artifact"
	"github.com/hupe1980/relpack/codec"
	"github.com/hupe1980/relpack/emit"
	"github.com/hupe1980/relpack/internal/fs"
)

const (
	// FileTypeMap selects relation documents.
	FileTypeMap = "Map"
	// FileFormatCsv is the only supported document format.
	FileFormatCsv = "Csv"

	wildcardSuffix = ".*"
)

// Store kinds.
const (
	StoreLocal  = "local"
	StoreMemory = "memory"
	StoreS3     = "s3"
	StoreMinIO  = "minio"
)

// ErrInvalidConfig is wrapped by all validation errors.
var ErrInvalidConfig = errors.New("config: invalid build file")

// Config is a relpack build file.
type Config struct {
	Files    []File `yaml:"files"`
	Output   Output `yaml:"output"`
	Store    Store  `yaml:"store"`
	Build    Build  `yaml:"build"`
	LogLevel string `yaml:"log_level"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// File is one additional file of the build.
type File struct {
	Path       string `yaml:"path"`
	FileType   string `yaml:"file_type"`
	FileFormat string `yaml:"file_format"`
	TypeName   string `yaml:"type_name"`
}

// IsMap reports whether f is a relation document to compile.
func (f File) IsMap() bool {
	return strings.EqualFold(f.FileType, FileTypeMap) &&
		strings.EqualFold(f.FileFormat, FileFormatCsv) &&
		f.TypeName != ""
}

// Output selects the emitted format.
type Output struct {
	Format      string `yaml:"format"`
	Compression string `yaml:"compression"`
	Codec       string `yaml:"codec"`
	Indent      bool   `yaml:"indent"`
	Go          GoOpts `yaml:"go"`
}

// GoOpts configures the Go source emitter.
type GoOpts struct {
	Package    string   `yaml:"package"`
	Imports    []string `yaml:"imports"`
	RowType    string   `yaml:"row_type"`
	ColumnType string   `yaml:"column_type"`
	Ordinals   bool     `yaml:"ordinals"`
}

// Store describes the blob store artifacts are written to.
type Store struct {
	Kind string `yaml:"kind"`
	// Path is the output directory of the local store.
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// S3
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	PathStyle   bool   `yaml:"path_style"`
	CommitTable string `yaml:"commit_table"`
	// MinIO
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Build holds pipeline limits.
type Build struct {
	Workers       int    `yaml:"workers"`
	MemoryLimit   string `yaml:"memory_limit"`
	IOLimit       string `yaml:"io_limit"`
	Verify        bool   `yaml:"verify"`
	KeepManifests int    `yaml:"keep_manifests"`
}

// MemoryLimitBytes returns the parsed memory limit (0 when unset).
func (b Build) MemoryLimitBytes() (int64, error) {
	return parseBytes("memory_limit", b.MemoryLimit)
}

// IOLimitBytesPerSec returns the parsed write throughput limit (0 when unset).
func (b Build) IOLimitBytesPerSec() (int64, error) {
	return parseBytes("io_limit", strings.TrimSuffix(b.IOLimit, "/s"))
}

func parseBytes(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%w: %s: %q is too large", ErrInvalidConfig, field, s)
	}
	return int64(n), nil
}

// Default returns a config that writes Go source to the "gen" directory.
func Default() *Config {
	return &Config{
		Output: Output{
			Format: "go",
			Codec:  codec.Default.Name(),
		},
		Store: Store{
			Kind: StoreLocal,
			Path: "gen",
		},
		Build: Build{
			Workers:       1,
			KeepManifests: 10,
		},
		LogLevel: "info",
	}
}

// Load reads and validates the build file at path. Relative document and
// output paths are resolved against the directory of the build file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates a build file. Unset fields keep their defaults.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the output, store and build sections.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := emit.New(c.Output.Format, emit.Options{}); err != nil {
		invalid("output.format: %v", err)
	}
	if _, err := artifact.ParseCompression(c.Output.Compression); err != nil {
		invalid("output.compression: %v", err)
	}
	if c.Output.Codec != "" {
		if _, ok := codec.ByName(c.Output.Codec); !ok {
			invalid("output.codec: unknown codec %q (want one of %s)", c.Output.Codec, strings.Join(codec.Names(), ", "))
		}
	}

	switch strings.ToLower(c.Store.Kind) {
	case StoreLocal:
		if c.Store.Path == "" {
			invalid("store.path is required for the local store")
		}
	case StoreMemory:
	case StoreS3, StoreMinIO:
		if c.Store.Bucket == "" {
			invalid("store.bucket is required for the %s store", c.Store.Kind)
		}
		if strings.EqualFold(c.Store.Kind, StoreMinIO) && c.Store.Endpoint == "" {
			invalid("store.endpoint is required for the minio store")
		}
	default:
		invalid("store.kind: unknown store %q", c.Store.Kind)
	}

	if c.Build.Workers < 0 {
		invalid("build.workers must not be negative")
	}
	if _, err := c.Build.MemoryLimitBytes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Build.IOLimitBytesPerSec(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Emitter returns the emitter selected by the output section.
func (c *Config) Emitter() (emit.Emitter, error) {
	comp, err := artifact.ParseCompression(c.Output.Compression)
	if err != nil {
		return nil, err
	}
	var cd codec.Codec
	if c.Output.Codec != "" {
		var ok bool
		if cd, ok = codec.ByName(c.Output.Codec); !ok {
			return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidConfig, c.Output.Codec)
		}
	}
	return emit.New(c.Output.Format, emit.Options{
		Compression: comp,
		Codec:       cd,
		Indent:      c.Output.Indent,
		Package:     c.Output.Go.Package,
		Imports:     c.Output.Go.Imports,
		RowType:     c.Output.Go.RowType,
		ColumnType:  c.Output.Go.ColumnType,
		Ordinals:    c.Output.Go.Ordinals,
	})
}

// Resolve returns path relative to the build file directory.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Document is a selected map document.
type Document struct {
	Path string
	Name string
}

// Documents returns the map documents of the build in file order. Wildcard
// entries expand to their matches in lexical order; a wildcard without
// matches yields nothing.
func (c *Config) Documents(fsys fs.FileSystem) ([]Document, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	var docs []Document
	for _, f := range c.Files {
		if !f.IsMap() {
			continue
		}

		path := c.Resolve(f.Path)
		namespace, ok := strings.CutSuffix(f.TypeName, wildcardSuffix)
		if !ok {
			docs = append(docs, Document{Path: path, Name: f.TypeName})
			continue
		}

		matches, err := fsys.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("%w: files: %s: %v", ErrInvalidConfig, f.Path, err)
		}
		for _, m := range matches {
			stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
			docs = append(docs, Document{Path: m, Name: namespace + "." + stem})
		}
	}
	return docs, nil
}

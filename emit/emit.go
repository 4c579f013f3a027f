package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/relpack/artifact"
	"github.com/hupe1980/relpack/codec"
	"github.com/hupe1980/relpack/packed"
)

// Emitter writes an artifact to w.
type Emitter interface {
	// Name returns the format name ("go", "binary", "json").
	Name() string
	// Ext returns the file extension, including the dot.
	Ext() string
	Emit(w io.Writer, art *packed.Artifact) error
}

// Options configures the emitter returned by New. Fields that do not apply to
// the selected format are ignored.
type Options struct {
	// Compression of the bit table for the binary format.
	Compression artifact.Compression
	// Codec for the JSON format. Defaults to codec.Default.
	Codec codec.Codec
	// Indent makes JSON output human-readable.
	Indent bool
	// Package overrides the Go package name derived from the namespace.
	Package string
	// Imports are added to the generated Go file.
	Imports []string
	// RowType and ColumnType name the Go parameter types of Lookup.
	RowType    string
	ColumnType string
	// Ordinals declares the domain enumerations in the generated Go file.
	Ordinals bool
}

// ErrUnsupportedFormat is returned by New for an unknown format name.
type ErrUnsupportedFormat struct {
	Format string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("emit: unsupported format %q", e.Format)
}

// Formats lists the format names accepted by New.
func Formats() []string { return []string{"go", "binary", "json"} }

// New returns the emitter for format.
func New(format string, opts Options) (Emitter, error) {
	switch strings.ToLower(format) {
	case "go", "":
		return &GoSource{
			Package:    opts.Package,
			Imports:    opts.Imports,
			RowType:    opts.RowType,
			ColumnType: opts.ColumnType,
			Ordinals:   opts.Ordinals,
		}, nil
	case "binary", "bin", "rpk":
		return &Binary{Compression: opts.Compression}, nil
	case "json":
		return &JSON{Codec: opts.Codec, Indent: opts.Indent}, nil
	default:
		return nil, &ErrUnsupportedFormat{Format: format}
	}
}

// FileName returns the blob name for art: its simple name plus ext.
func FileName(art *packed.Artifact, e Emitter) string {
	return art.SimpleName() + e.Ext()
}

// Command relpackc compiles relation documents into bit-packed lookup tables.
//
// Usage:
//
//	relpackc -config relpack.yaml
//	relpackc -in Maps/AnimalColor.csv -name colors.AnimalColor -format go -o gen
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/relpack"
	"github.com/hupe1980/relpack/codec"
	"github.com/hupe1980/relpack/config"
	"github.com/hupe1980/relpack/emit"
	"github.com/hupe1980/relpack/internal/fs"
)

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("relpackc", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "build file (YAML)")
		in          = flags.String("in", "", "relation document, or a glob whose matches are each compiled")
		name        = flags.String("name", "", "fully qualified relation name (default: file stem); with a glob, ns.* puts every match in ns")
		format      = flags.String("format", "go", "output format ("+strings.Join(emit.Formats(), ", ")+")")
		out         = flags.String("o", ".", "output directory")
		compression = flags.String("compression", "", "bit table compression for -format binary (none, lz4, zstd)")
		codecName   = flags.String("codec", "", "JSON codec for -format json ("+strings.Join(codec.Names(), ", ")+")")
		indent      = flags.Bool("indent", false, "indent JSON output")
		pkg         = flags.String("package", "", "Go package name (default: last namespace segment)")
		ordinals    = flags.Bool("ordinals", false, "declare the domain enumerations in the Go output")
		verify      = flags.Bool("verify", false, "check every packed table against its document")
		workers     = flags.Int("workers", 0, "concurrent documents (default: build file or 1)")
		logLevel    = flags.String("log-level", "", "log level (debug, info, warn, error)")
		imports     multiFlag
	)
	flags.Var(&imports, "import", "import added to the Go output (repeatable)")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	switch {
	case *configPath != "":
		cfg, err = config.Load(*configPath)
	case *in != "":
		cfg = config.Default()
		files, ferr := inputFiles(fs.Default, *in, *name)
		if ferr != nil {
			fmt.Fprintf(stderr, "relpackc: %v\n", ferr)
			return 2
		}
		cfg.Files = files
		cfg.Output = config.Output{
			Format:      *format,
			Compression: *compression,
			Codec:       *codecName,
			Indent:      *indent,
			Go: config.GoOpts{
				Package:  *pkg,
				Imports:  imports,
				Ordinals: *ordinals,
			},
		}
		cfg.Store = config.Store{Kind: config.StoreLocal, Path: *out}
		err = cfg.Validate()
	default:
		fmt.Fprintln(stderr, "relpackc: one of -config or -in is required")
		flags.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "relpackc: %v\n", err)
		return 1
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := relpack.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "relpackc: log level: %v\n", err)
		return 2
	}

	n := cfg.Build.Workers
	if *workers > 0 {
		n = *workers
	}
	memLimit, _ := cfg.Build.MemoryLimitBytes()
	ioLimit, _ := cfg.Build.IOLimitBytesPerSec()

	c := relpack.New(
		relpack.WithLogger(relpack.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))),
		relpack.WithWorkers(n),
		relpack.WithVerify(*verify || cfg.Build.Verify),
		relpack.WithResourceLimits(relpack.ResourceLimits{
			MemoryLimitBytes:   memLimit,
			IOLimitBytesPerSec: ioLimit,
		}),
	)

	res, err := c.Build(ctx, cfg)
	if res == nil {
		fmt.Fprintf(stderr, "relpackc: %v\n", err)
		return 1
	}

	for _, r := range res.Results {
		for _, d := range r.Diagnostics {
			fmt.Fprintln(stderr, d)
		}
	}
	for _, e := range res.Manifest.Entries {
		fmt.Fprintf(stdout, "%s -> %s (%s)\n", e.Name, e.Blob, humanize.Bytes(uint64(e.Size)))
	}

	var failed *relpack.ErrDocumentFailed
	if errors.As(err, &failed) {
		fmt.Fprintf(stderr, "relpackc: %d of %d document(s) failed\n", len(res.Manifest.Failures), len(res.Results))
		return 1
	}
	return 0
}

// inputFiles turns -in and -name into build file entries. A glob in -in is
// expanded here, one relation per match named after its file stem, unless
// -name is an ns.* wildcard, which the build resolves itself.
func inputFiles(fsys fs.FileSystem, in, name string) ([]config.File, error) {
	file := func(path, typeName string) config.File {
		return config.File{
			Path:       path,
			FileType:   config.FileTypeMap,
			FileFormat: config.FileFormatCsv,
			TypeName:   typeName,
		}
	}

	if !strings.ContainsAny(in, "*?[") || strings.HasSuffix(name, ".*") {
		if name == "" {
			name = stem(in)
		}
		return []config.File{file(in, name)}, nil
	}
	if name != "" {
		return nil, fmt.Errorf("-name %s names one relation but -in %s is a glob; use ns.* instead", name, in)
	}

	matches, err := fsys.Glob(in)
	if err != nil {
		return nil, fmt.Errorf("-in %s: %w", in, err)
	}
	files := make([]config.File, 0, len(matches))
	for _, m := range matches {
		files = append(files, file(m, stem(m)))
	}
	return files, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

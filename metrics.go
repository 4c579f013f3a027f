package relpack

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting build metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordParse is called after each document is parsed.
	// diagnostics is the number of problems found.
	RecordParse(duration time.Duration, diagnostics int)

	// RecordCompile is called after each relation is packed (and verified).
	// cells is the number of true cells, bytes the size of the bit table.
	RecordCompile(cells, bytes int, duration time.Duration, err error)

	// RecordEmit is called after each artifact is written to the store.
	RecordEmit(format string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordParse(time.Duration, int)                 {}
func (NoopMetricsCollector) RecordCompile(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordEmit(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ParseCount        atomic.Int64
	ParseDiagnostics  atomic.Int64
	ParseTotalNanos   atomic.Int64
	CompileCount      atomic.Int64
	CompileErrors     atomic.Int64
	CompileCells      atomic.Int64
	CompileBytes      atomic.Int64
	CompileTotalNanos atomic.Int64
	EmitCount         atomic.Int64
	EmitErrors        atomic.Int64
	EmitBytes         atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(duration time.Duration, diagnostics int) {
	b.ParseCount.Add(1)
	b.ParseDiagnostics.Add(int64(diagnostics))
	b.ParseTotalNanos.Add(duration.Nanoseconds())
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(cells, bytes int, duration time.Duration, err error) {
	b.CompileCount.Add(1)
	b.CompileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompileErrors.Add(1)
		return
	}
	b.CompileCells.Add(int64(cells))
	b.CompileBytes.Add(int64(bytes))
}

// RecordEmit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmit(_ string, bytes int64, _ time.Duration, err error) {
	b.EmitCount.Add(1)
	if err != nil {
		b.EmitErrors.Add(1)
		return
	}
	b.EmitBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:       b.ParseCount.Load(),
		ParseDiagnostics: b.ParseDiagnostics.Load(),
		ParseAvgNanos:    avg(b.ParseTotalNanos.Load(), b.ParseCount.Load()),
		CompileCount:     b.CompileCount.Load(),
		CompileErrors:    b.CompileErrors.Load(),
		CompileCells:     b.CompileCells.Load(),
		CompileBytes:     b.CompileBytes.Load(),
		CompileAvgNanos:  avg(b.CompileTotalNanos.Load(), b.CompileCount.Load()),
		EmitCount:        b.EmitCount.Load(),
		EmitErrors:       b.EmitErrors.Load(),
		EmitBytes:        b.EmitBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount       int64
	ParseDiagnostics int64
	ParseAvgNanos    int64
	CompileCount     int64
	CompileErrors    int64
	CompileCells     int64
	CompileBytes     int64
	CompileAvgNanos  int64
	EmitCount        int64
	EmitErrors       int64
	EmitBytes        int64
}

// Package resource bounds the resources a build may use.
//
// The Controller manages three resource types:
//
//   - Memory: the bit buffers held by concurrent compiles (blocking acquire)
//   - Concurrency: the number of documents compiled at once
//   - IO: the write throughput towards the artifact store (token bucket)
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//
//	if err := rc.AcquireMemory(ctx, int64(len(bits))); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(int64(len(bits)))
//
// All methods are safe for concurrent use, and all of them are no-ops on a
// nil Controller.
package resource

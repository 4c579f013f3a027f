package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/internal/hash"
)

// UploadConfig configures how blobs are written to S3.
type UploadConfig struct {
	// PartSize is the multipart part size. Put sends blobs up to this size in
	// a single PutObject. Default: 8MB
	PartSize int64

	// Concurrency is the number of parts uploaded in parallel. Default: 5
	Concurrency int

	// EnableChecksum asks S3 to verify a CRC32C of every object. Default: true
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of failed multipart uploads instead
	// of aborting them. Default: false
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize >= manager.MinUploadPartSize {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

var errAborted = errors.New("s3: upload aborted")

// uploadWriter streams writes through a pipe into an Uploader running in the
// background. The object only appears once Close returns nil.
type uploadWriter struct {
	pw   *io.PipeWriter
	done chan error

	closed atomic.Bool
	mu     sync.Mutex
	err    error
}

func newUploadWriter(ctx context.Context, uploader *manager.Uploader, bucket, key string, checksum bool) *uploadWriter {
	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        pr,
		ContentType: aws.String(blobstore.ContentType(key)),
	}
	if checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := uploader.Upload(ctx, input)
		// A failed upload must unblock pending writes.
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

// Close ends the body and waits for the upload to complete.
func (w *uploadWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed.Swap(true) {
		return w.err
	}
	if w.err = w.pw.Close(); w.err != nil {
		return w.err
	}
	w.err = <-w.done
	return w.err
}

// Abort fails the body so the uploader gives up. Parts already sent are
// removed unless LeavePartsOnError is set.
func (w *uploadWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed.Swap(true) {
		return nil
	}
	_ = w.pw.CloseWithError(errAborted)
	<-w.done
	w.err = errAborted
	return nil
}

// Sync is a no-op; nothing is durable before Close.
func (w *uploadWriter) Sync() error { return nil }

// putObject uploads data in one request with a CRC32C checksum. A non-nil
// ifNoneMatch makes the write conditional.
func putObject(ctx context.Context, client Client, bucket, key string, data []byte, ifNoneMatch *string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ContentType:    aws.String(blobstore.ContentType(key)),
		ChecksumCRC32C: aws.String(hash.CRC32CBase64(data)),
		IfNoneMatch:    ifNoneMatch,
	})
	return err
}

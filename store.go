package relpack

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/relpack/blobstore"
	"github.com/hupe1980/relpack/blobstore/minio"
	"github.com/hupe1980/relpack/blobstore/s3"
	"github.com/hupe1980/relpack/config"
)

// OpenStore opens the blob store described by the build file.
func OpenStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	sc := cfg.Store
	switch strings.ToLower(sc.Kind) {
	case config.StoreLocal:
		return blobstore.NewLocalStore(cfg.Resolve(sc.Path)), nil
	case config.StoreMemory:
		return blobstore.NewMemoryStore(), nil
	case config.StoreS3:
		opts := []s3.Option{s3.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		if sc.PathStyle {
			opts = append(opts, s3.WithPathStyle())
		}
		if sc.CommitTable != "" {
			store, err := s3.NewWithCommitTable(ctx, sc.Bucket, sc.CommitTable, opts...)
			if err != nil {
				return nil, fmt.Errorf("relpack: open s3 store: %w", err)
			}
			return store, nil
		}
		store, err := s3.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("relpack: open s3 store: %w", err)
		}
		return store, nil
	case config.StoreMinIO:
		store, err := minio.New(minio.Config{
			Endpoint:  sc.Endpoint,
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Region:    sc.Region,
			Secure:    sc.Secure,
		}, sc.Bucket, sc.Prefix)
		if err != nil {
			return nil, fmt.Errorf("relpack: open minio store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: store.kind: unknown store %q", config.ErrInvalidConfig, sc.Kind)
	}
}

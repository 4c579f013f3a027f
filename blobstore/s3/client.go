package s3

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.HeadObjectAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type options struct {
	prefix    string
	region    string
	endpoint  string
	pathStyle bool
	upload    UploadConfig
	client    Client
}

// Option configures New.
type Option func(*options)

// WithPrefix prepends prefix to all keys.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the shared AWS config.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint, e.g. LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithPathStyle enables path-style addressing.
func WithPathStyle() Option {
	return func(o *options) { o.pathStyle = true }
}

// WithUploadConfig overrides DefaultUploadConfig.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

// WithClient uses client instead of one built from the shared AWS config.
func WithClient(client Client) Option {
	return func(o *options) { o.client = client }
}

func loadOptions(opts []Option) options {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func loadAWSConfig(ctx context.Context, o options) (aws.Config, error) {
	var cfgOpts []func(*config.LoadOptions) error
	if o.region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(o.region))
	}
	return config.LoadDefaultConfig(ctx, cfgOpts...)
}

func newClient(cfg aws.Config, o options) *s3.Client {
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		so.UsePathStyle = o.pathStyle
	})
}

// New creates a Store for bucket using the shared AWS configuration.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	o := loadOptions(opts)
	client := o.client
	if client == nil {
		cfg, err := loadAWSConfig(ctx, o)
		if err != nil {
			return nil, err
		}
		client = newClient(cfg, o)
	}
	return newStore(client, bucket, o), nil
}

// NewWithCommitTable creates a DDBCommitStore for bucket whose CURRENT pointer
// lives in the DynamoDB table.
func NewWithCommitTable(ctx context.Context, bucket, table string, opts ...Option) (*DDBCommitStore, error) {
	o := loadOptions(opts)
	cfg, err := loadAWSConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	client := o.client
	if client == nil {
		client = newClient(cfg, o)
	}
	store := newStore(client, bucket, o)
	return NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), table, store.BaseURI()), nil
}

// isNotFound reports whether err is an S3 "missing object" error.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// isConflict reports whether err is a failed conditional write.
func isConflict(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}

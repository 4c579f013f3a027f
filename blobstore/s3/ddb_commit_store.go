package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/relpack/blobstore"
)

// CurrentName is the blob name whose content is kept in DynamoDB.
const CurrentName = "CURRENT"

// Commit table attribute names.
const (
	attrStore     = "base_uri"
	attrSeq       = "version"
	attrManifest  = "manifest_path"
	attrCommitted = "committed_at"
)

// ErrConcurrentModification is returned when another build committed the
// same CURRENT sequence number first. It matches blobstore.ErrConflict.
var ErrConcurrentModification = fmt.Errorf("s3: concurrent commit: %w", blobstore.ErrConflict)

// DDBClient is the subset of the DynamoDB API the commit store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore is an S3 Store whose CURRENT pointer lives in a DynamoDB
// table. Every other blob goes to S3 unchanged.
//
// Each commit appends an item with the next sequence number under a
// conditional write, so two builds racing on the same prefix cannot both move
// CURRENT. The table doubles as a commit history.
//
// Table schema (partition key base_uri, sort key version):
//
//	aws dynamodb create-table \
//	  --table-name relpack-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store

	ddb   DDBClient
	table string
	key   string
	now   func() time.Time
}

// Commit is one row of the commit table.
type Commit struct {
	Seq         uint64
	Manifest    string
	CommittedAt time.Time
}

// NewDDBCommitStore wraps store. baseURI ("s3://bucket/prefix/") partitions
// the table so several stores can share it.
func NewDDBCommitStore(store *Store, ddb DDBClient, table, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		Store: store,
		ddb:   ddb,
		table: table,
		key:   baseURI,
		now:   time.Now,
	}
}

// Open reads CURRENT from the newest commit and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.Store.Open(ctx, name)
	}
	c, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.NewMemoryBlob([]byte(c.Manifest)), nil
}

// Put commits CURRENT through DynamoDB and writes everything else to S3.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentName {
		return s.Store.Put(ctx, name, data)
	}
	c, err := s.Latest(ctx)
	if err != nil {
		return err
	}
	var seq uint64 = 1
	if c != nil {
		seq = c.Seq + 1
	}
	return s.commit(ctx, seq, string(data))
}

// Latest returns the newest commit, or nil when nothing was committed yet.
func (s *DDBCommitStore) Latest(ctx context.Context) (*Commit, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String(attrStore + " = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.key},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: query commit table %s: %w", s.table, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	return decodeCommit(out.Items[0])
}

func (s *DDBCommitStore) commit(ctx context.Context, seq uint64, manifest string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrStore:     &types.AttributeValueMemberS{Value: s.key},
			attrSeq:       &types.AttributeValueMemberN{Value: strconv.FormatUint(seq, 10)},
			attrManifest:  &types.AttributeValueMemberS{Value: manifest},
			attrCommitted: &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + attrSeq + ")"),
	})
	var condErr *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &condErr):
		return ErrConcurrentModification
	case err != nil:
		return fmt.Errorf("s3: commit %s to %s: %w", manifest, s.table, err)
	}
	return nil
}

func decodeCommit(item map[string]types.AttributeValue) (*Commit, error) {
	seqAttr, ok := item[attrSeq].(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("s3: commit item has no numeric %s", attrSeq)
	}
	manifestAttr, ok := item[attrManifest].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("s3: commit item has no %s", attrManifest)
	}
	seq, err := strconv.ParseUint(seqAttr.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("s3: commit %s: %w", attrSeq, err)
	}

	c := &Commit{Seq: seq, Manifest: manifestAttr.Value}
	// Commits written before committed_at existed leave it zero.
	if ts, ok := item[attrCommitted].(*types.AttributeValueMemberS); ok {
		c.CommittedAt, _ = time.Parse(time.RFC3339Nano, ts.Value)
	}
	return c, nil
}

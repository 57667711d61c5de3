// Package enrich fetches blob bodies for result entities from a
// content-addressed object store, invoked by the HTTP handler after the
// driver has returned its ranked results — never by the core driver itself.
// Grounded on antflydb-antfly-go's libaf/s3 client construction and
// docsaf.S3Source's bounded-concurrency object fetch.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

// Error reports a failure within the enrichment store, independent of any
// individual object's fetch failure (which is recorded in that object's
// Body.Err, per Fetch's partial-failure contract).
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string { return e.Kind + ": " + e.Message }

const (
	KindConfig = "config"
	KindBucket = "bucket"
)

// Config names the object store connection and the entity-ID-to-object-key
// mapping.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	// Prefix is prepended to every entity identifier to form the object key.
	Prefix string
	// Concurrency bounds the number of in-flight GetObject calls per Fetch
	// call. Zero selects DefaultConcurrency.
	Concurrency int
}

// DefaultConcurrency mirrors the teacher's S3Source default.
const DefaultConcurrency = 5

// Store fetches object bodies from an S3-compatible bucket, keyed by entity
// identifier.
type Store struct {
	client      *minio.Client
	bucket      string
	prefix      string
	concurrency int
}

// NewStore builds a Store from cfg, verifying the target bucket exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, Error{Kind: KindConfig, Message: "endpoint and bucket are required"}
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("enrich: creating object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("enrich: checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, Error{Kind: KindBucket, Message: fmt.Sprintf("bucket %q does not exist", cfg.Bucket)}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, concurrency: concurrency}, nil
}

// Body is one entity's enrichment result. Err is set, and Content left nil,
// when that single entity's object could not be fetched — a per-entity
// failure never aborts the rest of the batch.
type Body struct {
	EntityID    string
	Content     []byte
	ContentType string
	Err         error
}

func (s *Store) objectKey(entityID string) string {
	return s.prefix + entityID
}

// truncate bounds ids to at most limit entries, preserving order. A
// non-positive limit means unbounded.
func truncate(ids []string, limit int) []string {
	if limit > 0 && limit < len(ids) {
		return ids[:limit]
	}
	return ids
}

// Fetch retrieves the object body for each of ids, bounded to at most limit
// entries (limit <= 0 means unbounded) and at most s.concurrency concurrent
// GetObject calls. The returned slice preserves the order of ids truncated
// to limit.
func (s *Store) Fetch(ctx context.Context, ids []string, limit int) ([]Body, error) {
	ids = truncate(ids, limit)

	results := make([]Body, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.fetchOne(gctx, id)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) fetchOne(ctx context.Context, entityID string) Body {
	key := s.objectKey(entityID)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Body{EntityID: entityID, Err: fmt.Errorf("enrich: opening %q: %w", key, err)}
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return Body{EntityID: entityID, Err: fmt.Errorf("enrich: stat %q: %w", key, err)}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return Body{EntityID: entityID, Err: fmt.Errorf("enrich: reading %q: %w", key, err)}
	}

	return Body{EntityID: entityID, Content: buf.Bytes(), ContentType: info.ContentType}
}

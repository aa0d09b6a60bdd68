package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"scripture/internal/logger"
)

// GCSStore implements Store on a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	log    zerolog.Logger
}

// NewGCSStore creates a client for bucket.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name must be provided")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return NewGCSStoreWithClient(client, bucket), nil
}

// NewGCSStoreWithClient wraps an existing client.
func NewGCSStoreWithClient(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: bucket,
		log:    logger.WithComponent("gcs"),
	}
}

// Bucket implements Store.
func (g *GCSStore) Bucket() string {
	return g.bucket
}

// List implements Store.
func (g *GCSStore) List(ctx context.Context, prefix, delimiter string) (Listing, error) {
	var listing Listing
	query := &storage.Query{Prefix: prefix, Delimiter: delimiter}
	if err := query.SetAttrSelection([]string{"Name", "Size", "Updated"}); err != nil {
		return listing, fmt.Errorf("failed to set attribute selection: %w", err)
	}

	it := g.client.Bucket(g.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return listing, fmt.Errorf("failed to list gs://%s/%s: %w", g.bucket, prefix, err)
		}
		if attrs.Prefix != "" {
			listing.Prefixes = append(listing.Prefixes, Prefix{Name: attrs.Prefix, Key: Normalize(attrs.Prefix)})
			continue
		}
		listing.Objects = append(listing.Objects, NewObject(attrs.Name, attrs.Size, attrs.Updated))
	}

	g.log.Debug().
		Str("prefix", prefix).
		Str("delimiter", delimiter).
		Int("objects", len(listing.Objects)).
		Int("prefixes", len(listing.Prefixes)).
		Msg("Listed objects")
	return listing, nil
}

// Copy implements Store using a server-side rewrite.
func (g *GCSStore) Copy(ctx context.Context, src, dst string) error {
	bkt := g.client.Bucket(g.bucket)
	if _, err := bkt.Object(dst).CopierFrom(bkt.Object(src)).Run(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("copy %s: %w", src, ErrNotFound)
		}
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// Delete implements Store.
func (g *GCSStore) Delete(ctx context.Context, name string) error {
	if err := g.client.Bucket(g.bucket).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Open implements Store.
func (g *GCSStore) Open(ctx context.Context, name string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", g.bucket, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", g.bucket, name, err)
	}
	return data, nil
}

// Close closes the underlying client.
func (g *GCSStore) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

var _ Store = (*GCSStore)(nil)

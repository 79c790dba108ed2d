package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"gocloud.dev/blob"
)

// Bucket is a Sink backed by a gocloud.dev blob bucket.
type Bucket struct {
	bucket *blob.Bucket
}

// Open opens the bucket identified by a gocloud.dev bucket URL.
// The caller must Close the returned Bucket.
func Open(ctx context.Context, bucketURL string) (*Bucket, error) {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return &Bucket{bucket: bkt}, nil
}

// NewBucket wraps an already-open blob bucket (for testing).
func NewBucket(bkt *blob.Bucket) *Bucket {
	return &Bucket{bucket: bkt}
}

// Put streams r into the bucket under key. The TTL hint is recorded as object
// metadata; the write is aborted if the stream or the backend fails.
func (b *Bucket) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error {
	writerOpts := &blob.WriterOptions{
		ContentType: opts.ContentType,
	}
	if opts.TTL > 0 {
		writerOpts.Metadata = map[string]string{
			"ttl-seconds": strconv.Itoa(int(opts.TTL / time.Second)),
		}
	}

	// Closing a blob writer commits the object, so aborting a partial write
	// requires cancelling the writer's context first.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.bucket.NewWriter(writeCtx, key, writerOpts)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}

	return nil
}

// AccessURL returns a signed URL for key, valid for expiry.
func (b *Bucket) AccessURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := b.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{Expiry: expiry})
	if err != nil {
		return "", fmt.Errorf("sign URL for %s: %w", key, err)
	}
	return url, nil
}

// Close releases the underlying bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}

// Package storage provides the blob sink that archives are streamed into.
//
// The sink is storage-agnostic via gocloud.dev/blob: the binary decides which
// drivers to link (s3, gcs, local files) through blank imports, and the
// bucket is selected with a URL such as "s3://bundles?region=eu-central-1".
package storage

import (
	"context"
	"io"
	"time"
)

// PutOptions carries upload metadata.
type PutOptions struct {
	// ContentType of the stored object.
	ContentType string

	// TTL is a lifetime hint recorded on the object. Enforcement (lifecycle
	// rules, janitor jobs) is the storage backend's responsibility.
	TTL time.Duration
}

// Sink stores byte streams under keys and hands out time-limited access URLs.
type Sink interface {
	// Put consumes r incrementally and stores it under key. It returns once
	// the full stream has been persisted.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error

	// AccessURL returns a URL granting direct download of key until expiry.
	AccessURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

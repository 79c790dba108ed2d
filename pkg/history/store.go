// Package history keeps a short redis-backed record of produced archives.
//
// The store is strictly best-effort bookkeeping for operators (what was
// bundled, when, under which key). It never feeds back into the pipeline:
// product-image lookups are memoized per invocation only and are not
// persisted here or anywhere else.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// listKey is the redis list holding recent records, newest first.
	listKey = "bundler:history"

	// maxRecords bounds the list length.
	maxRecords = 100

	// retention is how long the list survives without new bundles.
	retention = 30 * 24 * time.Hour
)

// Record describes one produced archive.
type Record struct {
	// Key is the storage key of the archive.
	Key string `json:"key"`

	// Images is the number of archive entries.
	Images int `json:"images"`

	// RequestType is the selection mode ("date" or "order_range").
	RequestType string `json:"request_type"`

	// Detail echoes the request parameters (date or range).
	Detail string `json:"detail"`

	// CreatedAt is when the archive was produced.
	CreatedAt time.Time `json:"created_at"`
}

// Store records produced archives in redis.
type Store struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewStore creates a history store with a redis backend.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis:  redisClient,
		logger: log.With().Str("component", "history").Logger(),
	}
}

// Add prepends a record to the history list and trims it to maxRecords.
func (s *Store) Add(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, listKey, data)
	pipe.LTrim(ctx, listKey, 0, maxRecords-1)
	pipe.Expire(ctx, listKey, retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push: %w", err)
	}

	s.logger.Debug().
		Str("key", rec.Key).
		Int("images", rec.Images).
		Msg("Recorded bundle")

	return nil
}

// Recent returns up to n records, newest first. Corrupt entries are skipped.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 || n > maxRecords {
		n = maxRecords
	}

	raw, err := s.redis.LRange(ctx, listKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.logger.Warn().Err(err).Msg("Skipping corrupt history record")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

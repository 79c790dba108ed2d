// Package bundle orchestrates the order-to-archive pipeline: fetch open
// orders, resolve line items to image URLs, stream the images into an
// uploaded zip archive.
package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/merchkit/image-bundler/pkg/archive"
	"github.com/merchkit/image-bundler/pkg/history"
	"github.com/merchkit/image-bundler/pkg/shop"
)

// OrderSource fetches open orders. *shop.Client implements it.
type OrderSource interface {
	FetchOrdersByDate(ctx context.Context, date time.Time) ([]shop.Order, error)
	FetchOrdersByRange(ctx context.Context, start, end int) ([]shop.Order, error)
}

// ImageResolver expands orders into an ordered image URL sequence.
// *resolver.Resolver implements it.
type ImageResolver interface {
	Resolve(ctx context.Context, orders []shop.Order) []string
}

// Archiver turns a URL sequence into an uploaded archive.
// *archive.Streamer implements it.
type Archiver interface {
	Stream(ctx context.Context, urls []string) (*archive.Result, error)
}

// HistoryRecorder records produced archives. *history.Store implements it.
type HistoryRecorder interface {
	Add(ctx context.Context, rec history.Record) error
}

// Config wires the pipeline stages together.
type Config struct {
	Orders   OrderSource
	Resolver ImageResolver
	Archiver Archiver

	// History is optional; nil disables bundle records.
	History HistoryRecorder
}

// Service runs the pipeline for one request at a time. All per-invocation
// state (the product cache, the archive stream) lives inside the stage calls,
// so a single Service is safe to share across concurrent requests.
type Service struct {
	config Config
	logger zerolog.Logger
}

// Response is the invocation result. DownloadURL is empty when no archive was
// produced (no matching orders or no resolvable images).
type Response struct {
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// NewService creates a pipeline service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Orders == nil || cfg.Resolver == nil || cfg.Archiver == nil {
		return nil, fmt.Errorf("orders, resolver and archiver are required")
	}
	return &Service{
		config: cfg,
		logger: log.With().Str("component", "bundle-service").Logger(),
	}, nil
}

// Run executes the pipeline for one request.
func (s *Service) Run(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	s.logger.Info().
		Str("type", req.Type).
		Str("detail", req.Detail()).
		Msg("Bundle request started")

	var orders []shop.Order
	var err error

	switch req.Type {
	case TypeDate:
		date, parseErr := req.ParsedDate()
		if parseErr != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidRequest, parseErr)
		}
		orders, err = s.config.Orders.FetchOrdersByDate(ctx, date)
	case TypeOrderRange:
		orders, err = s.config.Orders.FetchOrdersByRange(ctx, req.Start, req.End)
	}
	if err != nil {
		return Response{}, err
	}

	if len(orders) == 0 {
		return Response{
			Message: fmt.Sprintf("No unfulfilled orders found for %s", req.Detail()),
		}, nil
	}

	urls := s.config.Resolver.Resolve(ctx, orders)
	if len(urls) == 0 {
		return Response{
			Message: fmt.Sprintf("Found %d unfulfilled orders for %s but no product images to bundle", len(orders), req.Detail()),
		}, nil
	}

	result, err := s.config.Archiver.Stream(ctx, urls)
	if err != nil {
		return Response{}, err
	}

	s.recordHistory(ctx, req, result)

	s.logger.Info().
		Str("key", result.Key).
		Int("images", result.Entries).
		Int("orders", len(orders)).
		Msg("Bundle request completed")

	return Response{
		Message:     fmt.Sprintf("Bundled %d images from %d orders", result.Entries, len(orders)),
		DownloadURL: result.URL,
	}, nil
}

// recordHistory is best effort: a failed write never affects the response.
func (s *Service) recordHistory(ctx context.Context, req Request, result *archive.Result) {
	if s.config.History == nil {
		return
	}

	err := s.config.History.Add(ctx, history.Record{
		Key:         result.Key,
		Images:      result.Entries,
		RequestType: req.Type,
		Detail:      req.Detail(),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record bundle history")
	}
}

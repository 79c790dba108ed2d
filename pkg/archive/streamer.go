// Package archive downloads image URLs and streams them as a compressed zip
// into a storage sink.
//
// Two activities run concurrently and are joined at completion: the producer
// downloads each URL in sequence and appends successes to the zip writer, and
// the consumer drains the resulting byte stream into the sink. The coupling
// is an io.Pipe, so archive bytes reach the sink while later images are still
// being downloaded and the full archive is never buffered in memory.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/merchkit/image-bundler/pkg/storage"
)

// Prometheus metrics for archive construction.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bundler_downloads_total",
		Help: "Total image downloads by result",
	}, []string{"result"}) // "success", "failure"

	archiveBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bundler_archive_source_bytes_total",
		Help: "Total uncompressed image bytes written into archives",
	})

	archivesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bundler_archives_total",
		Help: "Total archives produced and uploaded",
	})
)

// Config holds the streamer configuration.
type Config struct {
	// Sink receives the archive stream (REQUIRED).
	Sink storage.Sink

	// HTTPClient used for image downloads. Defaults to a client with
	// DownloadTimeout applied.
	HTTPClient *http.Client

	// DownloadTimeout is the per-image deadline.
	DownloadTimeout time.Duration

	// ObjectTTL is the lifetime requested for the stored archive and its
	// access URL.
	ObjectTTL time.Duration
}

// DefaultConfig returns a safe default configuration for the given sink.
func DefaultConfig(sink storage.Sink) Config {
	return Config{
		Sink:            sink,
		DownloadTimeout: 30 * time.Second,
		ObjectTTL:       900 * time.Second,
	}
}

// Streamer builds zip archives from image URLs and uploads them as they are
// produced.
type Streamer struct {
	httpClient *http.Client
	sink       storage.Sink
	config     Config
	logger     zerolog.Logger
}

// Result describes a produced archive.
type Result struct {
	// Key is the storage key of the uploaded archive.
	Key string

	// URL is the time-limited access URL.
	URL string

	// Entries is the number of images that made it into the archive.
	Entries int
}

// New creates a new streamer.
func New(cfg Config) (*Streamer, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	if cfg.ObjectTTL <= 0 {
		cfg.ObjectTTL = 900 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.DownloadTimeout}
	}

	return &Streamer{
		httpClient: httpClient,
		sink:       cfg.Sink,
		config:     cfg,
		logger:     log.With().Str("component", "archive-streamer").Logger(),
	}, nil
}

// Stream downloads urls strictly in order, appends each success to the
// archive as image-<k>.jpg (k is the 1-based position in urls), and returns
// the access URL of the uploaded archive. Failed downloads are logged and
// skipped; they produce no entry and do not abort the run. Stream returns
// only after both the archive is finalized and the upload has completed.
func (s *Streamer) Stream(ctx context.Context, urls []string) (*Result, error) {
	key := fmt.Sprintf("%s-%s.zip", time.Now().UTC().Format("2006-01-02"), uuid.NewString())

	pr, pw := io.Pipe()

	// Consumer: drain the pipe into the sink. Closing the read side on
	// failure unblocks the producer's pending writes.
	uploadDone := make(chan error, 1)
	go func() {
		err := s.sink.Put(ctx, key, pr, storage.PutOptions{
			ContentType: "application/zip",
			TTL:         s.config.ObjectTTL,
		})
		if err != nil {
			pr.CloseWithError(err)
		}
		uploadDone <- err
	}()

	// Producer: sequential downloads, zip entries in input order.
	entries, produceErr := s.produce(ctx, pw, urls)

	if produceErr != nil {
		// Propagate to the consumer so the partial upload is aborted.
		pw.CloseWithError(produceErr)
	} else {
		produceErr = pw.Close()
	}

	uploadErr := <-uploadDone

	if produceErr != nil {
		return nil, fmt.Errorf("build archive: %w", produceErr)
	}
	if uploadErr != nil {
		return nil, fmt.Errorf("upload archive: %w", uploadErr)
	}

	accessURL, err := s.sink.AccessURL(ctx, key, s.config.ObjectTTL)
	if err != nil {
		return nil, err
	}

	archivesTotal.Inc()
	s.logger.Info().
		Str("key", key).
		Int("entries", entries).
		Int("requested", len(urls)).
		Msg("Archive uploaded")

	return &Result{Key: key, URL: accessURL, Entries: entries}, nil
}

// produce writes the zip stream to w and returns the number of entries.
func (s *Streamer) produce(ctx context.Context, w io.Writer, urls []string) (int, error) {
	zw := zip.NewWriter(w)

	// Deflate at maximum compression.
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entries := 0
	for i, url := range urls {
		data, err := s.download(ctx, url)
		if err != nil {
			downloadsTotal.WithLabelValues("failure").Inc()
			s.logger.Warn().
				Err(err).
				Str("url", url).
				Int("position", i+1).
				Msg("Image download failed, skipping entry")
			continue
		}
		downloadsTotal.WithLabelValues("success").Inc()

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     fmt.Sprintf("image-%d.jpg", i+1),
			Method:   zip.Deflate,
			Modified: time.Now().UTC(),
		})
		if err != nil {
			return entries, fmt.Errorf("create entry %d: %w", i+1, err)
		}
		if _, err := entry.Write(data); err != nil {
			return entries, fmt.Errorf("write entry %d: %w", i+1, err)
		}

		archiveBytesTotal.Add(float64(len(data)))
		entries++

		s.logger.Debug().
			Str("url", url).
			Int("position", i+1).
			Int("bytes", len(data)).
			Msg("Archived image")
	}

	if err := zw.Close(); err != nil {
		return entries, fmt.Errorf("finalize archive: %w", err)
	}

	return entries, nil
}

// download fetches one image fully into memory so that a mid-stream failure
// never leaves a truncated archive entry behind.
func (s *Streamer) download(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.config.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

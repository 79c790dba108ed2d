package shop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// accessTokenHeader carries the static Admin API token on every request.
const accessTokenHeader = "X-Shopify-Access-Token"

// Prometheus metrics for shop API operations.
var (
	shopRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bundler_shop_requests_total",
		Help: "Total shop API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	shopRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bundler_shop_request_duration_seconds",
		Help:    "Shop API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	shopErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bundler_shop_errors_total",
		Help: "Total shop API errors by class",
	}, []string{"class"})
)

// Client is the shop Admin API client.
type Client struct {
	httpClient *http.Client
	config     Config
	retry      RetryConfig
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the Admin API base, e.g. "https://acme.myshopify.com/admin/api/2024-01".
	BaseURL string

	// AccessToken is the static Admin API access token (REQUIRED).
	AccessToken string

	// PageSize is the requested page size for order listings (API max: 250).
	PageSize int

	// RequestTimeout is the per-call deadline applied to every request.
	RequestTimeout time.Duration

	// Retry configures backoff behaviour for retriable failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, accessToken string) Config {
	return Config{
		BaseURL:        baseURL,
		AccessToken:    accessToken,
		PageSize:       250,
		RequestTimeout: 30 * time.Second,
		Retry:          DefaultRetryConfig(),
	}
}

// New creates a new shop client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	if cfg.PageSize <= 0 || cfg.PageSize > 250 {
		return nil, fmt.Errorf("page size must be in 1..250 (got %d)", cfg.PageSize)
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "shop-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
		retry:  retry,
		logger: logger,
	}, nil
}

// get performs an authenticated GET against an absolute URL and returns the
// body and response headers. Retriable failures are retried with backoff; any
// remaining non-success response is returned as *APIError.
func (c *Client) get(req *http.Request) ([]byte, http.Header, error) {
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		shopRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set(accessTokenHeader, c.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing shop request")

	var body []byte
	var header http.Header

	retryErr := retryWithBackoff(req.Context(), c.retry, func() error {
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			shopErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			shopRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			shopErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response body: %w", readErr)
		}

		shopRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := classify(resp.StatusCode)
			shopErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Shop request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Body:       strings.TrimSpace(string(data)),
			}
		}

		body = data
		header = resp.Header
		return nil
	})
	if retryErr != nil {
		return nil, nil, retryErr
	}

	return body, header, nil
}

// getURL builds a request for an absolute URL and executes it.
func (c *Client) getURL(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	return c.get(req)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

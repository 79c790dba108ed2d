package shop

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/merchkit/image-bundler/internal/testutil"
)

// fastRetry keeps retry-path tests quick.
func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func newTestClient(t *testing.T, mock *testutil.MockShop) *Client {
	t.Helper()

	cfg := DefaultConfig(mock.URL(), "test-token")
	cfg.Retry = fastRetry()

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      DefaultConfig("https://acme.myshopify.com/admin/api/2024-01", "token"),
			expectError: false,
		},
		{
			name:        "missing base URL",
			config:      Config{AccessToken: "token", PageSize: 250},
			expectError: true,
			errorMsg:    "base URL is required",
		},
		{
			name:        "missing access token",
			config:      Config{BaseURL: "https://acme.myshopify.com", PageSize: 250},
			expectError: true,
			errorMsg:    "access token is required",
		},
		{
			name:        "page size too large",
			config:      Config{BaseURL: "https://acme.myshopify.com", AccessToken: "token", PageSize: 500},
			expectError: true,
			errorMsg:    "page size must be in 1..250 (got 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestGet_SendsAccessToken(t *testing.T) {
	mock := testutil.NewMockShop()
	defer mock.Close()

	mock.SetProduct(42, http.StatusOK, `{"product": {"id": 42}}`)

	c := newTestClient(t, mock)

	if _, err := c.Product(context.Background(), 42); err != nil {
		t.Fatalf("Product() failed: %v", err)
	}

	if got := mock.LastRequestHeader.Get("X-Shopify-Access-Token"); got != "test-token" {
		t.Errorf("Access token header = %q, want %q", got, "test-token")
	}
	if got := mock.LastRequestHeader.Get("Accept"); got != "application/json" {
		t.Errorf("Accept header = %q, want %q", got, "application/json")
	}
}

func TestGet_Retries5xx(t *testing.T) {
	mock := testutil.NewMockShop()
	defer mock.Close()

	attempts := 0
	mock.SetHandler("/products/7.json", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"errors": "server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"product": {"id": 7}}`))
	})

	c := newTestClient(t, mock)

	product, err := c.Product(context.Background(), 7)
	if err != nil {
		t.Fatalf("Product() failed after retries: %v", err)
	}
	if product.ID != 7 {
		t.Errorf("Product ID = %d, want 7", product.ID)
	}
	if attempts != 3 {
		t.Errorf("Attempts = %d, want 3 (2 failures + 1 success)", attempts)
	}
}

func TestGet_NoRetry4xx(t *testing.T) {
	mock := testutil.NewMockShop()
	defer mock.Close()

	mock.SetProduct(9, http.StatusNotFound, `{"errors": "Not Found"}`)

	c := newTestClient(t, mock)

	_, err := c.Product(context.Background(), 9)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusNotFound)
	}
	if apiErr.ErrorClass != ErrorClassClient {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassClient)
	}

	if mock.PathCount("/products/9.json") != 1 {
		t.Errorf("Requests = %d, want 1 (no retries for 4xx)", mock.PathCount("/products/9.json"))
	}
}

func TestGet_RetryExhausted(t *testing.T) {
	mock := testutil.NewMockShop()
	defer mock.Close()

	mock.SetProduct(3, http.StatusBadGateway, `{"errors": "upstream down"}`)

	c := newTestClient(t, mock)

	_, err := c.Product(context.Background(), 3)
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got: %v", err)
	}

	// The original upstream failure stays visible through the wrap.
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError in chain, got: %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusBadGateway)
	}

	if mock.PathCount("/products/3.json") != 3 {
		t.Errorf("Requests = %d, want 3 (all attempts)", mock.PathCount("/products/3.json"))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{404, ErrorClassClient},
		{400, ErrorClassClient},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{200, ""},
	}

	for _, tt := range tests {
		if got := classify(tt.status); got != tt.want {
			t.Errorf("classify(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

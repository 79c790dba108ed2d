// Package testutil provides testing utilities for the image bundler.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockShop is a configurable mock of the shop Admin API for testing.
type MockShop struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount       int
	pathCounts         map[string]int
	ordersPageRequests []int
	LastRequestHeader  http.Header
}

// NewMockShop creates a new mock shop server.
func NewMockShop() *MockShop {
	mock := &MockShop{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.pathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors": "Not Found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockShop) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockShop) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockShop) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.pathCounts = make(map[string]int)
	m.ordersPageRequests = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockShop) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetJSONResponse configures a fixed JSON response for a path.
func (m *MockShop) SetJSONResponse(path string, statusCode int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if body != "" {
			_, _ = w.Write([]byte(body))
		}
	})
}

// SetOrdersPages serves the given JSON page bodies from /orders.json with
// Link rel="next" headers chaining them together. The first request (no
// page_info parameter) serves page 0, ?page_info=1 serves page 1, and so on;
// the last page carries no next link.
func (m *MockShop) SetOrdersPages(pages []string) {
	m.SetHandler("/orders.json", func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if cursor := r.URL.Query().Get("page_info"); cursor != "" {
			_, _ = fmt.Sscanf(cursor, "%d", &page)
		}

		m.mu.Lock()
		m.ordersPageRequests = append(m.ordersPageRequests, page)
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if page < 0 || page >= len(pages) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"orders": []}`))
			return
		}

		if page+1 < len(pages) {
			next := fmt.Sprintf("%s/orders.json?page_info=%d", m.URL(), page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(pages[page]))
	})
}

// SetProduct configures the single-product endpoint for id.
func (m *MockShop) SetProduct(id int64, statusCode int, body string) {
	m.SetJSONResponse(fmt.Sprintf("/products/%d.json", id), statusCode, body)
}

// SetImage serves raw bytes (an "image") from the given path.
func (m *MockShop) SetImage(path string, data []byte) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

// GetRequestCount returns the total number of requests made to the server.
func (m *MockShop) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// OrdersPageRequests returns the page indices served by SetOrdersPages, in
// request order.
func (m *MockShop) OrdersPageRequests() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.ordersPageRequests...)
}

// PathCount returns how many requests hit a specific path.
func (m *MockShop) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

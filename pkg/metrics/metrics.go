// Package metrics documents the Prometheus metrics exported by the bundler.
// All metrics are defined in their respective packages (shop, resolver,
// archive) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the bundler.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Shop API Metrics (pkg/shop):
//   - bundler_shop_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - bundler_shop_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - bundler_shop_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - bundler_shop_retries_total{error_class} (Counter): Retry attempts by error class
//   - bundler_shop_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - bundler_shop_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Resolution Metrics (pkg/resolver):
//   - bundler_product_lookups_total{result} (Counter): Product lookups by result (image, no_image, error)
//   - bundler_product_cache_hits_total (Counter): Line items served from the per-invocation cache
//
// Archive Metrics (pkg/archive):
//   - bundler_downloads_total{result} (Counter): Image downloads by result (success, failure)
//   - bundler_archive_source_bytes_total (Counter): Uncompressed image bytes archived
//   - bundler_archives_total (Counter): Archives produced and uploaded
//
// Example Prometheus Queries:
//
//   # Product cache hit rate
//   rate(bundler_product_cache_hits_total[5m]) /
//   (rate(bundler_product_cache_hits_total[5m]) + rate(bundler_product_lookups_total[5m]))
//
//   # Download failure rate
//   rate(bundler_downloads_total{result="failure"}[5m]) / rate(bundler_downloads_total[5m])
//
//   # P95 shop API latency
//   histogram_quantile(0.95, rate(bundler_shop_request_duration_seconds_bucket[5m]))

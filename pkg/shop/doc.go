// Package shop provides the Admin API client for the upstream store.
//
// The client covers the two resources the bundler needs:
//
//   - open (unfulfilled) orders, fetched either for a single calendar day or
//     for an inclusive order-number range via cursor pagination
//   - single product lookups, used to resolve line items to image URLs
//
// All requests carry the static access-token header and a per-call deadline.
// Retriable failures (5xx, 429, network) are retried with exponential backoff
// and jitter; 4xx responses are returned immediately as *APIError.
//
// Pagination follows the Link response header: the entry tagged rel="next"
// contains the absolute URL of the next page in angle brackets. The
// order-number range fetch walks pages sequentially and stops early once a
// page's last order number falls below the requested range, which relies on
// the API's default newest-first ordering.
package shop

// Package resolver maps order line items to product image URLs.
//
// Product lookups are memoized per invocation: each distinct product id is
// fetched at most once per Resolve call, including negative results for
// products without an image. The cache is local to the call and never shared,
// so concurrent invocations cannot observe each other's lookups.
package resolver

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/merchkit/image-bundler/pkg/shop"
)

// Prometheus metrics for product resolution.
var (
	productLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bundler_product_lookups_total",
		Help: "Total product lookups by result",
	}, []string{"result"}) // "image", "no_image", "error"

	productCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bundler_product_cache_hits_total",
		Help: "Total line items served from the per-invocation product cache",
	})
)

// ProductLookup fetches a single product. *shop.Client implements it.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (*shop.Product, error)
}

// Resolver expands orders into a flat, ordered sequence of image URLs.
type Resolver struct {
	products ProductLookup
	logger   zerolog.Logger
}

// New creates a resolver backed by the given product lookup.
func New(products ProductLookup) *Resolver {
	return &Resolver{
		products: products,
		logger:   log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns one URL entry per unit of quantity per resolvable line
// item, in (order, line item) iteration order. Line items without a product
// id are skipped. A failed lookup loses only that item's contribution: the
// failure is logged and not cached, so a later occurrence of the same product
// id is looked up again. Products that resolve without an image are cached
// negatively and contribute nothing on every occurrence.
func (r *Resolver) Resolve(ctx context.Context, orders []shop.Order) []string {
	// product id -> image URL; "" is a looked-up product without an image.
	// Scoped to this call (see package doc).
	cache := make(map[int64]string)

	var urls []string

	for _, order := range orders {
		for _, item := range order.LineItems {
			if item.ProductID == nil {
				continue
			}
			productID := *item.ProductID

			src, cached := cache[productID]
			if cached {
				productCacheHitsTotal.Inc()
			} else {
				product, err := r.products.Product(ctx, productID)
				if err != nil {
					// Not cached: a later occurrence retries the lookup.
					productLookupsTotal.WithLabelValues("error").Inc()
					r.logger.Warn().
						Err(err).
						Int64("product_id", productID).
						Int("order_number", order.OrderNumber).
						Msg("Product lookup failed, skipping line item")
					continue
				}

				if product.Image != nil {
					src = product.Image.Src
					productLookupsTotal.WithLabelValues("image").Inc()
				} else {
					src = ""
					productLookupsTotal.WithLabelValues("no_image").Inc()
					r.logger.Debug().
						Int64("product_id", productID).
						Msg("Product has no image")
				}
				cache[productID] = src
			}

			if src == "" {
				continue
			}

			for i := 0; i < item.Quantity; i++ {
				urls = append(urls, src)
			}
		}
	}

	r.logger.Info().
		Int("orders", len(orders)).
		Int("images", len(urls)).
		Int("products", len(cache)).
		Msg("Resolved order images")

	return urls
}

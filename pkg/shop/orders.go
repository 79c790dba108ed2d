package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Order is an order as returned by the Admin API, reduced to the fields the
// bundler needs. Orders are immutable once fetched.
type Order struct {
	ID          int64      `json:"id"`
	OrderNumber int        `json:"order_number"`
	CreatedAt   time.Time  `json:"created_at"`
	LineItems   []LineItem `json:"line_items"`
}

// LineItem is one product/quantity pairing within an order. ProductID is nil
// for items that no longer reference a product (deleted or custom items).
type LineItem struct {
	ProductID *int64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ordersResponse is the envelope of the order listing endpoint.
type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// timestampLayout formats window bounds with explicit milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FetchOrdersByDate returns the open orders created on the given calendar day
// (UTC). A single page is requested at the maximum page size; if more open
// orders exist for that day than fit in one page, the remainder is not
// returned. A warning is logged when the page comes back full, since that is
// the only observable hint of truncation.
func (c *Client) FetchOrdersByDate(ctx context.Context, date time.Time) ([]Order, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	query := url.Values{}
	query.Set("status", "open")
	query.Set("limit", fmt.Sprintf("%d", c.config.PageSize))
	query.Set("created_at_min", dayStart.Format(timestampLayout))
	query.Set("created_at_max", dayEnd.Format(timestampLayout))

	body, _, err := c.getURL(ctx, c.config.BaseURL+"/orders.json?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch orders by date: %w", err)
	}

	var page ordersResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode orders response: %w", err)
	}

	if len(page.Orders) == c.config.PageSize {
		c.logger.Warn().
			Str("date", dayStart.Format("2006-01-02")).
			Int("count", len(page.Orders)).
			Msg("Full order page returned, results may be truncated")
	}

	c.logger.Info().
		Str("date", dayStart.Format("2006-01-02")).
		Int("count", len(page.Orders)).
		Msg("Fetched open orders for date")

	return page.Orders, nil
}

// FetchOrdersByRange returns the open orders whose order_number lies in the
// inclusive range [start, end]. Pages are walked sequentially following the
// Link rel="next" cursor. Traversal stops early once a page's last order
// number falls below start, relying on the API's default newest-first
// ordering; it also stops on an empty page or a missing next link.
func (c *Client) FetchOrdersByRange(ctx context.Context, start, end int) ([]Order, error) {
	query := url.Values{}
	query.Set("status", "open")
	query.Set("limit", fmt.Sprintf("%d", c.config.PageSize))

	pageURL := c.config.BaseURL + "/orders.json?" + query.Encode()

	var fetched []Order
	pages := 0

	for pageURL != "" {
		body, header, err := c.getURL(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch orders page %d: %w", pages+1, err)
		}
		pages++

		var page ordersResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode orders page %d: %w", pages, err)
		}

		if len(page.Orders) == 0 {
			break
		}

		fetched = append(fetched, page.Orders...)

		if last := page.Orders[len(page.Orders)-1]; last.OrderNumber < start {
			c.logger.Debug().
				Int("page", pages).
				Int("order_number", last.OrderNumber).
				Int("range_start", start).
				Msg("Stopping pagination, passed below range start")
			break
		}

		pageURL = ParseNextLink(header.Get("Link"))
	}

	var matched []Order
	for _, order := range fetched {
		if order.OrderNumber >= start && order.OrderNumber <= end {
			matched = append(matched, order)
		}
	}

	c.logger.Info().
		Int("range_start", start).
		Int("range_end", end).
		Int("pages", pages).
		Int("fetched", len(fetched)).
		Int("matched", len(matched)).
		Msg("Fetched open orders for range")

	return matched, nil
}

package shop

import (
	"context"
	"encoding/json"
	"fmt"
)

// Product is a product as returned by the Admin API. Image is nil for
// products without a primary image.
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image *Image `json:"image"`
}

// Image is a product image descriptor.
type Image struct {
	Src string `json:"src"`
}

// productResponse is the envelope of the single-product endpoint.
type productResponse struct {
	Product Product `json:"product"`
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	body, _, err := c.getURL(ctx, fmt.Sprintf("%s/products/%d.json", c.config.BaseURL, id))
	if err != nil {
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}

	var envelope productResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode product %d: %w", id, err)
	}

	return &envelope.Product, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
)

func (c *Client) Suggest(ctx context.Context, q string, limit int) ([]search.Suggestion, error) {
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Results []search.Suggestion `json:"results"`
	}

	if err := c.do(ctx, http.MethodGet, "/landing_search", query, nil, &out); err != nil {
		return nil, err
	}

	return out.Results, nil
}

func (c *Client) ListProducts(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error) {
	query := url.Values{}

	if q.Search != "" {
		query.Set("search", q.Search)
	}

	if q.Category != "" {
		query.Set("category", q.Category)
	}

	if q.ViewDeleted {
		query.Set("view_deleted", "1")
	}

	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}

	if q.FilterType != "" {
		query.Set("filter_type", q.FilterType)
	}

	var out catalog.ProductPage
	if err := c.do(ctx, http.MethodGet, "/products", query, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) PriceHistory(ctx context.Context, id int64) ([]catalog.PriceChange, error) {
	var out []catalog.PriceChange
	if err := c.do(ctx, http.MethodGet, "/api/price_history/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/delete_product/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) RestoreProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/restore_product/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// BulkDelete deletes ids in one request and returns the number deleted.
func (c *Client) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}

	if err := c.do(ctx, http.MethodPost, "/bulk_delete", nil, map[string]any{"ids": ids}, &out); err != nil {
		return 0, err
	}

	return out.Deleted, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, id int64, qty int) (*catalog.QuantityUpdate, error) {
	var out catalog.QuantityUpdate
	if err := c.do(ctx, http.MethodPost, "/update_quantity/"+strconv.FormatInt(id, 10), nil, map[string]any{"quantity": qty}, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) UpdatePrice(ctx context.Context, id int64, qty int, price decimal.Decimal) error {
	body := map[string]any{"quantity": qty, "price": price}
	return c.do(ctx, http.MethodPost, "/update_price/"+strconv.FormatInt(id, 10), nil, body, nil)
}

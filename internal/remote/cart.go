// internal/remote/cart.go
package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// CartItemRecord is one cart row as the remote service reports it
type CartItemRecord struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	IsGift    bool            `json:"is_gift"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CartActionResponse is the remote response to a single-item cart mutation
type CartActionResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
	Updated  bool   `json:"updated"`
}

// CartListResponse is the remote cart listing with pagination metadata
type CartListResponse struct {
	Items         []CartItemRecord `json:"items"`
	Total         int              `json:"total"`
	Skip          int              `json:"skip"`
	Limit         int              `json:"limit"`
	TotalQuantity int              `json:"total_quantity"`
}

// CartSummaryResponse is the remote cart valuation
type CartSummaryResponse struct {
	TotalItems          int             `json:"total_items"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
	Currency            string          `json:"currency"`
}

// CartBulkDeleteResponse reports how many rows a bulk delete removed
type CartBulkDeleteResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// CartClearResponse reports how many rows a clear removed
type CartClearResponse struct {
	ClearedCount int `json:"cleared_count"`
}

type cartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	IsGift    bool   `json:"is_gift"`
}

type cartUpdateRequest struct {
	Quantity *int  `json:"quantity,omitempty"`
	IsGift   *bool `json:"is_gift,omitempty"`
}

type cartBulkDeleteRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// AddCartItem adds a product to the remote cart, incrementing quantity
// when the product is already present
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int, isGift bool) (*CartActionResponse, error) {
	var resp CartActionResponse
	body := cartAddRequest{ProductID: productID, Quantity: quantity, IsGift: isGift}
	if err := c.call(ctx, http.MethodPost, "/cart/add", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCartItem patches quantity and/or gift flag of one cart row.
// Nil fields are left unchanged on the server.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity *int, isGift *bool) (*CartActionResponse, error) {
	var resp CartActionResponse
	body := cartUpdateRequest{Quantity: quantity, IsGift: isGift}
	if err := c.call(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCartItems removes the given products from the remote cart
func (c *Client) DeleteCartItems(ctx context.Context, productIDs []string) (*CartBulkDeleteResponse, error) {
	var resp CartBulkDeleteResponse
	body := cartBulkDeleteRequest{ProductIDs: productIDs}
	if err := c.call(ctx, http.MethodPost, "/cart/bulk-delete", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearCart removes every row from the remote cart
func (c *Client) ClearCart(ctx context.Context) (*CartClearResponse, error) {
	var resp CartClearResponse
	if err := c.call(ctx, http.MethodDelete, "/cart/clear", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCart fetches a page of the remote cart, optionally filtered by a
// product search term
func (c *Client) ListCart(ctx context.Context, skip, limit int, search string) (*CartListResponse, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	if search != "" {
		query.Set("search", search)
	}

	var resp CartListResponse
	if err := c.call(ctx, http.MethodGet, "/cart/", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CartSummary fetches the remote cart valuation
func (c *Client) CartSummary(ctx context.Context) (*CartSummaryResponse, error) {
	var resp CartSummaryResponse
	if err := c.call(ctx, http.MethodGet, "/cart/summary", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

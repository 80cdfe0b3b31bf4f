// internal/remote/stats.go
package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RawOrderRecord is an order row from the reporting endpoint. Fields are
// pointers because historical rows may carry nulls; aggregation decides
// how each gap is treated.
type RawOrderRecord struct {
	OrderID       *int64           `json:"order_id"`
	UserID        *int64           `json:"user_id"`
	Status        *string          `json:"status"`
	PaymentStatus *string          `json:"payment_status"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	CreatedAt     *time.Time       `json:"created_at"`
}

// RawOrderListResponse is the reporting dump of recent orders
type RawOrderListResponse struct {
	Orders []RawOrderRecord `json:"orders"`
	Total  int              `json:"total"`
}

// RawProductStat is one product's wishlist popularity row
type RawProductStat struct {
	ProductID     *string `json:"product_id"`
	ProductName   *string `json:"product_name"`
	UserCount     *int    `json:"user_count"`
	TotalQuantity *int    `json:"total_quantity"`
}

// WishlistStatsResponse lists per-product wishlist popularity
type WishlistStatsResponse struct {
	Products []RawProductStat `json:"products"`
}

// RawWishlistAnalytics is the store-wide wishlist aggregate
type RawWishlistAnalytics struct {
	TotalWishlists  *int     `json:"total_wishlists"`
	TotalItems      *int     `json:"total_items"`
	AvgItemsPerUser *float64 `json:"avg_items_per_user"`
}

// CartStatsResponse is the store-wide cart aggregate
type CartStatsResponse struct {
	TotalCarts    *int             `json:"total_carts"`
	TotalItems    *int             `json:"total_items"`
	AbandonedRate *float64         `json:"abandoned_rate"`
	TotalValue    *decimal.Decimal `json:"total_value"`
}

// ListAllOrders fetches the reporting dump of recent orders across all
// users, newest first, capped at limit rows
func (c *Client) ListAllOrders(ctx context.Context, limit int) (*RawOrderListResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var resp RawOrderListResponse
	if err := c.call(ctx, http.MethodGet, "/orders/all", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WishlistStats fetches per-product wishlist popularity
func (c *Client) WishlistStats(ctx context.Context) (*WishlistStatsResponse, error) {
	var resp WishlistStatsResponse
	if err := c.call(ctx, http.MethodGet, "/wishlist/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WishlistAnalytics fetches the store-wide wishlist aggregate
func (c *Client) WishlistAnalytics(ctx context.Context) (*RawWishlistAnalytics, error) {
	var resp RawWishlistAnalytics
	if err := c.call(ctx, http.MethodGet, "/wishlist/analytics", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CartStats fetches the store-wide cart aggregate
func (c *Client) CartStats(ctx context.Context) (*CartStatsResponse, error) {
	var resp CartStatsResponse
	if err := c.call(ctx, http.MethodGet, "/cart/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// internal/remote/wishlist.go
package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// WishlistItemRecord is one wishlist row as the remote service reports it
type WishlistItemRecord struct {
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistActionResponse is the remote response to a wishlist mutation
type WishlistActionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AlreadyExists bool   `json:"already_exists"`
}

// WishlistListResponse is the remote wishlist listing
type WishlistListResponse struct {
	Items []WishlistItemRecord `json:"items"`
	Total int                  `json:"total"`
}

// FailedWishlistItem is one product the server refused to move to cart
type FailedWishlistItem struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// WishlistBulkAddResponse reports the outcome of moving the whole
// wishlist into the cart. FailedItems names products the server refused.
type WishlistBulkAddResponse struct {
	AddedCount  int                  `json:"added_count"`
	TotalItems  int                  `json:"total_items"`
	FailedItems []FailedWishlistItem `json:"failed_items"`
}

type wishlistAddRequest struct {
	ProductID string `json:"product_id"`
}

// AddWishlistItem adds a product to the remote wishlist. Adding an
// already-present product succeeds with AlreadyExists set.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) (*WishlistActionResponse, error) {
	var resp WishlistActionResponse
	body := wishlistAddRequest{ProductID: productID}
	if err := c.call(ctx, http.MethodPost, "/wishlist/add", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveWishlistItem removes a product from the remote wishlist
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) (*WishlistActionResponse, error) {
	var resp WishlistActionResponse
	if err := c.call(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearWishlist removes every row from the remote wishlist
func (c *Client) ClearWishlist(ctx context.Context) (*WishlistActionResponse, error) {
	var resp WishlistActionResponse
	if err := c.call(ctx, http.MethodDelete, "/wishlist/clear", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListWishlist fetches the remote wishlist
func (c *Client) ListWishlist(ctx context.Context) (*WishlistListResponse, error) {
	var resp WishlistListResponse
	if err := c.call(ctx, http.MethodGet, "/wishlist/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddAllWishlistToCart asks the server to move every wishlist item into
// the cart in one call. Partial success is reported, not failed.
func (c *Client) AddAllWishlistToCart(ctx context.Context) (*WishlistBulkAddResponse, error) {
	var resp WishlistBulkAddResponse
	if err := c.call(ctx, http.MethodPost, "/wishlist/add-all-to-cart", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

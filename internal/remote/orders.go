// internal/remote/orders.go
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
)

// OrderRecord is one order as the remote service reports it
type OrderRecord struct {
	OrderID         int64             `json:"order_id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	Currency        string            `json:"currency"`
	PaymentIntentID string            `json:"payment_intent_id"`
	Items           []OrderItemRecord `json:"order_items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OrderItemRecord is one order line as the remote service reports it
type OrderItemRecord struct {
	OrderID      int64           `json:"order_id"`
	ProductID    string          `json:"product_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	DeliveredKey string          `json:"delivered_key"`
	Status       string          `json:"status"`
}

// OrderListResponse is a page of the caller's order history
type OrderListResponse struct {
	Orders []OrderRecord `json:"orders"`
	Total  int           `json:"total"`
}

type checkoutCartItem struct {
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type checkoutCartRequest struct {
	Items    []checkoutCartItem `json:"items"`
	Currency string             `json:"currency"`
}

type buyNowRequest struct {
	ProductID string          `json:"product_id"`
	MaxPrice  decimal.Decimal `json:"max_price"`
}

// ToOrder converts the wire record into the domain order
func (r *OrderRecord) ToOrder() *commerce.Order {
	order := &commerce.Order{
		ID:              r.OrderID,
		UserID:          r.UserID,
		Status:          commerce.OrderStatus(r.Status),
		PaymentStatus:   commerce.PaymentStatus(r.PaymentStatus),
		TotalPrice:      r.TotalPrice,
		Currency:        r.Currency,
		PaymentIntentID: r.PaymentIntentID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, commerce.OrderItem{
			OrderID:      item.OrderID,
			ProductID:    item.ProductID,
			Price:        item.Price,
			Quantity:     item.Quantity,
			DeliveredKey: item.DeliveredKey,
			Status:       item.Status,
		})
	}
	return order
}

// CheckoutCart creates an order from the given cart lines. The server
// reprices every line; the returned order carries the confirmed total.
func (c *Client) CheckoutCart(ctx context.Context, lines []commerce.CartLine, currency string) (*OrderRecord, error) {
	body := checkoutCartRequest{Currency: currency}
	for _, line := range lines {
		body.Items = append(body.Items, checkoutCartItem{
			ProductID: line.ProductID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	var resp OrderRecord
	if err := c.call(ctx, http.MethodPost, "/orders/checkout-cart", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BuyNow creates a single-product order bypassing the cart. MaxPrice is
// the highest unit price the buyer accepts; the server rejects the order
// when the current price exceeds it.
func (c *Client) BuyNow(ctx context.Context, productID string, maxPrice decimal.Decimal) (*OrderRecord, error) {
	body := buyNowRequest{ProductID: productID, MaxPrice: maxPrice}
	var resp OrderRecord
	if err := c.call(ctx, http.MethodPost, "/orders/", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder fetches one order by id
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*OrderRecord, error) {
	var resp OrderRecord
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrders fetches a page of the caller's order history, newest first
func (c *Client) ListOrders(ctx context.Context, skip, limit int) (*OrderListResponse, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var resp OrderListResponse
	if err := c.call(ctx, http.MethodGet, "/orders/", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

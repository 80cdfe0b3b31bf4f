// internal/domain/commerce/entity.go
package commerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusComplete   OrderStatus = "complete"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsTerminal reports whether the payment reached a final state
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusPaid || p == PaymentStatusFailed || p == PaymentStatusRefunded
}

// CartLine represents one product in the local cart projection.
// There is at most one line per product id.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	IsGift    bool            `json:"is_gift"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns quantity * unit price
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// WishlistEntry represents one product in the local wishlist projection
type WishlistEntry struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Order represents an order as reported by the remote commerce service.
// After creation the order is read-only from this layer; only the remote
// service advances status and payment_status.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Items           []OrderItem     `json:"order_items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem represents a single line of an order. Owned by its order.
type OrderItem struct {
	OrderID      int64           `json:"order_id"`
	ProductID    string          `json:"product_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	DeliveredKey string          `json:"delivered_key,omitempty"`
	Status       string          `json:"status"`
}

// DeliveredKeys returns the license keys delivered for this order, if any
func (o *Order) DeliveredKeys() []string {
	var keys []string
	for _, item := range o.Items {
		if item.DeliveredKey != "" {
			keys = append(keys, item.DeliveredKey)
		}
	}
	return keys
}

// PaymentIntentHandle is the ephemeral payment authorization for one
// checkout attempt. Never persisted beyond the attempt.
type PaymentIntentHandle struct {
	ClientSecret    string          `json:"client_secret"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// CartSummary is derived from local state, never from a network round trip
type CartSummary struct {
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
	Currency   string          `json:"currency"`
}

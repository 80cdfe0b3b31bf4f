// internal/remote/payments.go
package remote

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
)

type paymentIntentRequest struct {
	OrderID int64 `json:"order_id"`
}

type paymentIntentResponse struct {
	ClientSecret    string          `json:"client_secret"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// CreatePaymentIntent obtains a payment authorization handle for an
// order. The server deduplicates per order, so repeating the call for
// the same order returns the same intent.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID int64) (*commerce.PaymentIntentHandle, error) {
	body := paymentIntentRequest{OrderID: orderID}
	var resp paymentIntentResponse
	if err := c.call(ctx, http.MethodPost, "/payments/intent", nil, body, &resp); err != nil {
		return nil, err
	}
	return &commerce.PaymentIntentHandle{
		ClientSecret:    resp.ClientSecret,
		PaymentIntentID: resp.PaymentIntentID,
		Amount:          resp.Amount,
		Currency:        resp.Currency,
	}, nil
}

// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	registry *Registry
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(registry *Registry) *CheckoutHandler {
	return &CheckoutHandler{registry: registry}
}

func (h *CheckoutHandler) bundle(c *gin.Context) (*Bundle, bool) {
	b := h.registry.Bundle(middleware.GetSessionID(c))
	if err := b.EnsureHydrated(c.Request.Context()); err != nil {
		writeError(c, b.Guard, err)
		return nil, false
	}
	return b, true
}

// BeginCheckout handles POST /checkout. The current cart is frozen into
// a new attempt; no remote call happens until the order is created.
func (h *CheckoutHandler) BeginCheckout(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	attempt, err := b.Checkout.BeginCheckout(b.Store.Lines())
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Checkout started",
		"data": gin.H{
			"attempt_id": attempt.ID,
			"state":      attempt.State(),
			"items":      attempt.Snapshot(),
		},
	})
}

// CreateOrder handles POST /checkout/:attempt_id/order
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	result, err := b.Checkout.CreateOrder(c.Request.Context(), c.Param("attempt_id"))
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	message := "Order created successfully"
	if result.PriceChanged {
		message = "Order created, but the total has changed since the cart was priced"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    result,
	})
}

// RequestPaymentIntent handles POST /checkout/:attempt_id/payment-intent
func (h *CheckoutHandler) RequestPaymentIntent(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	intent, err := b.Checkout.RequestPaymentIntent(c.Request.Context(), c.Param("attempt_id"))
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment intent ready",
		"data":    intent,
	})
}

// BuyNowRequest is the payload for POST /checkout/buy-now
type BuyNowRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	MaxPrice  decimal.Decimal `json:"max_price"`
}

// BuyNow handles POST /checkout/buy-now, creating a single-product
// order without touching the cart
func (h *CheckoutHandler) BuyNow(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	var req BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	attempt, err := b.Checkout.BuyNow(c.Request.Context(), req.ProductID, req.MaxPrice)
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data": gin.H{
			"attempt_id": attempt.ID,
			"state":      attempt.State(),
			"order":      attempt.Order(),
		},
	})
}

// ObserveOrder handles GET /checkout/:attempt_id/order. The UI polls
// this until the payment reaches a terminal status.
func (h *CheckoutHandler) ObserveOrder(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	attemptID := c.Param("attempt_id")
	order, err := b.Checkout.ObserveOrder(c.Request.Context(), attemptID)
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	state, _ := b.Checkout.AttemptState(attemptID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status retrieved",
		"data": gin.H{
			"order": order,
			"state": state,
		},
	})
}

// Settle handles POST /checkout/:attempt_id/settle. A captured payment
// also clears the cart, since its lines were consumed by the order.
func (h *CheckoutHandler) Settle(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	order, err := b.Checkout.Settle(c.Param("attempt_id"))
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	if order.PaymentStatus == commerce.PaymentStatusPaid {
		// The order is settled either way; a failed clear re-syncs on
		// the next hydration
		_ = b.Store.Clear(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout settled",
		"data": gin.H{
			"order":          order,
			"delivered_keys": order.DeliveredKeys(),
		},
	})
}

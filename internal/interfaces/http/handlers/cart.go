// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	registry *Registry
}

// NewCartHandler creates a new cart handler
func NewCartHandler(registry *Registry) *CartHandler {
	return &CartHandler{registry: registry}
}

func (h *CartHandler) bundle(c *gin.Context) (*Bundle, bool) {
	b := h.registry.Bundle(middleware.GetSessionID(c))
	if err := b.EnsureHydrated(c.Request.Context()); err != nil {
		writeError(c, b.Guard, err)
		return nil, false
	}
	return b, true
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data": gin.H{
			"items":   b.Store.Lines(),
			"summary": b.Store.Summary(),
		},
	})
}

// AddToCartRequest is the payload for POST /cart/items
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	IsGift    bool   `json:"is_gift"`
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := b.Store.AddItem(c.Request.Context(), req.ProductID, req.Quantity, req.IsGift); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    b.Store.Summary(),
	})
}

// UpdateCartItemRequest is the payload for PUT /cart/items/:product_id
type UpdateCartItemRequest struct {
	Quantity *int  `json:"quantity"`
	IsGift   *bool `json:"is_gift"`
}

// UpdateCartItem handles PUT /cart/items/:product_id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	productID := c.Param("product_id")
	if err := b.Store.UpdateItem(c.Request.Context(), productID, req.Quantity, req.IsGift); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    b.Store.Summary(),
	})
}

// RemoveCartItem handles DELETE /cart/items/:product_id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	if err := b.Store.RemoveItem(c.Request.Context(), c.Param("product_id")); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    b.Store.Summary(),
	})
}

// BulkRemoveRequest is the payload for POST /cart/items/bulk-delete
type BulkRemoveRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
}

// BulkRemoveCartItems handles POST /cart/items/bulk-delete
func (h *CartHandler) BulkRemoveCartItems(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	var req BulkRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := b.Store.RemoveMany(c.Request.Context(), req.ProductIDs); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Items removed from cart successfully",
		"data":    b.Store.Summary(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	if err := b.Store.Clear(c.Request.Context()); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    b.Store.Summary(),
	})
}

// GetCartSummary handles GET /cart/summary
func (h *CartHandler) GetCartSummary(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart summary retrieved successfully",
		"data":    b.Store.Summary(),
	})
}

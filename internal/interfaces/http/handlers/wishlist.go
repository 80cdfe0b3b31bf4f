// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	registry *Registry
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(registry *Registry) *WishlistHandler {
	return &WishlistHandler{registry: registry}
}

func (h *WishlistHandler) bundle(c *gin.Context) (*Bundle, bool) {
	b := h.registry.Bundle(middleware.GetSessionID(c))
	if err := b.EnsureHydrated(c.Request.Context()); err != nil {
		writeError(c, b.Guard, err)
		return nil, false
	}
	return b, true
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	entries := b.Store.WishlistEntries()
	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data": gin.H{
			"items": entries,
			"total": len(entries),
		},
	})
}

// ToggleWishlistRequest is the payload for POST /wishlist/items
type ToggleWishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// ToggleWishlist handles POST /wishlist/items. Adding a product that is
// already wishlisted is a success, flagged via already_exists.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	var req ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	alreadyExists, err := b.Store.ToggleWishlist(c.Request.Context(), req.ProductID)
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to wishlist",
		"data": gin.H{
			"product_id":     req.ProductID,
			"already_exists": alreadyExists,
		},
	})
}

// RemoveFromWishlist handles DELETE /wishlist/items/:product_id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	if err := b.Store.RemoveFromWishlist(c.Request.Context(), c.Param("product_id")); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from wishlist",
	})
}

// ClearWishlist handles DELETE /wishlist
func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	if err := b.Store.ClearWishlist(c.Request.Context()); err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist cleared successfully",
	})
}

// AddAllToCart handles POST /wishlist/add-all-to-cart. Partial failure
// is a 207: the accepted items are committed and the failed ones are
// enumerated with the server's reasons.
func (h *WishlistHandler) AddAllToCart(c *gin.Context) {
	b, ok := h.bundle(c)
	if !ok {
		return
	}

	result, err := b.Store.AddAllWishlistToCart(c.Request.Context())
	if err != nil {
		var pbe *commerce.PartialBatchError
		if errors.As(err, &pbe) {
			c.JSON(http.StatusMultiStatus, gin.H{
				"message": "Some wishlist items could not be added to the cart",
				"data":    result,
			})
			return
		}
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist moved to cart successfully",
		"data":    result,
	})
}

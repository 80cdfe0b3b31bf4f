// internal/interfaces/http/handlers/orders.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// OrdersHandler exposes the caller's order history. Read-only: orders
// are created through checkout and advanced only by the remote service.
type OrdersHandler struct {
	registry *Registry
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(registry *Registry) *OrdersHandler {
	return &OrdersHandler{registry: registry}
}

// ListOrders handles GET /orders
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	b := h.registry.Bundle(middleware.GetSessionID(c))

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	resp, err := b.Remote.ListOrders(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    resp,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	b := h.registry.Bundle(middleware.GetSessionID(c))

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	record, err := b.Remote.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, b.Guard, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    record.ToOrder(),
	})
}

// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles dashboard analytics endpoints
type AnalyticsHandler struct {
	registry *Registry
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(registry *Registry) *AnalyticsHandler {
	return &AnalyticsHandler{registry: registry}
}

// GetSnapshot handles GET /analytics/snapshot. Every call computes a
// fresh snapshot from one fetch pass; sources that failed are listed in
// data.failures with the rest of the metrics intact.
func (h *AnalyticsHandler) GetSnapshot(c *gin.Context) {
	b := h.registry.Bundle(middleware.GetSessionID(c))

	snapshot := b.Analytics.Refresh(c.Request.Context())

	status := http.StatusOK
	message := "Analytics snapshot computed"
	if len(snapshot.Failures) > 0 {
		status = http.StatusMultiStatus
		message = "Analytics snapshot computed with degraded sources"
	}
	c.JSON(status, gin.H{
		"message": message,
		"data":    snapshot,
	})
}

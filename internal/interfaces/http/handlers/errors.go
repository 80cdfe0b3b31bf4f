// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/domain/checkout"
	"github.com/your-org/storefront-bff/internal/domain/commerce"
	"github.com/your-org/storefront-bff/internal/domain/session"
)

// writeError maps domain errors onto HTTP responses. The server's
// failure reason travels verbatim so the UI can explain what happened.
func writeError(c *gin.Context, guard *session.Guard, err error) {
	var ve *commerce.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
		return
	}

	var se *checkout.StateError
	if errors.As(err, &se) {
		c.JSON(http.StatusConflict, gin.H{"error": se.Error()})
		return
	}

	if commerce.IsAuthExpired(err) {
		resp := gin.H{"error": err.Error()}
		if redirect := guard.PendingRedirect(); redirect != nil {
			resp["redirect"] = redirect
		}
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	var te *commerce.TimeoutError
	if errors.As(err, &te) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": te.Error(), "retriable": true})
		return
	}

	var re *commerce.RemoteError
	if errors.As(err, &re) {
		c.JSON(http.StatusBadGateway, gin.H{"error": re.Reason, "retriable": re.Retriable})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

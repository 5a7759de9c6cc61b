// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": ..., "fields": ...} with the status
// its kind maps to. Server errors are logged with their full chain; their
// text never reaches the client.
func respondError(c *gin.Context, logger *slog.Logger, marker *performance.Marker, err error) {
	status := apperr.HTTPStatus(err)
	marker.SetError(err)

	body := gin.H{"error": apperr.PublicMessage(err)}
	if ae, ok := apperr.As(err); ok && len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "method", c.Request.Method, "error", err.Error())
	} else {
		logger.Debug("Request rejected", "path", c.Request.URL.Path, "status", status, "error", err.Error())
	}
	c.JSON(status, body)
}

// badRequest reports a malformed body.
func badRequest(c *gin.Context, marker *performance.Marker, err error) {
	marker.SetError(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}

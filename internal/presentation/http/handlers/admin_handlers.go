package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// AdminHandlers expose the live log stream and per-channel levels.
type AdminHandlers struct {
	logger *logging.ChanneledLogger
}

func NewAdminHandlers(logger *logging.ChanneledLogger) *AdminHandlers {
	return &AdminHandlers{logger: logger}
}

// StreamLogs handles the SSE connection for live log streaming.
// Query: channel (default all), level (default info).
func (h *AdminHandlers) StreamLogs(c *gin.Context) {
	stream := h.logger.Stream()
	if stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "log streaming is disabled"})
		return
	}

	filter := logging.StreamFilter{}
	if channel := c.DefaultQuery("channel", "all"); channel != "all" {
		filter.Channel = logging.Channel(channel)
	}
	level, err := logging.ParseLevel(c.DefaultQuery("level", "info"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.Level = level

	entries, err := stream.Subscribe(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case entry, ok := <-entries:
			if !ok {
				return false
			}
			payload, err := json.Marshal(entry)
			if err != nil {
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GetLogLevels returns current log levels for all channels.
func (h *AdminHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel sets the log level for a specific channel.
func (h *AdminHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid log level specified"})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, level)})
}

package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// RealtimeHandlers stream committed row changes to clients.
type RealtimeHandlers struct {
	feed        messaging.Subscriber
	heartbeat   time.Duration
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewRealtimeHandlers creates realtime handlers. Websocket upgrades are
// accepted from allowedOrigins, or from any origin when it contains "*".
func NewRealtimeHandlers(feed messaging.Subscriber, heartbeat time.Duration, allowedOrigins []string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RealtimeHandlers {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &RealtimeHandlers{
		feed:      feed,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// parseTables reads the comma-separated tables filter. Empty means all.
func parseTables(raw string) ([]events.Table, error) {
	var tables []events.Table
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		table, err := events.ParseTable(part)
		if err != nil {
			return nil, &apperr.AppError{Kind: apperr.Invalid, PublicMsg: err.Error(), Err: err}
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// GetSSE handles GET /api/v1/realtime/sse?tables=products,content
func (h *RealtimeHandlers) GetSSE(c *gin.Context) {
	marker := h.perfTracker.StartOperation("realtime_sse_request", c.Query("tables"))
	defer marker.Complete()

	tables, err := parseTables(c.Query("tables"))
	if err != nil {
		respondError(c, h.logger.Realtime(), marker, err)
		return
	}

	ctx := c.Request.Context()
	stream, err := h.feed.Subscribe(ctx, tables...)
	if err != nil {
		respondError(c, h.logger.Realtime(), marker, &apperr.AppError{Kind: apperr.Internal, PublicMsg: "realtime feed unavailable", Err: err})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	marker.SetSuccess(true)
	connectionStart := time.Now()
	h.logger.Realtime().Info("SSE client connected", "tables", tables)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Realtime().Info("SSE client disconnected", "connectionDuration", time.Since(connectionStart))
			return

		case evt, ok := <-stream:
			if !ok {
				h.logger.Realtime().Info("SSE stream closed by feed", "connectionDuration", time.Since(connectionStart))
				return
			}
			frame, err := messaging.FormatSSE(evt)
			if err != nil {
				h.logger.Realtime().Error("SSE frame encoding failed", "error", err.Error())
				continue
			}
			if _, err := c.Writer.WriteString(frame); err != nil {
				h.logger.Realtime().Warn("SSE write failed", "error", err.Error())
				return
			}
			c.Writer.Flush()

		case <-ticker.C:
			heartbeat := fmt.Sprintf("event: heartbeat\ndata: {\"timestamp\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
			if _, err := c.Writer.WriteString(heartbeat); err != nil {
				h.logger.Realtime().Warn("SSE heartbeat failed", "error", err.Error())
				return
			}
			c.Writer.Flush()
		}
	}
}

// GetWS handles GET /api/v1/realtime/ws?tables=...
func (h *RealtimeHandlers) GetWS(c *gin.Context) {
	marker := h.perfTracker.StartOperation("realtime_ws_request", c.Query("tables"))
	defer marker.Complete()

	tables, err := parseTables(c.Query("tables"))
	if err != nil {
		respondError(c, h.logger.Realtime(), marker, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		marker.SetError(err)
		h.logger.Realtime().Warn("Websocket upgrade failed", "error", err.Error())
		return
	}

	ctx := c.Request.Context()
	stream, err := h.feed.Subscribe(ctx, tables...)
	if err != nil {
		marker.SetError(err)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "feed closed"))
		conn.Close()
		return
	}

	marker.SetSuccess(true)
	connectionStart := time.Now()
	h.logger.Realtime().Info("Websocket client connected", "tables", tables)
	messaging.NewWSClient(conn, stream, h.logger).Serve(ctx)
	h.logger.Realtime().Info("Websocket client disconnected", "connectionDuration", time.Since(connectionStart))
}

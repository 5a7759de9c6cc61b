package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// WSClient pumps change events to one websocket connection.
type WSClient struct {
	Conn   *websocket.Conn
	Send   <-chan events.ChangeEvent
	logger *logging.ChanneledLogger
}

// NewWSClient wraps an upgraded connection.
func NewWSClient(conn *websocket.Conn, send <-chan events.ChangeEvent, logger *logging.ChanneledLogger) *WSClient {
	return &WSClient{Conn: conn, Send: send, logger: logger}
}

// Serve runs the read and write pumps until the peer disconnects, ctx is
// done or the event channel closes. It always closes the connection.
func (c *WSClient) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.Conn.Close()

	go c.readPump(cancel)
	c.writePump(ctx)
}

// readPump discards inbound frames and keeps the read deadline fresh.
func (c *WSClient) readPump(cancel context.CancelFunc) {
	defer cancel()
	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Realtime().Warn("Websocket read failed", "error", err.Error())
			}
			return
		}
	}
}

func (c *WSClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case evt, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				c.logger.Realtime().Error("Failed to marshal change event for websocket", "error", err.Error())
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Realtime().Warn("Websocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"disaster-relief-api-server/internal/dispatch"
	"disaster-relief-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Maximum wait for a message (or ping) from the client.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub     *socket.Hub
	Service *dispatch.Service
	Log     zerolog.Logger
}

// ServeTracking upgrades a requester connection and streams volunteer
// location events for one request. The device token authorizes the
// subscription the same way it authorizes the pull tracking endpoint.
func (h *WebSocketHandler) ServeTracking(c *gin.Context) {
	requestID := c.Query("request_id")
	deviceID := c.Query("device_id")
	if requestID == "" || deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id and device_id are required"})
		return
	}

	rctx, err := h.Service.ResolveRequester(c.Request.Context(), deviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid device_id"})
		return
	}
	if err := h.Service.AuthorizeTracking(c.Request.Context(), rctx, requestID); err != nil {
		if errors.Is(err, dispatch.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your request"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to upgrade tracking connection")
		return
	}

	h.Hub.Subscribe(requestID, conn)
	defer func() {
		h.Hub.Unsubscribe(requestID, conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Warn().Err(err).Msg("unexpected tracking socket close")
			}
			break
		}
	}
}

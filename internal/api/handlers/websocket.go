package handlers

import (
	"net/http"
	"strings"

	"fleet-dashboard/internal/api/middleware"
	"fleet-dashboard/internal/websocket"
	"fleet-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler upgrades gated requests to the live change feed
type WebSocketHandler struct {
	manager *websocket.Manager
	log     logrus.FieldLogger
}

func NewWebSocketHandler(manager *websocket.Manager, log logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		log:     log.WithField("handler", "websocket"),
	}
}

// HandleWebSocket subscribes the caller to store changes. The kinds and
// entityIds query parameters narrow the feed; each may repeat or hold a
// comma-separated list.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	clientID := uuid.NewString()
	filters := websocket.Filters{
		Kinds:     queryList(c, "kinds"),
		EntityIDs: queryList(c, "entityIds"),
	}

	conn, err := h.manager.GetUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already answered the request.
		h.log.WithError(err).Warn("Failed to upgrade connection to WebSocket")
		return
	}

	if err := h.manager.RegisterClient(clientID, conn, filters); err != nil {
		h.log.WithError(err).WithField("client_id", clientID).Error("Failed to register WebSocket client")
		conn.Close()
		return
	}

	h.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"user_id":   c.GetString(middleware.ContextUserID),
		"kinds":     filters.Kinds,
		"entities":  filters.EntityIDs,
	}).Info("WebSocket client connected")
}

// GetConnectedClients reports how many dashboards are listening
func (h *WebSocketHandler) GetConnectedClients(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "WebSocket clients retrieved successfully", gin.H{
		"connectedClients": h.manager.GetConnectedClients(),
		"stats":            h.manager.GetClientStats(),
	})
}

func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

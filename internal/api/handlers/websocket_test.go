package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-dashboard/internal/repository"
	"fleet-dashboard/internal/websocket"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebSocketServer(t *testing.T, hub *websocket.Manager) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewWebSocketHandler(hub, quietLogger())
	router := gin.New()
	router.GET("/ws", handler.HandleWebSocket)
	router.GET("/ws/clients", handler.GetConnectedClients)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, hub *websocket.Manager, server *httptest.Server, query string) *gorillaws.Conn {
	t.Helper()

	before := hub.GetConnectedClients()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.GetConnectedClients() == before+1
	}, time.Second, 5*time.Millisecond)
	return conn
}

func readChange(t *testing.T, conn *gorillaws.Conn) websocket.Update {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var message struct {
		Type string           `json:"type"`
		Data websocket.Update `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&message))
	assert.Equal(t, websocket.MessageTypeChange, message.Type)
	return message.Data
}

func TestWebSocketHandler_StreamsStoreChanges(t *testing.T) {
	env := newTestEnv(t)
	hub := newTestHub(t)
	unsubscribe := env.store.Subscribe(hub.HandleChange)
	defer unsubscribe()

	conn := dial(t, hub, newWebSocketServer(t, hub), "")

	decode(t, env.do(t, http.MethodDelete, "/vehicles/5", nil), http.StatusOK, nil)

	update := readChange(t, conn)
	assert.Equal(t, string(repository.VehicleDeleted), update.Kind)
	assert.Equal(t, "5", update.EntityID)
	require.NotNil(t, update.Notification)
	assert.Equal(t, "Car Deleted", update.Notification.Title)
	require.NotNil(t, update.Stats)
	assert.Equal(t, 7, update.Stats.TotalCars)
}

func TestWebSocketHandler_QueryFilters(t *testing.T) {
	hub := newTestHub(t)
	server := newWebSocketServer(t, hub)
	conn := dial(t, hub, server, "?kinds=maintenance_added,maintenance_deleted&entityIds=42")

	require.NoError(t, hub.Publish(websocket.Update{Kind: "vehicle_added", EntityID: "42", Timestamp: time.Now()}))
	require.NoError(t, hub.Publish(websocket.Update{Kind: "maintenance_added", EntityID: "7", Timestamp: time.Now()}))
	require.NoError(t, hub.Publish(websocket.Update{Kind: "maintenance_deleted", EntityID: "42", Timestamp: time.Now()}))

	update := readChange(t, conn)
	assert.Equal(t, "maintenance_deleted", update.Kind)
	assert.Equal(t, "42", update.EntityID)
}

func TestWebSocketHandler_GetConnectedClients(t *testing.T) {
	hub := newTestHub(t)
	server := newWebSocketServer(t, hub)
	dial(t, hub, server, "")
	dial(t, hub, server, "?kinds=vehicle_added")

	resp, err := http.Get(server.URL + "/ws/clients")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, hub.GetConnectedClients())
}

func TestWebSocketHandler_RejectsPlainHTTP(t *testing.T) {
	hub := newTestHub(t)
	server := newWebSocketServer(t, hub)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, hub.GetConnectedClients())
}

func TestQueryList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws?kinds=a,%20b&kinds=c&kinds=", nil)

	assert.Equal(t, []string{"a", "b", "c"}, queryList(c, "kinds"))
	assert.Nil(t, queryList(c, "entityIds"))
}

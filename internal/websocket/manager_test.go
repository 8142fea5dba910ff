package websocket

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-dashboard/internal/models"
	"fleet-dashboard/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, origins ...string) *Manager {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	manager := NewManager(log, origins)
	require.NoError(t, manager.Start())
	t.Cleanup(func() { manager.Stop() })
	return manager
}

// connect upgrades a test connection and registers it under clientID.
func connect(t *testing.T, manager *Manager, clientID string, filters Filters) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := manager.GetUpgrader().Upgrade(w, r, nil)
		if err != nil {
			return
		}
		manager.RegisterClient(clientID, conn, filters)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		manager.mutex.RLock()
		defer manager.mutex.RUnlock()
		_, ok := manager.clients[clientID]
		return ok
	}, time.Second, 5*time.Millisecond)
	return conn
}

type received struct {
	Type string `json:"type"`
	Data Update `json:"data"`
}

func readUpdate(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestManager_RegisterAndBroadcast(t *testing.T) {
	manager := newTestManager(t)
	conn := connect(t, manager, "client-1", Filters{})
	assert.Equal(t, 1, manager.GetConnectedClients())

	require.NoError(t, manager.Publish(Update{Kind: "vehicle_added", EntityID: "9", Timestamp: time.Now()}))

	msg := readUpdate(t, conn)
	assert.Equal(t, MessageTypeChange, msg.Type)
	assert.Equal(t, "vehicle_added", msg.Data.Kind)
	assert.Equal(t, "9", msg.Data.EntityID)
}

func TestManager_HandleChange(t *testing.T) {
	manager := newTestManager(t)
	conn := connect(t, manager, "client-1", Filters{})

	store := repository.NewStore()
	unsubscribe := store.Subscribe(manager.HandleChange)
	defer unsubscribe()

	vehicle, err := store.AddVehicle(models.VehicleFields{
		Brand:          "Toyota",
		Model:          "Corolla",
		Year:           2020,
		EngineNo:       "E1",
		RegistrationNo: "R1",
		FuelType:       models.FuelPetrol,
		Transmission:   models.TransmissionManual,
		Seating:        5,
		Status:         models.StatusAvailable,
	})
	require.NoError(t, err)

	msg := readUpdate(t, conn)
	assert.Equal(t, string(repository.VehicleAdded), msg.Data.Kind)
	assert.Equal(t, vehicle.ID, msg.Data.EntityID)
	require.NotNil(t, msg.Data.Notification)
	assert.Equal(t, "Car Added", msg.Data.Notification.Title)
	require.NotNil(t, msg.Data.Stats)
	assert.Equal(t, 1, msg.Data.Stats.TotalCars)
}

func TestManager_Filters(t *testing.T) {
	manager := newTestManager(t)
	maintenanceOnly := connect(t, manager, "maintenance", Filters{Kinds: []string{"maintenance_added"}})
	everything := connect(t, manager, "all", Filters{})

	require.NoError(t, manager.Publish(Update{Kind: "vehicle_added", EntityID: "9"}))
	require.NoError(t, manager.Publish(Update{Kind: "maintenance_added", EntityID: "8"}))

	assert.Equal(t, "vehicle_added", readUpdate(t, everything).Data.Kind)
	assert.Equal(t, "maintenance_added", readUpdate(t, everything).Data.Kind)
	assert.Equal(t, "maintenance_added", readUpdate(t, maintenanceOnly).Data.Kind)
}

func TestManager_UpdateFilters(t *testing.T) {
	manager := newTestManager(t)
	conn := connect(t, manager, "client-1", Filters{})

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    MessageTypeUpdateFilters,
		"filters": Filters{EntityIDs: []string{"3"}},
	}))

	require.Eventually(t, func() bool {
		manager.mutex.RLock()
		client := manager.clients["client-1"]
		manager.mutex.RUnlock()
		return client != nil && len(client.Filters().EntityIDs) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, manager.Publish(Update{Kind: "vehicle_updated", EntityID: "1"}))
	require.NoError(t, manager.Publish(Update{Kind: "vehicle_updated", EntityID: "3"}))
	assert.Equal(t, "3", readUpdate(t, conn).Data.EntityID)
}

func TestShouldSendToClient(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		update   Update
		expected bool
	}{
		{"no filters", Filters{}, Update{Kind: "vehicle_added", EntityID: "1"}, true},
		{"kind matches", Filters{Kinds: []string{"vehicle_added"}}, Update{Kind: "vehicle_added"}, true},
		{"kind differs", Filters{Kinds: []string{"vehicle_added"}}, Update{Kind: "vehicle_deleted"}, false},
		{"entity matches", Filters{EntityIDs: []string{"1", "2"}}, Update{Kind: "vehicle_updated", EntityID: "2"}, true},
		{"entity differs", Filters{EntityIDs: []string{"1"}}, Update{Kind: "vehicle_updated", EntityID: "2"}, false},
		{"refresh reaches entity filters", Filters{EntityIDs: []string{"1"}}, Update{Kind: "statistics_refreshed"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldSendToClient(tt.filters, tt.update))
		})
	}
}

func TestManager_UnregisterClient(t *testing.T) {
	manager := newTestManager(t)
	conn := connect(t, manager, "client-1", Filters{})

	require.NoError(t, manager.UnregisterClient("client-1"))
	assert.Eventually(t, func() bool { return manager.GetConnectedClients() == 0 }, time.Second, 5*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "the server closes the connection")

	assert.NoError(t, manager.UnregisterClient("unknown"))
}

func TestManager_ClientDisconnect(t *testing.T) {
	manager := newTestManager(t)
	conn := connect(t, manager, "client-1", Filters{})

	conn.Close()
	assert.Eventually(t, func() bool { return manager.GetConnectedClients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestManager_Stop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	manager := NewManager(log, nil)
	require.NoError(t, manager.Start())

	require.NoError(t, manager.Stop())
	require.NoError(t, manager.Stop(), "stopping twice is safe")

	assert.ErrorIs(t, manager.Publish(Update{Kind: "vehicle_added"}), ErrManagerStopped)
	assert.ErrorIs(t, manager.RegisterClient("late", nil, Filters{}), ErrManagerStopped)
	manager.HandleChange(repository.ChangeEvent{Kind: repository.VehicleAdded})
}

func TestManager_ClientStatsAndHealthCheck(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	manager := NewManager(log, nil)

	stale := newClient("stale", nil, Filters{})
	stale.lastPing = time.Now().Add(-2 * time.Minute)
	stale.isActive = false
	fresh := newClient("fresh", nil, Filters{})

	manager.clients["stale"] = stale
	manager.clients["fresh"] = fresh

	stats := manager.GetClientStats()
	assert.Equal(t, ClientStats{TotalClients: 2, ActiveClients: 1, InactiveClients: 1}, stats)

	manager.healthCheck()
	assert.Equal(t, 1, manager.GetConnectedClients())
	_, ok := <-stale.Send
	assert.False(t, ok, "removed clients have their channel closed")
}

func TestOriginChecker(t *testing.T) {
	request := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	restricted := originChecker([]string{"http://localhost:5173"})
	assert.True(t, restricted(request("http://localhost:5173")))
	assert.False(t, restricted(request("http://evil.example")))
	assert.True(t, restricted(request("")))

	assert.True(t, originChecker(nil)(request("http://anything")))
	assert.True(t, originChecker([]string{"*"})(request("http://anything")))
}

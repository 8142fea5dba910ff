// Package websocket pushes store changes to connected dashboards.
package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"fleet-dashboard/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	sendBufferSize      = 64
	broadcastBufferSize = 256
	pongWait            = 60 * time.Second
	pingPeriod          = 54 * time.Second
	writeWait           = 10 * time.Second
	healthCheckInterval = 30 * time.Second
	clientTimeout       = 90 * time.Second
)

var ErrManagerStopped = errors.New("websocket manager stopped")

// Manager is the hub. Only the run loop adds or removes clients, so every
// Send channel is closed exactly once.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Update
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewManager builds a hub that accepts upgrades from the given origins. An
// empty list or "*" accepts any origin.
func NewManager(log logrus.FieldLogger, allowedOrigins []string) *Manager {
	m := &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Update, broadcastBufferSize),
		log:        log.WithField("component", "websocket"),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	m.upgrader = websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigins),
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return m
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

func (m *Manager) Start() error {
	go m.run()
	m.log.Info("WebSocket manager started")
	return nil
}

// Stop closes every connection and waits for the run loop to exit.
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() {
		close(m.done)
		<-m.stopped
		m.log.Info("WebSocket manager stopped")
	})
	return nil
}

func (m *Manager) run() {
	defer close(m.stopped)

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			m.mutex.Unlock()
			m.log.WithField("client_id", client.ID).Info("Client registered")
			if client.Conn != nil {
				go m.handleClient(client)
			}

		case client := <-m.unregister:
			if m.remove(client.ID) {
				m.log.WithField("client_id", client.ID).Info("Client unregistered")
			}

		case update := <-m.broadcast:
			m.broadcastToClients(update)

		case <-ticker.C:
			m.healthCheck()

		case <-m.done:
			m.mutex.RLock()
			ids := make([]string, 0, len(m.clients))
			for id := range m.clients {
				ids = append(ids, id)
			}
			m.mutex.RUnlock()
			for _, id := range ids {
				m.remove(id)
			}
			return
		}
	}
}

// remove drops a client and closes its channel and connection. It must only
// be called from the run loop or before Start.
func (m *Manager) remove(clientID string) bool {
	m.mutex.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	m.mutex.Unlock()

	if !ok {
		return false
	}
	close(client.Send)
	if client.Conn != nil {
		client.Conn.Close()
	}
	return true
}

// RegisterClient hands a freshly upgraded connection to the hub, which then
// owns it.
func (m *Manager) RegisterClient(clientID string, conn *websocket.Conn, filters Filters) error {
	select {
	case m.register <- newClient(clientID, conn, filters):
		return nil
	case <-m.done:
		return ErrManagerStopped
	}
}

func (m *Manager) UnregisterClient(clientID string) error {
	m.mutex.RLock()
	client, exists := m.clients[clientID]
	m.mutex.RUnlock()

	if !exists {
		return nil
	}
	select {
	case m.unregister <- client:
		return nil
	case <-m.done:
		return ErrManagerStopped
	}
}

// Publish queues an update for every matching client without blocking.
func (m *Manager) Publish(update Update) error {
	select {
	case <-m.done:
		return ErrManagerStopped
	default:
	}

	select {
	case m.broadcast <- update:
		return nil
	default:
		return fmt.Errorf("broadcast channel full, dropping %s update", update.Kind)
	}
}

// HandleChange is a store observer that forwards every change to the feed.
func (m *Manager) HandleChange(event repository.ChangeEvent) {
	stats := event.Stats
	update := Update{
		Kind:         string(event.Kind),
		EntityID:     event.EntityID,
		Notification: event.Notification,
		Stats:        &stats,
		Timestamp:    event.Timestamp,
	}
	if err := m.Publish(update); err != nil && !errors.Is(err, ErrManagerStopped) {
		m.log.WithError(err).Warn("Dropped change update")
	}
}

func (m *Manager) GetConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

func (m *Manager) GetClientStats() ClientStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := ClientStats{
		TotalClients: len(m.clients),
	}
	for _, client := range m.clients {
		if client.IsActive() {
			stats.ActiveClients++
		} else {
			stats.InactiveClients++
		}
	}
	return stats
}

func (m *Manager) GetUpgrader() *websocket.Upgrader {
	return &m.upgrader
}

func (m *Manager) broadcastToClients(update Update) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, client := range m.clients {
		if !shouldSendToClient(client.Filters(), update) {
			continue
		}
		select {
		case client.Send <- update:
		default:
			client.setActive(false)
			m.log.WithField("client_id", client.ID).Warn("Client send buffer full, marking inactive")
		}
	}
}

func shouldSendToClient(filters Filters, update Update) bool {
	if len(filters.Kinds) > 0 && !slices.Contains(filters.Kinds, update.Kind) {
		return false
	}
	// statistics refreshes carry no entity and reach every client
	if len(filters.EntityIDs) > 0 && update.EntityID != "" && !slices.Contains(filters.EntityIDs, update.EntityID) {
		return false
	}
	return true
}

func (m *Manager) handleClient(client *Client) {
	defer func() {
		select {
		case m.unregister <- client:
		case <-m.done:
		}
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.touch(time.Now())
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go m.writeMessages(client)

	for {
		var message struct {
			Type    string  `json:"type"`
			Filters Filters `json:"filters"`
		}
		if err := client.Conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.WithError(err).WithField("client_id", client.ID).Warn("WebSocket read failed")
			}
			return
		}

		client.touch(time.Now())
		if message.Type == MessageTypeUpdateFilters {
			client.SetFilters(message.Filters)
			m.log.WithField("client_id", client.ID).Debug("Updated client filters")
		}
	}
}

func (m *Manager) writeMessages(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(Message{Type: MessageTypeChange, Data: update}); err != nil {
				m.log.WithError(err).WithField("client_id", client.ID).Warn("WebSocket write failed")
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// healthCheck drops clients that have not answered a ping in time.
func (m *Manager) healthCheck() {
	now := time.Now()

	m.mutex.RLock()
	var stale []string
	for id, client := range m.clients {
		if now.Sub(client.LastPing()) > clientTimeout {
			stale = append(stale, id)
		}
	}
	m.mutex.RUnlock()

	for _, id := range stale {
		m.log.WithField("client_id", id).Info("Client timed out")
		m.remove(id)
	}
}

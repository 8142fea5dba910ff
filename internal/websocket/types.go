package websocket

import (
	"sync"
	"time"

	"fleet-dashboard/internal/models"

	"github.com/gorilla/websocket"
)

// Filters narrow the change feed of one client. Empty fields match
// everything.
type Filters struct {
	Kinds     []string `json:"kinds,omitempty"`
	EntityIDs []string `json:"entityIds,omitempty"`
}

// Update is one change pushed to subscribed dashboards.
type Update struct {
	Kind         string                 `json:"kind"`
	EntityID     string                 `json:"entityId,omitempty"`
	Notification *models.Notification   `json:"notification,omitempty"`
	Stats        *models.DashboardStats `json:"stats,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan Update

	mu       sync.RWMutex
	filters  Filters
	lastPing time.Time
	isActive bool
}

func newClient(id string, conn *websocket.Conn, filters Filters) *Client {
	return &Client{
		ID:       id,
		Conn:     conn,
		Send:     make(chan Update, sendBufferSize),
		filters:  filters,
		lastPing: time.Now(),
		isActive: true,
	}
}

func (c *Client) Filters() Filters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

func (c *Client) SetFilters(f Filters) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
}

func (c *Client) touch(now time.Time) {
	c.mu.Lock()
	c.lastPing = now
	c.isActive = true
	c.mu.Unlock()
}

func (c *Client) LastPing() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPing
}

func (c *Client) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isActive
}

func (c *Client) setActive(active bool) {
	c.mu.Lock()
	c.isActive = active
	c.mu.Unlock()
}

// Broadcaster is what the rest of the server needs from the hub.
type Broadcaster interface {
	Publish(update Update) error
	GetConnectedClients() int
	GetClientStats() ClientStats
}

type ClientStats struct {
	TotalClients    int `json:"totalClients"`
	ActiveClients   int `json:"activeClients"`
	InactiveClients int `json:"inactiveClients"`
}

// Message types on the wire.
const (
	MessageTypeChange        = "change"
	MessageTypeUpdateFilters = "update_filters"
	MessageTypeError         = "error"
)

// Message is the envelope of everything written to a client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

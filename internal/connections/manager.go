package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Conn wraps a WebSocket connection with a write lock, since gorilla permits
// only one concurrent writer per connection.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteJSON sends v within the given write deadline.
func (c *Conn) WriteJSON(v interface{}, writeWait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

// Ping sends a control ping within the given write deadline.
func (c *Conn) Ping(writeWait time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Manager tracks the open event-stream connections per assistant session and
// fans session events out to them. A session may have several tabs attached;
// sessions never share connections.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]map[*Conn]struct{}
	timeouts TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		sessions: make(map[string]map[*Conn]struct{}),
		timeouts: timeouts,
	}
}

// Add registers a connection under a session id.
func (m *Manager) Add(sessionID string, conn *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns, ok := m.sessions[sessionID]
	if !ok {
		conns = make(map[*Conn]struct{})
		m.sessions[sessionID] = conns
	}
	conns[conn] = struct{}{}
}

// Remove drops a connection; the session entry disappears with its last
// connection.
func (m *Manager) Remove(sessionID string, conn *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conns, ok := m.sessions[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.sessions, sessionID)
		}
	}
}

// Broadcast sends v to every connection attached to the session. Write
// failures are left for the per-connection read loop to notice and clean up.
func (m *Manager) Broadcast(sessionID string, v interface{}) {
	m.mu.RLock()
	targets := make([]*Conn, 0, len(m.sessions[sessionID]))
	for conn := range m.sessions[sessionID] {
		targets = append(targets, conn)
	}
	writeWait := m.timeouts.WriteWait
	m.mu.RUnlock()

	for _, conn := range targets {
		_ = conn.WriteJSON(v, writeWait)
	}
}

// CountFor returns the number of connections attached to a session.
func (m *Manager) CountFor(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[sessionID])
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	return m.timeouts
}

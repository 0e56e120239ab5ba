package signal

import (
	"encoding/json"
	"sync"
	"time"

	"aircast/internal/core/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client wraps a websocket connection with a write lock; gorilla permits at
// most one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(timeout time.Duration, env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteJSON(env)
}

// ConnManager owns the map of live connections and implements
// ports.Messenger. A send addressed to an unknown ConnectionID is a silent
// no-op: the peer either never joined or already disconnected, and the
// protocol never surfaces that to the sender.
type ConnManager struct {
	clients      map[domain.ConnectionID]*client
	mu           sync.RWMutex
	writeTimeout time.Duration
	logger       *zap.SugaredLogger
}

func NewConnManager(writeTimeout time.Duration, logger *zap.SugaredLogger) *ConnManager {
	return &ConnManager{
		clients:      make(map[domain.ConnectionID]*client),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Register tracks a new connection. An existing connection under the same id
// is closed and replaced, mirroring a reconnecting participant.
func (m *ConnManager) Register(id domain.ConnectionID, conn *websocket.Conn) {
	m.mu.Lock()
	old, replaced := m.clients[id]
	m.clients[id] = &client{conn: conn}
	m.mu.Unlock()

	if replaced {
		old.conn.Close()
		m.logger.Infow("closed stale connection for reconnecting participant", "connection_id", id)
	}
}

// Unregister drops the connection only if it is still the one registered
// under the id, so a reconnect's cleanup cannot evict its replacement.
func (m *ConnManager) Unregister(id domain.ConnectionID, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.clients[id]; ok && current.conn == conn {
		delete(m.clients, id)
	}
}

func (m *ConnManager) SendTo(id domain.ConnectionID, event string, payload interface{}) {
	m.mu.RLock()
	cl, ok := m.clients[id]
	m.mu.RUnlock()

	if !ok {
		m.logger.Debugw("dropping message for unknown target", "connection_id", id, "event", event)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Warnw("failed to marshal outbound payload", "event", event, "error", err)
		return
	}

	if err := cl.write(m.writeTimeout, Envelope{Event: event, Payload: data}); err != nil {
		// The read loop will notice the broken connection and run cleanup.
		m.logger.Debugw("failed to write to participant", "connection_id", id, "event", event, "error", err)
	}
}

func (m *ConnManager) IsConnected(id domain.ConnectionID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.clients[id]
	return ok
}

func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// Package hub tracks open chat sockets and fans cart events out to every
// socket of a cart session.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/protocol"
)

// Connection represents a single chat socket.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex

	// closed is set, under the hub lock, when Send is closed.
	closed bool
}

// Hub manages all chat sockets.
type Hub struct {
	connections map[string]*Connection

	// session id -> connection ids
	sessions map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *SessionMessage

	mu sync.RWMutex
}

// SessionMessage is a payload addressed to every socket of a session.
type SessionMessage struct {
	SessionID string
	Data      []byte
}

var (
	// ErrBufferFull is returned when a socket's send buffer is full.
	ErrBufferFull = errors.New("send buffer full")
	// ErrConnectionClosed is returned for sockets already unregistered.
	ErrConnectionClosed = errors.New("connection closed")
)

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *SessionMessage, 256),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if conn.SessionID != "" {
				h.addToSession(conn.SessionID, conn.ID)
			}
			h.mu.Unlock()
			log.WithField("conn_id", conn.ID).Debug("chat socket registered")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				h.removeFromSession(conn.SessionID, conn.ID)
				conn.closed = true
				close(conn.Send)
			}
			h.mu.Unlock()
			log.WithField("conn_id", conn.ID).Debug("chat socket unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.sessions[msg.SessionID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- msg.Data:
				default:
					log.WithField("conn_id", connID).Warn("chat socket buffer full, closing")
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) addToSession(sessionID, connID string) {
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]bool)
	}
	h.sessions[sessionID][connID] = true
}

func (h *Hub) removeFromSession(sessionID, connID string) {
	if sessionID == "" || h.sessions[sessionID] == nil {
		return
	}
	delete(h.sessions[sessionID], connID)
	if len(h.sessions[sessionID]) == 0 {
		delete(h.sessions, sessionID)
	}
}

// NewConnection wraps a socket. Register it before use.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
}

func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BindSession moves a connection to a cart session.
func (h *Hub) BindSession(conn *Connection, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromSession(conn.SessionID, conn.ID)
	conn.SessionID = sessionID
	h.addToSession(sessionID, conn.ID)
}

// Broadcast queues data for every socket of a session.
func (h *Hub) Broadcast(sessionID string, data []byte) {
	h.broadcast <- &SessionMessage{SessionID: sessionID, Data: data}
}

func (h *Hub) BroadcastJSON(sessionID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(sessionID, data)
	return nil
}

// NotifyCartUpdated pushes the new item count to the session's sockets.
// Sessions without open sockets are skipped.
func (h *Hub) NotifyCartUpdated(sessionID string, itemCount int) {
	if !h.HasActiveConnections(sessionID) {
		return
	}
	msg := protocol.CartUpdatedMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeCartUpdated,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		ItemCount: itemCount,
	}
	if err := h.BroadcastJSON(sessionID, msg); err != nil {
		logging.FromContext(context.Background()).WithField("session_id", sessionID).
			WithError(err).Warn("failed to broadcast cart update")
	}
}

func (h *Hub) SendToConnection(conn *Connection, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn.closed {
		return ErrConnectionClosed
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

func (h *Hub) SendJSONToConnection(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.SendToConnection(conn, data)
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) HasActiveConnections(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}

// WriteMessage writes to the socket; gorilla allows one writer at a time.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}

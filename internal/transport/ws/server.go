// Package ws serves the chat assistant over a WebSocket and pushes cart
// updates to open chat windows.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/giftchoice/storefront/internal/chatbot"
	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/hub"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/protocol"
	"github.com/giftchoice/storefront/internal/service"
	"github.com/giftchoice/storefront/internal/transport/session"
)

// Server handles chat sockets.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	service  *service.Service
	upgrader websocket.Upgrader

	mu    sync.Mutex
	chats map[string]*chat
}

// chat is the assistant conversation held by one socket.
type chat struct {
	mu         sync.Mutex
	conn       *hub.Connection
	log        logrus.FieldLogger
	cartID     string
	helloed    bool
	closed     bool
	state      chatbot.State
	ctx        chatbot.Context
	lastActive time.Time
	idled      bool
}

func NewServer(cfg *config.Config, h *hub.Hub, svc *service.Service) *Server {
	return &Server{
		cfg:     cfg,
		hub:     h,
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		chats: make(map[string]*chat),
	}
}

// HandleWebSocket upgrades the request and starts the socket pumps. The
// cart session cookie is resolved first so a new shopper gets one on the
// upgrade response.
// GET /ws/chat
func (s *Server) HandleWebSocket(c echo.Context) error {
	reqLog := logging.FromContext(c.Request().Context())
	sess, cookie, err := session.Resolve(c.Request(), s.service, s.cfg)
	if err != nil {
		reqLog.WithError(err).Error("failed to resolve chat session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve session"})
	}
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), header)
	if err != nil {
		// The upgrader has already replied.
		reqLog.WithError(err).Warn("failed to upgrade chat socket")
		return nil
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)
	ws.SetReadLimit(s.cfg.ChatMaxMessageSize)

	ch := &chat{
		conn:       conn,
		log:        reqLog.WithField("conn_id", conn.ID),
		cartID:     sess.ID,
		state:      chatbot.StateHidden,
		lastActive: time.Now(),
	}
	s.mu.Lock()
	s.chats[conn.ID] = ch
	s.mu.Unlock()

	go s.writePump(ch)
	go s.readPump(ch)

	return nil
}

// readPump reads client messages until the socket fails.
func (s *Server) readPump(ch *chat) {
	conn := ch.conn
	defer func() {
		s.mu.Lock()
		delete(s.chats, conn.ID)
		s.mu.Unlock()

		ch.mu.Lock()
		ch.closed = true
		ch.mu.Unlock()

		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ChatReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ChatReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ch.log.WithError(err).Warn("chat socket closed unexpectedly")
			}
			break
		}
		s.handleMessage(ch, message)
	}
}

// writePump drains the connection's send queue and keeps it alive.
func (s *Server) writePump(ch *chat) {
	conn := ch.conn
	ticker := time.NewTicker(s.cfg.ChatPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.ChatWriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ch.log.WithError(err).Warn("failed to write chat message")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.ChatWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(ch *chat, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(ch, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	if base.Type == protocol.TypeHello {
		s.handleHello(ch, data)
		return
	}

	ch.mu.Lock()
	helloed := ch.helloed
	ch.mu.Unlock()
	if !helloed {
		s.sendError(ch, base.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	var input chatbot.Input
	switch base.Type {
	case protocol.TypeOpen:
		input.Kind = chatbot.InputOpen
	case protocol.TypeClose:
		input.Kind = chatbot.InputClose
	case protocol.TypeMessage:
		var msg protocol.TextMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(ch, base.RequestID, protocol.ErrorCodeInvalidMessage, "invalid message")
			return
		}
		input = chatbot.Input{Kind: chatbot.InputText, Text: msg.Text}
	case protocol.TypeEvent:
		var msg protocol.EventMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(ch, base.RequestID, protocol.ErrorCodeInvalidMessage, "invalid event message")
			return
		}
		switch msg.Name {
		case protocol.EventDelay:
			input.Kind = chatbot.InputDelay
		case protocol.EventScroll:
			input.Kind = chatbot.InputScroll
		default:
			s.sendError(ch, base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown event: "+msg.Name)
			return
		}
	default:
		s.sendError(ch, base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
		return
	}

	s.advance(ch, input, base.RequestID)
}

// handleHello binds the socket to a cart session: the one named in the
// hello, else the cookie session resolved at upgrade.
func (s *Server) handleHello(ch *chat, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(ch, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	ch.mu.Lock()
	cartID := ch.cartID
	ch.mu.Unlock()
	if msg.SessionID != "" && msg.SessionID != cartID {
		ctx := logging.WithLogger(context.Background(), ch.log)
		sess, _, err := s.service.ResolveSession(ctx, msg.SessionID)
		if err != nil {
			ch.log.WithError(err).Error("failed to resolve hello session")
			s.sendError(ch, msg.RequestID, protocol.ErrorCodeInternalError, "failed to resolve session")
			return
		}
		cartID = sess.ID
	}

	s.hub.BindSession(ch.conn, cartID)

	ch.mu.Lock()
	ch.cartID = cartID
	ch.helloed = true
	ch.lastActive = time.Now()
	ch.mu.Unlock()

	s.send(ch, protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHelloAck,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
			SessionID: cartID,
		},
		StoreName: s.cfg.StoreName,
	})
	ch.log.WithField("session_id", cartID).Info("chat hello completed")
}

// advance feeds one input to the assistant and replies. Idle inputs that
// produce nothing are not sent.
func (s *Server) advance(ch *chat, input chatbot.Input, requestID string) {
	ctx := logging.WithLogger(context.Background(), ch.log)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return
	}

	turn, err := s.service.Chat(ctx, ch.state, ch.ctx, input)
	if err != nil {
		ch.log.WithError(err).Error("chat turn failed")
		s.sendLocked(ch, errorMessage(ch.cartID, requestID, protocol.ErrorCodeInternalError, "chat failed"))
		return
	}
	ch.state = turn.State
	ch.ctx = turn.Context
	if input.Kind == chatbot.InputIdle {
		ch.idled = true
		if len(turn.Output.Messages) == 0 {
			return
		}
	} else {
		ch.lastActive = time.Now()
		ch.idled = false
	}

	s.sendLocked(ch, protocol.ReplyMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeReply,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: ch.cartID,
		},
		State:  turn.State,
		Output: *turn.Output,
	})
}

func (s *Server) send(ch *chat, v interface{}) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	s.sendLocked(ch, v)
}

// sendLocked queues v for the socket. ch.mu must be held; the send queue
// is closed once the chat is marked closed.
func (s *Server) sendLocked(ch *chat, v interface{}) {
	if ch.closed {
		return
	}
	if err := s.hub.SendJSONToConnection(ch.conn, v); err != nil {
		ch.log.WithError(err).Warn("failed to queue chat message")
	}
}

func (s *Server) sendError(ch *chat, requestID, code, message string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	s.sendLocked(ch, errorMessage(ch.cartID, requestID, code, message))
}

func errorMessage(sessionID, requestID, code, message string) protocol.ErrorMessage {
	return protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: sessionID,
		},
		Code:    code,
		Message: message,
	}
}

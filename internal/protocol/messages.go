// Package protocol defines the chat WebSocket message protocol between the
// storefront and its clients.
package protocol

import (
	"github.com/giftchoice/storefront/internal/chatbot"
)

// Message types from client to server
const (
	TypeHello   = "hello"
	TypeOpen    = "open"
	TypeMessage = "message"
	TypeEvent   = "event"
	TypeClose   = "close"
)

// Message types from server to client
const (
	TypeHelloAck    = "hello_ack"
	TypeReply       = "reply"
	TypeCartUpdated = "cart_updated"
	TypeError       = "error"
)

// Page events a widget may report while the assistant is hidden.
const (
	EventDelay  = "delay"
	EventScroll = "scroll"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage is sent by a client to start chatting. SessionID, when set,
// binds the socket to an existing cart session.
type HelloMessage struct {
	BaseMessage
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage confirms the bound cart session.
type HelloAckMessage struct {
	BaseMessage
	StoreName string `json:"store_name"`
}

// TextMessage carries what the shopper typed.
type TextMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// EventMessage reports a page event (delay or scroll).
type EventMessage struct {
	BaseMessage
	Name string `json:"name"`
}

// ReplyMessage is the assistant's answer to one input.
type ReplyMessage struct {
	BaseMessage
	State  chatbot.State  `json:"state"`
	Output chatbot.Output `json:"output"`
}

// CartUpdatedMessage tells open sockets the session cart changed.
type CartUpdatedMessage struct {
	BaseMessage
	ItemCount int `json:"item_count"`
}

// ErrorMessage is sent when a client message cannot be handled.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeInternalError   = "internal_error"
)

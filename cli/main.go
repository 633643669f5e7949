// Package main provides a terminal client for the storefront chat assistant.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/protocol"
)

// Client is a chat socket bound to a cart session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	storeName string
	log       logrus.FieldLogger
	done      chan struct{}
}

// NewClient connects to the chat endpoint.
func NewClient(addr string, log logrus.FieldLogger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}

	return &Client{
		conn: conn,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendHello binds the socket to sessionID (or the server-minted session
// when empty) and waits for hello_ack.
func (c *Client) SendHello(sessionID string) error {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHello,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		ClientMeta: map[string]string{
			"client": "storefront-cli",
		},
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return errors.Wrap(err, "write hello")
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return errors.Wrap(err, "read hello_ack")
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return errors.Wrap(err, "unmarshal hello_ack")
	}
	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return errors.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}
	if base.Type != protocol.TypeHelloAck {
		return errors.Errorf("expected hello_ack, got: %s", base.Type)
	}

	var ack protocol.HelloAckMessage
	json.Unmarshal(data, &ack)
	c.sessionID = ack.SessionID
	c.storeName = ack.StoreName
	return nil
}

func (c *Client) base(msgType string) protocol.BaseMessage {
	return protocol.BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		SessionID: c.sessionID,
		RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
	}
}

// Send writes a bare open or close message.
func (c *Client) Send(msgType string) error {
	return c.conn.WriteJSON(c.base(msgType))
}

// SendText sends what the shopper typed.
func (c *Client) SendText(text string) error {
	return c.conn.WriteJSON(protocol.TextMessage{BaseMessage: c.base(protocol.TypeMessage), Text: text})
}

// SendEvent reports a page event such as delay or scroll.
func (c *Client) SendEvent(name string) error {
	return c.conn.WriteJSON(protocol.EventMessage{BaseMessage: c.base(protocol.TypeEvent), Name: name})
}

// ReadMessages prints server messages until the socket closes.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					c.log.WithError(err).Warn("read failed")
				}
				return
			}

			var base protocol.BaseMessage
			if err := json.Unmarshal(data, &base); err != nil {
				c.log.WithError(err).Warn("unmarshal failed")
				continue
			}
			switch base.Type {
			case protocol.TypeReply:
				var reply protocol.ReplyMessage
				json.Unmarshal(data, &reply)
				printReply(reply)
			case protocol.TypeCartUpdated:
				var msg protocol.CartUpdatedMessage
				json.Unmarshal(data, &msg)
				fmt.Printf("\n[cart] %d item(s) in your cart\n", msg.ItemCount)
			case protocol.TypeError:
				var msg protocol.ErrorMessage
				json.Unmarshal(data, &msg)
				fmt.Printf("\n[error] %s: %s\n", msg.Code, msg.Message)
			default:
				fmt.Printf("\n[%s] %s\n", base.Type, string(data))
			}
		}
	}
}

func printReply(reply protocol.ReplyMessage) {
	fmt.Printf("\n[%s]\n", reply.State)
	for _, m := range reply.Output.Messages {
		fmt.Printf("  %s\n", m)
	}
	for _, p := range reply.Output.Products {
		fmt.Printf("  * %s  ₹%.0f  (%s)\n", p.Name, p.Price, p.ID)
	}
	if len(reply.Output.QuickReplies) > 0 {
		fmt.Printf("  try: %s\n", strings.Join(reply.Output.QuickReplies, " | "))
	}
	if reply.Output.WhatsAppURL != "" {
		fmt.Printf("  WhatsApp: %s\n", reply.Output.WhatsAppURL)
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws/chat", "Chat WebSocket address")
	sessionID := flag.String("session", "", "Cart session to resume")
	flag.Parse()

	log := logging.New("info", false)

	fmt.Printf("Connecting to %s...\n", *addr)
	client, err := NewClient(*addr, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer client.Close()

	if err := client.SendHello(*sessionID); err != nil {
		log.WithError(err).Fatal("hello failed")
	}
	fmt.Printf("Connected to %s, session %s\n", client.storeName, client.sessionID)
	fmt.Println("Type a message and press Enter to chat.")
	fmt.Println("Commands: /open, /close, /scroll (page event), /quit")
	fmt.Println()

	go client.ReadMessages()

	if err := client.Send(protocol.TypeOpen); err != nil {
		log.WithError(err).Fatal("failed to open chat")
	}

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			switch input {
			case "/quit":
				fmt.Println("Bye!")
				return
			case "/close":
				err = client.Send(protocol.TypeClose)
			case "/open":
				err = client.Send(protocol.TypeOpen)
			case "/scroll":
				err = client.SendEvent(protocol.EventScroll)
			default:
				err = client.SendText(input)
			}
			if err != nil {
				log.WithError(err).Warn("send failed")
			}
		}
	}
}

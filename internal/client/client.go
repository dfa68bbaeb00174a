// Package client plays a game against a pickends server over its WebSocket
// endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pickends/internal/server" // Reuse message types
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

var ErrDisconnected = errors.New("disconnected from server")

// Client represents a WebSocket client for the game server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
	requests  atomic.Int64
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 16),
		receive:   make(chan *server.Message, 64),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// wsURL converts an http(s) or ws(s) base URL into the /ws endpoint.
func wsURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", serverURL, u.Scheme)
	}

	u.Path = "/ws"
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	target, err := wsURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", target)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Debug("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}
		c.logger.Debug("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *server.Message) error {
	if c.ctx.Err() != nil {
		return ErrDisconnected
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrDisconnected
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Next blocks until the server sends a message.
func (c *Client) Next(ctx context.Context) (*server.Message, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok {
			return nil, ErrDisconnected
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StartGame asks the server for a new game and returns the request ID.
func (c *Client) StartGame(data server.StartGameData) (string, error) {
	return c.request(server.MessageTypeStartGame, data)
}

// Move claims the value at index.
func (c *Client) Move(index int) (string, error) {
	return c.request(server.MessageTypeMove, server.MoveData{Index: index})
}

func (c *Client) request(messageType server.MessageType, data any) (string, error) {
	msg, err := server.NewMessage(messageType, data)
	if err != nil {
		return "", err
	}
	msg.RequestID = strconv.FormatInt(c.requests.Add(1), 10)
	return msg.RequestID, c.SendMessage(msg)
}

// readPump is the only writer to receive and closes it on exit.
func (c *Client) readPump() {
	defer func() {
		close(c.receive)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.ctx.Err() == nil {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

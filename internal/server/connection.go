package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pickends/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16384
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one WebSocket client playing at most one game at a time.
type Connection struct {
	conn    *websocket.Conn
	send    chan *Message
	manager *session.Manager
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu         sync.RWMutex
	game       *session.Controller
	gameCtx    context.Context
	cancelGame context.CancelFunc

	// replyMu orders game-scoped replies against game replacement.
	replyMu sync.Mutex
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, manager *session.Manager, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 64),
		manager: manager,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection and ends its game
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()

		if g := c.current(); g != nil {
			_ = c.manager.Remove(g.ID())
		}
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) current() *session.Controller {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game
}

func (c *Connection) currentWithContext() (*session.Controller, context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game, c.gameCtx
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
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

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, CodeInvalidMessage, "Failed to parse start_game data")
			return
		}
		c.handleStartGame(msg.RequestID, data)

	case MessageTypeMove:
		var data MoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, CodeInvalidMessage, "Failed to parse move data")
			return
		}
		c.handleMove(msg.RequestID, data)

	default:
		c.sendError(msg.RequestID, CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleStartGame(requestID string, data StartGameData) {
	g, err := c.manager.Start(startOptions(data))
	if err != nil {
		c.sendFailure(requestID, err)
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)

	c.replyMu.Lock()
	c.mu.Lock()
	previous, cancelPrevious := c.game, c.cancelGame
	c.game, c.gameCtx, c.cancelGame = g, ctx, cancel
	c.mu.Unlock()
	if previous != nil {
		cancelPrevious()
		_ = c.manager.Remove(previous.ID())
	}
	c.reply(requestID, MessageTypeGameStarted, g.Snapshot())
	c.replyMu.Unlock()

	if g.ComputerToMove() {
		go c.playComputer(ctx, g)
	}
}

func (c *Connection) handleMove(requestID string, data MoveData) {
	g, ctx := c.currentWithContext()
	if g == nil {
		c.sendError(requestID, CodeNotFound, "No game in progress; send start_game first")
		return
	}

	res, err := g.ApplyHumanMove(data.Index)
	if err != nil {
		c.sendFailure(requestID, err)
		return
	}
	c.reply(requestID, MessageTypeMoveApplied, res)

	if res.Finished {
		c.reply(requestID, MessageTypeGameOver, gameOverData(g.Snapshot()))
		return
	}
	go c.playComputer(ctx, g)
}

// playComputer plays the computer's reply once its think delay has passed.
// ctx is cancelled when g is replaced or the connection closes, and
// nothing is sent for a game that is no longer current.
func (c *Connection) playComputer(ctx context.Context, g *session.Controller) {
	res, err := g.ComputerMove(ctx)

	c.replyMu.Lock()
	defer c.replyMu.Unlock()
	if ctx.Err() != nil || c.current() != g {
		return
	}
	if err != nil {
		c.sendFailure("", err)
		return
	}
	c.reply("", MessageTypeComputerMove, res)

	if res.Finished {
		c.reply("", MessageTypeGameOver, gameOverData(g.Snapshot()))
	}
}

func (c *Connection) reply(requestID string, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

func (c *Connection) sendFailure(requestID string, err error) {
	_, code := classify(err)
	c.logger.Debug("Request rejected", "code", code, "error", err)
	c.sendError(requestID, code, err.Error())
}

func (c *Connection) sendError(requestID, code, message string) {
	c.reply(requestID, MessageTypeError, ErrorData{Code: code, Message: message})
}

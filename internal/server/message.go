package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/session"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeStartGame MessageType = "start_game"
	MessageTypeMove      MessageType = "move"

	// Server to client messages
	MessageTypeGameStarted  MessageType = "game_started"
	MessageTypeMoveApplied  MessageType = "move_applied"
	MessageTypeComputerMove MessageType = "computer_move"
	MessageTypeGameOver     MessageType = "game_over"
	MessageTypeError        MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server

type StartGameData struct {
	HumanSeat   int   `json:"humanSeat"`
	BoardLength int   `json:"boardLength,omitempty"`
	Board       []int `json:"board,omitempty"`
}

type MoveData struct {
	Index int `json:"index"`
}

// Server → Client

type GameOverData struct {
	Result string            `json:"result"`
	Winner game.Seat         `json:"winner,omitempty"`
	Scores map[game.Seat]int `json:"scores"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func gameOverData(snap session.Snapshot) GameOverData {
	return GameOverData{
		Result: snap.Result,
		Winner: snap.Winner,
		Scores: snap.Scores,
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/session"
)

func dialWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func sendMessage(t *testing.T, ws *websocket.Conn, requestID string, messageType MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(messageType, data)
	require.NoError(t, err)
	msg.RequestID = requestID
	require.NoError(t, ws.WriteJSON(msg))
}

func readMessage(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func expectMessage(t *testing.T, ws *websocket.Conn, want MessageType, out any) Message {
	t.Helper()
	msg := readMessage(t, ws)
	require.Equal(t, want, msg.Type, "payload: %s", string(msg.Data))
	if out != nil {
		require.NoError(t, json.Unmarshal(msg.Data, out))
	}
	return msg
}

func TestWebSocketGame(t *testing.T) {
	srv, ts := newTestServer(t)
	ws := dialWebSocket(t, ts.URL)

	sendMessage(t, ws, "req-1", MessageTypeStartGame, StartGameData{HumanSeat: 2, Board: []int{4, 7, 2, 9}})

	var snap session.Snapshot
	msg := expectMessage(t, ws, MessageTypeGameStarted, &snap)
	assert.Equal(t, "req-1", msg.RequestID)
	assert.Equal(t, game.Seat1, snap.ComputerSeat)
	assert.Equal(t, 1, srv.manager.Len())

	// The computer opens without being asked.
	var computer session.ComputerResult
	expectMessage(t, ws, MessageTypeComputerMove, &computer)
	assert.Equal(t, 9, computer.Value)
	assert.NotEmpty(t, computer.Rationale)

	sendMessage(t, ws, "req-2", MessageTypeMove, MoveData{Index: 0})
	var applied session.MoveResult
	msg = expectMessage(t, ws, MessageTypeMoveApplied, &applied)
	assert.Equal(t, "req-2", msg.RequestID)
	assert.Equal(t, 4, applied.Value)

	expectMessage(t, ws, MessageTypeComputerMove, &computer)
	assert.Equal(t, 7, computer.Value)

	sendMessage(t, ws, "req-3", MessageTypeMove, MoveData{Index: 2})
	expectMessage(t, ws, MessageTypeMoveApplied, &applied)
	assert.True(t, applied.Finished)

	var over GameOverData
	expectMessage(t, ws, MessageTypeGameOver, &over)
	assert.Equal(t, "Player 1 wins!", over.Result)
	assert.Equal(t, game.Seat1, over.Winner)
	assert.Equal(t, map[game.Seat]int{game.Seat1: 16, game.Seat2: 6}, over.Scores)
}

func TestWebSocketErrors(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialWebSocket(t, ts.URL)

	var errData ErrorData

	sendMessage(t, ws, "a", MessageTypeMove, MoveData{Index: 0})
	msg := expectMessage(t, ws, MessageTypeError, &errData)
	assert.Equal(t, "a", msg.RequestID)
	assert.Equal(t, CodeNotFound, errData.Code)

	sendMessage(t, ws, "b", MessageType("shuffle"), nil)
	expectMessage(t, ws, MessageTypeError, &errData)
	assert.Equal(t, CodeUnknownMessageType, errData.Code)

	sendMessage(t, ws, "c", MessageTypeStartGame, StartGameData{HumanSeat: 1, Board: []int{1, 2, 3}})
	expectMessage(t, ws, MessageTypeError, &errData)
	assert.Equal(t, CodeInvalidConfiguration, errData.Code)

	sendMessage(t, ws, "d", MessageTypeStartGame, StartGameData{HumanSeat: 1, Board: []int{4, 7, 2, 9}})
	expectMessage(t, ws, MessageTypeGameStarted, nil)

	sendMessage(t, ws, "e", MessageTypeMove, MoveData{Index: 1})
	expectMessage(t, ws, MessageTypeError, &errData)
	assert.Equal(t, CodeInvalidMove, errData.Code)
}

func TestWebSocketDisconnectEndsGame(t *testing.T) {
	srv, ts := newTestServer(t)
	ws := dialWebSocket(t, ts.URL)

	sendMessage(t, ws, "", MessageTypeStartGame, StartGameData{HumanSeat: 1})
	expectMessage(t, ws, MessageTypeGameStarted, nil)
	require.Equal(t, 1, srv.manager.Len())
	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, ws.Close())

	require.Eventually(t, func() bool {
		return srv.manager.Len() == 0 && srv.ConnectionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketReplacedGameStaysQuiet(t *testing.T) {
	manager := session.NewManager(session.ManagerConfig{
		Generator:  game.GeneratorConfig{Length: 4, MaxValue: 9, Kind: game.GeneratorRandom},
		ThinkDelay: 250 * time.Millisecond,
		Logger:     testLogger(),
		Rand:       randutil.New(3),
	})
	srv := NewServer(manager, testLogger())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	ws := dialWebSocket(t, ts.URL)

	// The computer opens the first game, so it starts thinking at once.
	sendMessage(t, ws, "a", MessageTypeStartGame, StartGameData{HumanSeat: 2, Board: []int{4, 7, 2, 9}})
	expectMessage(t, ws, MessageTypeGameStarted, nil)

	sendMessage(t, ws, "b", MessageTypeStartGame, StartGameData{HumanSeat: 1, Board: []int{1, 2, 3, 4}})
	var snap session.Snapshot
	expectMessage(t, ws, MessageTypeGameStarted, &snap)
	assert.Equal(t, game.Seat1, snap.Turn)
	assert.Equal(t, 1, manager.Len())

	// Nothing may arrive for the replaced game once its think delay passes.
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(600*time.Millisecond)))
	var msg Message
	err := ws.ReadJSON(&msg)
	require.Error(t, err, "unexpected %s message: %s", msg.Type, string(msg.Data))
	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected read timeout, got %v", err)

	current, err := manager.Get(snap.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Snapshot().Moves)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/session"
	"github.com/lox/pickends/internal/strategy"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	manager := session.NewManager(session.ManagerConfig{
		Generator: game.GeneratorConfig{Length: 6, MaxValue: 20, Kind: game.GeneratorRandom},
		Logger:    testLogger(),
		Rand:      randutil.New(42),
	})
	srv := NewServer(manager, testLogger())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var body map[string]any
	status := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestStartAndPlayOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	var snap session.Snapshot
	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", StartGameRequest{
		HumanSeat: 1,
		Board:     []int{4, 7, 2, 9},
	}, &snap)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, strategy.Optimal, snap.Strategy)
	assert.Equal(t, game.Board{4, 7, 2, 9}, snap.Board)
	gameURL := ts.URL + "/api/v1/games/" + snap.ID

	var errBody ErrorData
	status = doJSON(t, http.MethodPost, gameURL+"/computer-move", nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeInvalidMove, errBody.Code)

	status = doJSON(t, http.MethodPost, gameURL+"/moves", MoveRequest{Player: 2, Index: 0}, &errBody)
	assert.Equal(t, http.StatusConflict, status, "player 2 is the computer")

	var move session.MoveResult
	status = doJSON(t, http.MethodPost, gameURL+"/moves", MoveRequest{Player: 1, Index: 0}, &move)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, move.Value)
	assert.Equal(t, game.Window{Left: 1, Right: 3}, move.Window)
	assert.Equal(t, game.Seat2, move.Turn)

	var reply session.ComputerResult
	status = doJSON(t, http.MethodPost, gameURL+"/computer-move", nil, &reply)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 9, reply.Value)
	assert.Equal(t, game.Right, reply.End)
	assert.NotEmpty(t, reply.Rationale)

	var current session.Snapshot
	status = doJSON(t, http.MethodGet, gameURL, nil, &current)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, current.Moves, 2)
	assert.Equal(t, map[game.Seat]int{game.Seat1: 4, game.Seat2: 9}, current.Scores)

	status = doJSON(t, http.MethodDelete, gameURL, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = doJSON(t, http.MethodGet, gameURL, nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, errBody.Code)
}

func TestStartGameGenerated(t *testing.T) {
	_, ts := newTestServer(t)

	var snap session.Snapshot
	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", StartGameRequest{HumanSeat: 2, BoardLength: 10}, &snap)
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, snap.Board, 10)
	assert.Equal(t, strategy.Heuristic, snap.Strategy)
	assert.Equal(t, game.Seat1, snap.Turn)
}

func TestStartGameErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{name: "odd board", body: StartGameRequest{HumanSeat: 1, Board: []int{1, 2, 3}}, wantCode: CodeInvalidConfiguration},
		{name: "bad seat", body: StartGameRequest{HumanSeat: 5}, wantCode: CodeInvalidConfiguration},
		{name: "odd length", body: StartGameRequest{HumanSeat: 1, BoardLength: 3}, wantCode: CodeInvalidConfiguration},
		{name: "unknown field", body: map[string]any{"seat": 1}, wantCode: CodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errBody ErrorData
			status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/games", tt.body, &errBody)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.wantCode, errBody.Code)
			assert.NotEmpty(t, errBody.Message)
		})
	}
}

func TestStatelessComputerMove(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name       string
		req        ComputerMoveRequest
		wantStatus int
		wantValue  int
		wantTag    strategy.Tag
		wantCode   string
	}{
		{
			name:       "optimal second mover",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 1, Right: 3}, ComputerSeat: 2},
			wantStatus: http.StatusOK,
			wantValue:  9,
			wantTag:    strategy.Optimal,
		},
		{
			name:       "heuristic first mover",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 0, Right: 3}, ComputerSeat: 1},
			wantStatus: http.StatusOK,
			wantValue:  9,
			wantTag:    strategy.Heuristic,
		},
		{
			name:       "explicit strategy",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 0, Right: 3}, ComputerSeat: 1, Strategy: "optimal"},
			wantStatus: http.StatusOK,
			wantValue:  9,
			wantTag:    strategy.Optimal,
		},
		{
			name:       "not the computer's turn",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 0, Right: 3}, ComputerSeat: 2},
			wantStatus: http.StatusConflict,
			wantCode:   CodeInvalidMove,
		},
		{
			name:       "empty window",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 4, Right: 3}, ComputerSeat: 1},
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeEngineInternal,
		},
		{
			name:       "unknown strategy",
			req:        ComputerMoveRequest{Board: []int{4, 7, 2, 9}, Window: game.Window{Left: 0, Right: 3}, ComputerSeat: 1, Strategy: "greedy"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantCode != "" {
				var errBody ErrorData
				status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/computer-move", tt.req, &errBody)
				assert.Equal(t, tt.wantStatus, status)
				assert.Equal(t, tt.wantCode, errBody.Code)
				return
			}

			var resp ComputerMoveResponse
			status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/computer-move", tt.req, &resp)
			require.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantValue, resp.Value)
			assert.Equal(t, tt.wantTag, resp.Strategy)
			assert.NotEmpty(t, resp.Rationale)
		})
	}
}

func TestStatelessComputerMoveDeterministic(t *testing.T) {
	_, ts := newTestServer(t)
	req := ComputerMoveRequest{Board: []int{3, 9, 1, 2, 8, 5}, Window: game.Window{Left: 1, Right: 5}, ComputerSeat: 2}

	var first, second ComputerMoveResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/api/v1/computer-move", req, &first))
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, ts.URL+"/api/v1/computer-move", req, &second))
	assert.Equal(t, first, second)
}

func TestShutdown(t *testing.T) {
	manager := session.NewManager(session.ManagerConfig{
		Generator: game.GeneratorConfig{Length: 4, MaxValue: 9},
		Logger:    testLogger(),
	})
	srv := NewServer(manager, testLogger())

	done := make(chan error, 1)
	go func() { done <- srv.Start("127.0.0.1:0") }()

	require.Eventually(t, func() bool {
		srv.mu.RLock()
		defer srv.mu.RUnlock()
		return srv.httpServer != nil
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}

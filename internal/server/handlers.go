package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/session"
	"github.com/lox/pickends/internal/strategy"
)

// StartGameRequest is the body of POST /api/v1/games.
type StartGameRequest = StartGameData

// MoveRequest is the body of POST /api/v1/games/{id}/moves.
type MoveRequest struct {
	Player int `json:"player"`
	Index  int `json:"index"`
}

// ComputerMoveRequest is the body of the stateless POST /api/v1/computer-move.
type ComputerMoveRequest struct {
	Board        []int       `json:"board"`
	Window       game.Window `json:"window"`
	ComputerSeat int         `json:"computerSeat"`
	Strategy     string      `json:"strategy,omitempty"`
}

// ComputerMoveResponse answers a stateless decision request.
type ComputerMoveResponse struct {
	Strategy strategy.Tag `json:"strategy"`
	strategy.Decision
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req StartGameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	c, err := s.manager.Start(startOptions(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c.Snapshot())
}

func startOptions(req StartGameData) session.StartOptions {
	opts := session.StartOptions{
		HumanSeat: game.Seat(req.HumanSeat),
		Length:    req.BoardLength,
	}
	if req.Board != nil {
		opts.Board = game.Board(req.Board)
	}
	return opts
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	c, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Remove(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	c, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req MoveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}
	if game.Seat(req.Player) != c.HumanSeat() {
		s.writeError(w, r, fmt.Errorf("%w: player %d does not hold the human seat", game.ErrInvalidMove, req.Player))
		return
	}

	res, err := c.ApplyHumanMove(req.Index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSessionComputerMove(w http.ResponseWriter, r *http.Request) {
	c, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := c.ComputerMove(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleComputerMove(w http.ResponseWriter, r *http.Request) {
	var req ComputerMoveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	var tag strategy.Tag
	if req.Strategy != "" {
		parsed, err := strategy.ParseTag(req.Strategy)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		tag = parsed
	}

	seat := game.Seat(req.ComputerSeat)
	decision, err := strategy.ComputerMove(strategy.Request{
		Board:        game.Board(req.Board),
		Window:       req.Window,
		ComputerSeat: seat,
		Tag:          tag,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if tag == "" {
		tag = strategy.TagForComputer(seat)
	}
	s.writeJSON(w, http.StatusOK, ComputerMoveResponse{Strategy: tag, Decision: decision})
}

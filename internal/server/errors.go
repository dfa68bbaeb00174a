package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/session"
)

// Error codes shared by the HTTP and WebSocket transports.
const (
	CodeInvalidConfiguration = "invalid_configuration"
	CodeInvalidMove          = "invalid_move"
	CodeBusy                 = "busy"
	CodeNotFound             = "not_found"
	CodeEngineInternal       = "engine_internal"
	CodeInvalidMessage       = "invalid_message"
	CodeUnknownMessageType   = "unknown_message_type"
	CodeCancelled            = "cancelled"
	CodeInternal             = "internal"
)

// classify maps an engine or session error onto a status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidConfiguration):
		return http.StatusBadRequest, CodeInvalidConfiguration
	case errors.Is(err, game.ErrInvalidMove):
		return http.StatusConflict, CodeInvalidMove
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, CodeBusy
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, game.ErrEngineInternal):
		return http.StatusInternalServerError, CodeEngineInternal
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeCancelled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

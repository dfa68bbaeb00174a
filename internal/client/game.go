package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/server"
	"github.com/lox/pickends/internal/session"
	"github.com/lox/pickends/internal/strategy"
)

// Player chooses the client's moves.
type Player interface {
	Choose(board game.Board, w game.Window, seat game.Seat) (int, error)
}

// AutoPlayer plays the strategy the computer would use from the same seat.
type AutoPlayer struct {
	Out io.Writer
}

func (p AutoPlayer) Choose(board game.Board, w game.Window, seat game.Seat) (int, error) {
	d, err := strategy.ComputerMove(strategy.Request{Board: board, Window: w, ComputerSeat: seat})
	if err != nil {
		return 0, err
	}
	if p.Out != nil {
		_, _ = fmt.Fprintf(p.Out, "  (%s)\n", d.Rationale)
	}
	return d.Index, nil
}

// PromptPlayer asks on in for each move: l, r or an index.
type PromptPlayer struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPromptPlayer(in io.Reader, out io.Writer) *PromptPlayer {
	return &PromptPlayer{in: bufio.NewScanner(in), out: out}
}

func (p *PromptPlayer) Choose(board game.Board, w game.Window, seat game.Seat) (int, error) {
	for {
		_, _ = fmt.Fprintf(p.out, "Take (l)eft %d or (r)ight %d: ", board[w.Left], board[w.Right])
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}

		switch answer := strings.ToLower(strings.TrimSpace(p.in.Text())); answer {
		case "l", "left":
			return w.Left, nil
		case "r", "right":
			return w.Right, nil
		default:
			if i, err := strconv.Atoi(answer); err == nil {
				return i, nil
			}
			_, _ = fmt.Fprintln(p.out, "Please answer l or r.")
		}
	}
}

// GameConfig describes the game the client asks for.
type GameConfig struct {
	Seat        game.Seat
	Board       []int
	BoardLength int
	Player      Player
	Out         io.Writer
}

// remoteGame tracks what the client knows of the server's game.
type remoteGame struct {
	seat   game.Seat
	board  game.Board
	window game.Window
	turn   game.Seat
}

func (g *remoteGame) update(res session.MoveResult) {
	g.window = res.Window
	g.turn = res.Turn
}

// Play starts a game on the server and plays it to the end.
func (c *Client) Play(ctx context.Context, cfg GameConfig) (*server.GameOverData, error) {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	if _, err := c.StartGame(server.StartGameData{
		HumanSeat:   int(cfg.Seat),
		BoardLength: cfg.BoardLength,
		Board:       cfg.Board,
	}); err != nil {
		return nil, err
	}

	var g *remoteGame
	move := func() error {
		if g == nil || g.turn != g.seat || g.window.Empty() {
			return nil
		}
		index, err := cfg.Player.Choose(g.board, g.window, g.seat)
		if err != nil {
			return err
		}
		_, err = c.Move(index)
		return err
	}

	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}

		switch msg.Type {
		case server.MessageTypeGameStarted:
			var snap session.Snapshot
			if err := json.Unmarshal(msg.Data, &snap); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", msg.Type, err)
			}
			g = &remoteGame{seat: snap.HumanSeat, board: snap.Board, window: snap.Window, turn: snap.Turn}
			c.logger.Info("Game started", "id", snap.ID, "seat", snap.HumanSeat, "strategy", snap.Strategy)
			_, _ = fmt.Fprintf(out, "Game %s: you are %s, the computer plays %s\nBoard: %s\n", snap.ID, snap.HumanSeat, snap.Strategy, snap.Board)
			for _, entry := range snap.Transcript {
				_, _ = fmt.Fprintf(out, "%s: %s\n", entry.Speaker, entry.Text)
			}
			if err := move(); err != nil {
				return nil, err
			}

		case server.MessageTypeMoveApplied:
			var res session.MoveResult
			if err := json.Unmarshal(msg.Data, &res); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", msg.Type, err)
			}
			g.update(res)
			_, _ = fmt.Fprintf(out, "You took %d.\n", res.Value)

		case server.MessageTypeComputerMove:
			var res session.ComputerResult
			if err := json.Unmarshal(msg.Data, &res); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", msg.Type, err)
			}
			g.update(res.MoveResult)
			_, _ = fmt.Fprintf(out, "Computer took %d from the %s end. %s\n", res.Value, res.End, res.Rationale)
			if !res.Finished {
				if err := move(); err != nil {
					return nil, err
				}
			}

		case server.MessageTypeGameOver:
			var over server.GameOverData
			if err := json.Unmarshal(msg.Data, &over); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", msg.Type, err)
			}
			_, _ = fmt.Fprintf(out, "%s (%d to %d)\n", over.Result, over.Scores[game.Seat1], over.Scores[game.Seat2])
			return &over, nil

		case server.MessageTypeError:
			var data server.ErrorData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", msg.Type, err)
			}
			serverErr := &ServerError{Code: data.Code, Message: data.Message}
			// A rejected move leaves the game as it was, so ask again.
			if data.Code == server.CodeInvalidMove && g != nil {
				_, _ = fmt.Fprintln(out, data.Message)
				if err := move(); err != nil {
					return nil, err
				}
				continue
			}
			return nil, serverErr

		default:
			c.logger.Debug("Ignoring message", "type", msg.Type)
		}
	}
}

// ServerError is an error reported by the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a ServerError with code.
func IsCode(err error, code string) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Code == code
}

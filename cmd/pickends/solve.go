package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/lox/pickends/internal/fileutil"
	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/randutil"
	"github.com/lox/pickends/internal/strategy"
)

// SolveCmd prints the optimal-play table and line for a board
type SolveCmd struct {
	Board    []int  `kong:"arg='',optional='',help='Board values (generated when omitted)'"`
	Length   int    `kong:"default='14',help='Board length for a generated board'"`
	MaxValue int    `kong:"default='99',help='Largest value on a generated board'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for board generation (optional)'"`
	Output   string `kong:"short='o',help='Write the solution as JSON to this file'"`
	NoTable  bool   `kong:"help='Skip the value table'"`
	NoColor  bool   `kong:"help='Disable colour output'"`
}

// Solution is the JSON form of a solved board.
type Solution struct {
	Board  game.Board          `json:"board"`
	Value  int                 `json:"value"`
	Seat1  int                 `json:"seat1"`
	Seat2  int                 `json:"seat2"`
	Line   []strategy.Decision `json:"line"`
	Values [][]int             `json:"values"`
}

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	tableBlank  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#3C3C3C"))
	seatStyles  = map[game.Seat]lipgloss.Style{
		game.Seat1: lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		game.Seat2: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00")),
	}
)

func (c *SolveCmd) Run() error {
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	board := game.Board(c.Board)
	if len(board) == 0 {
		seed, rng := randutil.Resolve(c.Seed)
		var err error
		board, err = game.Generate(rng, game.GeneratorConfig{Length: c.Length, MaxValue: c.MaxValue, Kind: game.GeneratorRandom})
		if err != nil {
			return err
		}
		fmt.Printf("Generated board (seed %d)\n", seed)
	}

	sol, err := solve(board)
	if err != nil {
		return err
	}

	printSolution(os.Stdout, sol, !c.NoTable)

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, sol, 0o644); err != nil {
			return err
		}
		fmt.Printf("\nSolution written to %s\n", c.Output)
	}
	return nil
}

// solve tabulates board and plays out the optimal line from the full window.
func solve(board game.Board) (*Solution, error) {
	full := game.FullWindow(len(board))
	t, err := strategy.NewTable(board, full)
	if err != nil {
		return nil, err
	}
	value, err := t.Value(full.Left, full.Right)
	if err != nil {
		return nil, err
	}
	line, err := t.Line(full)
	if err != nil {
		return nil, err
	}

	sol := &Solution{Board: board.Clone(), Value: value, Line: line, Values: t.Rows()}
	for i, d := range line {
		if i%2 == 0 {
			sol.Seat1 += d.Value
		} else {
			sol.Seat2 += d.Value
		}
	}
	return sol, nil
}

func printSolution(w io.Writer, sol *Solution, withTable bool) {
	_, _ = fmt.Fprintf(w, "Board: %s\n\n", sol.Board)

	if withTable {
		_, _ = fmt.Fprintln(w, valueTable(sol))
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, summaryTitle.Render("Optimal line"))
	for i, d := range sol.Line {
		seat := game.Seat1
		if i%2 == 1 {
			seat = game.Seat2
		}
		_, _ = fmt.Fprintf(w, "%3d. %s takes %d from the %s end\n", i+1, seatStyles[seat].Render(seat.String()), d.Value, d.End)
	}
	_, _ = fmt.Fprintf(w, "\nFinal score %d to %d; the first mover can guarantee a margin of %+d\n", sol.Seat1, sol.Seat2, sol.Value)
}

// valueTable renders value(i, j) with i down the side and j across the top.
func valueTable(sol *Solution) string {
	n := len(sol.Values)
	headers := make([]string, n+1)
	headers[0] = "i\\j"
	for j := range n {
		headers[j+1] = strconv.Itoa(j)
	}

	rows := make([][]string, n)
	for i, values := range sol.Values {
		row := make([]string, n+1)
		row[0] = strconv.Itoa(i)
		for j, v := range values {
			if j < i {
				row[j+1] = "·"
				continue
			}
			row[j+1] = strconv.Itoa(v)
		}
		rows[i] = row
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow || col == 0:
				return tableHeader
			case col-1 < row:
				return tableBlank
			default:
				return tableCell
			}
		}).
		String()
}

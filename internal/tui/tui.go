// Package tui renders a game session in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pickends/internal/game"
	"github.com/lox/pickends/internal/session"
)

const defaultWidth = 80

// ComputerMovedMsg carries the outcome of a computer decision.
type ComputerMovedMsg struct {
	Result session.ComputerResult
	Err    error
}

// Model is the Bubble Tea model for one game against the computer.
type Model struct {
	game   *session.Controller
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	explanation     viewport.Model
	showExplanation bool

	cursor   game.End
	thinking bool
	message  string
	isError  bool
	quitting bool

	width  int
	height int
}

// New creates a model driving c.
func New(c *session.Controller, logger *log.Logger) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	vp := viewport.New(defaultWidth-4, 8)

	m := &Model{
		game:            c,
		logger:          logger.WithPrefix("tui"),
		ctx:             ctx,
		cancel:          cancel,
		explanation:     vp,
		showExplanation: true,
		cursor:          game.Left,
		width:           defaultWidth,
	}
	m.refreshExplanation()
	return m
}

// Init starts the computer's opening move when it plays first.
func (m *Model) Init() tea.Cmd {
	if m.game.ComputerToMove() {
		m.thinking = true
		return m.computerMove()
	}
	return nil
}

func (m *Model) computerMove() tea.Cmd {
	ctx := m.ctx
	c := m.game
	return func() tea.Msg {
		res, err := c.ComputerMove(ctx)
		return ComputerMovedMsg{Result: res, Err: err}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.explanation.Width = max(msg.Width-4, 10)
		m.explanation.Height = max(msg.Height-14, 3)
		m.refreshExplanation()
		return m, nil

	case ComputerMovedMsg:
		m.thinking = false
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				return m, nil
			}
			m.setError(msg.Err)
			return m, nil
		}
		m.message = fmt.Sprintf("Computer took %d from the %s end.", msg.Result.Value, msg.Result.End)
		m.isError = false
		m.snapCursor()
		m.refreshExplanation()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.explanation, cmd = m.explanation.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case "left", "h":
		m.cursor = game.Left
		return m, nil

	case "right", "l":
		m.cursor = game.Right
		return m, nil

	case "e":
		m.showExplanation = !m.showExplanation
		return m, nil

	case "enter", " ":
		return m.pick()

	case "up", "k":
		m.explanation.ScrollUp(1)
		return m, nil

	case "down", "j":
		m.explanation.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

func (m *Model) pick() (tea.Model, tea.Cmd) {
	if m.thinking {
		m.setError(session.ErrBusy)
		return m, nil
	}

	snap := m.game.Snapshot()
	if snap.Finished {
		return m, nil
	}

	index := snap.Window.Index(m.cursor)
	res, err := m.game.ApplyHumanMove(index)
	if err != nil {
		m.setError(err)
		return m, nil
	}

	m.message = fmt.Sprintf("You took %d.", res.Value)
	m.isError = false
	m.snapCursor()
	m.refreshExplanation()

	if res.Finished {
		return m, nil
	}
	m.thinking = true
	return m, m.computerMove()
}

// snapCursor keeps the cursor on an open end once one value remains.
func (m *Model) snapCursor() {
	if m.game.Snapshot().Window.Len() == 1 {
		m.cursor = game.Left
	}
}

func (m *Model) setError(err error) {
	m.logger.Debug("Move rejected", "error", err)
	m.message = err.Error()
	m.isError = true
}

func (m *Model) refreshExplanation() {
	entries := m.game.Snapshot().Transcript
	width := m.explanation.Width

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, renderEntry(entry, width))
	}
	m.explanation.SetContent(strings.Join(lines, "\n"))
	m.explanation.GotoBottom()
}

func renderEntry(entry session.Entry, width int) string {
	var speaker string
	switch entry.Speaker {
	case session.SpeakerComputer:
		speaker = ComputerSpeakerStyle.Render("Computer:")
	case session.SpeakerPlayer:
		speaker = PlayerSpeakerStyle.Render("You:")
	default:
		return WarningStyle.Render(entry.Text)
	}
	text := lipgloss.NewStyle().Width(max(width-lipgloss.Width(speaker)-1, 10)).Render(entry.Text)
	return lipgloss.JoinHorizontal(lipgloss.Top, speaker, " ", text)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.game.Snapshot()

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("pickends  •  you are %s  •  computer plays %s", snap.HumanSeat, snap.Strategy)))
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard(snap))
	b.WriteString("\n")
	b.WriteString(m.renderScores(snap))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(snap))
	b.WriteString("\n")

	if m.showExplanation {
		b.WriteString(ExplanationStyle.Width(max(m.width-2, 10)).Render(m.explanation.View()))
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("←/→ choose end • enter pick • e explanation • ↑/↓ scroll • q quit"))
	return b.String()
}

func (m *Model) renderBoard(snap session.Snapshot) string {
	owner := make(map[int]game.Seat, len(snap.Moves))
	for _, mv := range snap.Moves {
		owner[mv.Index] = mv.Seat
	}

	cells := make([]string, len(snap.Board))
	for i, v := range snap.Board {
		label := fmt.Sprintf("%d", v)
		style := ValueStyle

		switch seat, taken := owner[i]; {
		case taken && seat == snap.HumanSeat:
			style = HumanTakenStyle
		case taken:
			style = ComputerTakenStyle
		case !snap.Finished && i == snap.Window.Index(m.cursor) && snap.Turn == snap.HumanSeat:
			style = SelectedStyle
		case i == snap.Window.Left || i == snap.Window.Right:
			style = OpenEndStyle
		}
		cells[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) renderScores(snap session.Snapshot) string {
	human := snap.Scores[snap.HumanSeat]
	computer := snap.Scores[snap.ComputerSeat]
	return fmt.Sprintf("%s %d   %s %d",
		PlayerSpeakerStyle.Render("You:"), human,
		ComputerSpeakerStyle.Render("Computer:"), computer)
}

func (m *Model) renderStatus(snap session.Snapshot) string {
	switch {
	case snap.Finished:
		return SuccessStyle.Render(snap.Result)
	case m.isError:
		return ErrorStyle.Render(m.message)
	case m.thinking:
		return WarningStyle.Render("Computer is thinking...")
	case m.message != "":
		return InfoStyle.Render(m.message) + "  " + WarningStyle.Render("Your turn.")
	default:
		return WarningStyle.Render("Your turn.")
	}
}

// Quitting reports whether the user asked to leave.
func (m *Model) Quitting() bool { return m.quitting }

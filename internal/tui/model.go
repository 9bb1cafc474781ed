// Package tui is the Bubble Tea front end for the human seat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/internal/mood"
	"github.com/lox/homegame/poker"
)

// Raise amount bounds for the arrow keys
const (
	RaiseMin  = 10
	RaiseMax  = 1000
	RaiseStep = 10
)

const maxLogLines = 200

// EventMsg carries a game event into the program
type EventMsg struct {
	Event game.GameEvent
}

// MoodMsg carries a mood reading into the program
type MoodMsg struct {
	Reading mood.Reading
}

// Player submits the human seat's decisions
type Player interface {
	Seat() int
	Submit(kind game.ActionKind, amount int) bool
}

// Resetter abandons the hand in progress
type Resetter interface {
	ResetHand() bool
}

type seatView struct {
	game.SeatSnapshot
	Folded bool
}

// Model represents the Bubble Tea model for the table
type Model struct {
	player   Player
	resetter Resetter
	logger   *log.Logger

	keys keyMap
	help help.Model
	log  viewport.Model

	formatter *game.EventFormatter
	lines     []string

	// Table state rebuilt from events
	handNumber int
	dealer     int
	seats      []seatView
	pot        int
	board      []poker.Card
	holeCards  []poker.Card
	onTurn     int
	request    *game.DecisionRequest
	raise      int
	mood       *mood.Reading
	status     string
	over       bool

	width    int
	height   int
	quitting bool
}

// NewModel creates a model for the human seat played by player
func NewModel(player Player, resetter Resetter, logger *log.Logger) *Model {
	vp := viewport.New(60, 12)
	return &Model{
		player:   player,
		resetter: resetter,
		logger:   logger.WithPrefix("tui"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		log:      vp,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			Perspective: player.Seat(),
		}),
		onTurn: -1,
		raise:  RaiseMin,
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.log.Width = max(msg.Width-4, 10)
		m.log.Height = max(msg.Height-16, 3)
		m.log.GotoBottom()

	case EventMsg:
		m.handleEvent(msg.Event)

	case MoodMsg:
		r := msg.Reading
		m.mood = &r

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Less):
		lo, _ := m.raiseBounds()
		m.raise = max(m.raise-RaiseStep, lo)
	case key.Matches(msg, m.keys.More):
		_, hi := m.raiseBounds()
		m.raise = min(m.raise+RaiseStep, hi)
	case key.Matches(msg, m.keys.Call):
		m.submit(game.Call, 0)
	case key.Matches(msg, m.keys.Check):
		m.submit(game.Check, 0)
	case key.Matches(msg, m.keys.Raise):
		if m.request != nil && m.raise <= 0 {
			m.status = "Not enough chips to raise"
			return nil
		}
		m.submit(game.Raise, m.raise)
	case key.Matches(msg, m.keys.Fold):
		m.submit(game.Fold, 0)
	case key.Matches(msg, m.keys.Reset):
		if m.resetter != nil && m.resetter.ResetHand() {
			m.status = "Resetting hand..."
		}
	default:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) submit(kind game.ActionKind, amount int) {
	if m.request == nil {
		m.status = "Not your turn"
		return
	}
	if !m.player.Submit(kind, amount) {
		m.status = "Too many pending actions, try again"
		return
	}
	m.logger.Debug("Submitted action", "action", kind, "amount", amount)
	m.request = nil
	m.status = ""
}

func (m *Model) handleEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.HandStartEvent:
		m.handNumber = e.Number
		m.dealer = e.Dealer
		m.seats = make([]seatView, len(e.Seats))
		for i, s := range e.Seats {
			m.seats[i] = seatView{SeatSnapshot: s}
		}
		m.pot = 0
		m.board = nil
		m.holeCards = nil
		m.request = nil
		m.onTurn = -1
		m.status = ""
	case game.HoleCardsDealtEvent:
		if e.Seat == m.player.Seat() {
			m.holeCards = e.Cards
		}
	case game.PotChangedEvent:
		m.pot = e.Pot
	case game.StackChangedEvent:
		if e.Seat >= 0 && e.Seat < len(m.seats) {
			m.seats[e.Seat].Stack = e.Stack
		}
	case game.CommunityCardEvent:
		m.board = append(m.board, e.Card)
	case game.TurnEvent:
		m.onTurn = e.Request.Seat
		m.request = nil
		if e.Request.Seat == m.player.Seat() {
			req := e.Request
			m.request = &req
			lo, hi := m.raiseBounds()
			m.raise = min(max(m.raise, lo), hi)
		}
	case game.PlayerActionEvent:
		if e.Action == game.Fold && e.Seat >= 0 && e.Seat < len(m.seats) {
			m.seats[e.Seat].Folded = true
		}
	case game.IllegalActionEvent:
		if e.Seat == m.player.Seat() {
			m.status = e.Message
		}
	case game.HandEndEvent, game.HandAbortedEvent:
		m.onTurn = -1
		m.request = nil
	case game.SessionOverEvent:
		m.over = true
		m.onTurn = -1
		m.request = nil
	}

	if text, ok := m.formatter.Format(event); ok {
		m.appendLog(strings.Split(strings.TrimRight(text, "\n"), "\n")...)
	}
}

func (m *Model) appendLog(lines ...string) {
	m.lines = append(m.lines, lines...)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := " ♠ ♥ Texas Hold'em ♦ ♣ "
	if m.handNumber > 0 {
		title += fmt.Sprintf("• Hand #%d ", m.handNumber)
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.renderSeats())
	b.WriteString("\n")
	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Pot: $%d", m.pot)))
	b.WriteString("   Board: ")
	b.WriteString(formatCards(m.board))
	b.WriteString("\n")
	if len(m.holeCards) > 0 {
		b.WriteString("Your cards: " + formatCards(m.holeCards) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(PaneStyle.Render(m.log.View()))
	b.WriteString("\n")
	b.WriteString(m.renderActions())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(ErrorStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderSeats() string {
	var b strings.Builder
	for _, s := range m.seats {
		name := s.Name
		style := PlayerInfoStyle
		switch {
		case !s.Active:
			style = FoldedStyle
			name += " (out)"
		case s.Folded:
			style = FoldedStyle
		case s.Index == m.onTurn:
			style = TurnStyle
		}
		if s.Index == m.player.Seat() && m.mood != nil && s.Active && !s.Folded {
			style = style.Foreground(m.mood.State.Color())
		}

		marker := "  "
		if s.Index == m.dealer {
			marker = "D "
		}
		if s.Index == m.onTurn {
			marker = "▶ "
		}
		line := fmt.Sprintf("%s%-14s $%d", marker, name, s.Stack)
		if s.Index == m.player.Seat() && m.mood != nil {
			line += InfoStyle.Render(fmt.Sprintf("  [%s %.2f %.2f %.2f]",
				m.mood.State, m.mood.Bands[0], m.mood.Bands[1], m.mood.Bands[2]))
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

func (m *Model) renderActions() string {
	if m.over {
		return WarningStyle.Render("Game over. Press q to quit.")
	}
	if m.request == nil {
		return InfoStyle.Render("Waiting...")
	}
	call := "[k check]"
	if !m.request.CanCheck() {
		call = fmt.Sprintf("[c call $%d]", min(m.request.ToCall, m.request.Stack))
	}
	return ActionsStyle.Render(fmt.Sprintf("Your turn: %s [r raise +$%d] [f fold]  stack $%d",
		call, m.raise, m.request.Stack))
}

// raiseBounds limits the raise selector to what the stack can cover after
// calling. hi is zero or less when the seat cannot raise at all.
func (m *Model) raiseBounds() (lo, hi int) {
	lo, hi = RaiseMin, RaiseMax
	if m.request != nil {
		hi = min(hi, m.request.Stack-m.request.ToCall)
		lo = min(lo, hi)
	}
	return lo, hi
}

// RaiseAmount returns the raise delta the arrow keys have selected
func (m *Model) RaiseAmount() int {
	return m.raise
}

// Status returns the last status message
func (m *Model) Status() string {
	return m.status
}

// Log returns the event log lines
func (m *Model) Log() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

func formatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			formatted[i] = RedCardStyle.Render(card.String())
		} else {
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

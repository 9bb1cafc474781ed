package tui

import (
	"io"
	"os"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/internal/mood"
	"github.com/lox/homegame/poker"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeResetter struct{ resets int }

func (r *fakeResetter) ResetHand() bool {
	r.resets++
	return true
}

func newTestModel(t *testing.T) (*Model, *game.Inbox, *fakeResetter) {
	t.Helper()
	inbox := game.NewInbox(4)
	resetter := &fakeResetter{}
	m := NewModel(game.NewHumanSource(0, inbox), resetter, log.New(io.Discard))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(EventMsg{Event: game.HandStartEvent{
		Number: 3,
		Dealer: 1,
		Seats: []game.SeatSnapshot{
			{Index: 0, Name: "PokerStar121", Kind: game.Human, Stack: 1000, Active: true},
			{Index: 1, Name: "DarkNite12", Kind: game.AI, Stack: 1000, Active: true},
			{Index: 2, Name: "RavensFan08", Kind: game.AI, Stack: 1000, Active: true},
			{Index: 3, Name: "AAWizard17", Kind: game.AI, Stack: 0, Active: false},
		},
	}})
	return m, inbox, resetter
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func yourTurn(m *Model, toCall int) {
	m.Update(EventMsg{Event: game.TurnEvent{Request: game.DecisionRequest{Seat: 0, ToCall: toCall, Stack: 980}}})
}

func TestKeysSubmitDecisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want game.Decision
	}{
		{"c", game.Decision{Seat: 0, Kind: game.Call}},
		{"k", game.Decision{Seat: 0, Kind: game.Check}},
		{"f", game.Decision{Seat: 0, Kind: game.Fold}},
		{"r", game.Decision{Seat: 0, Kind: game.Raise, Amount: RaiseMin}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			m, inbox, _ := newTestModel(t)
			yourTurn(m, 20)
			m.Update(keyRunes(tt.key))

			got := inbox.Drain()
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestKeysIgnoredWhenNotOnTurn(t *testing.T) {
	t.Parallel()
	m, inbox, _ := newTestModel(t)

	m.Update(EventMsg{Event: game.TurnEvent{Request: game.DecisionRequest{Seat: 2}}})
	m.Update(keyRunes("c"))

	assert.Empty(t, inbox.Drain())
	assert.Equal(t, "Not your turn", m.Status())
}

func TestRaiseAmountBounds(t *testing.T) {
	t.Parallel()
	m, inbox, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, RaiseMin, m.RaiseAmount())

	for range 200 {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, RaiseMax, m.RaiseAmount())

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, RaiseMax-RaiseStep, m.RaiseAmount())

	yourTurn(m, 0)
	assert.Equal(t, 980, m.RaiseAmount(), "clamped to the stack on turn")
	m.Update(keyRunes("r"))
	got := inbox.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, 980, got[0].Amount)
}

func TestRaiseSelectorFollowsStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stack  int
		toCall int
		want   int // 0 means no raise is submitted
	}{
		{"capped by stack after calling", 100, 20, 80},
		{"short stack raises what is left", 25, 20, 5},
		{"no chips left to raise", 20, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, inbox, _ := newTestModel(t)
			m.Update(EventMsg{Event: game.TurnEvent{Request: game.DecisionRequest{Seat: 0, ToCall: tt.toCall, Stack: tt.stack}}})
			for range 20 {
				m.Update(tea.KeyMsg{Type: tea.KeyRight})
			}
			m.Update(keyRunes("r"))

			got := inbox.Drain()
			if tt.want == 0 {
				assert.Empty(t, got)
				assert.Equal(t, "Not enough chips to raise", m.Status())
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Amount)
		})
	}
}

func TestResetAndQuitKeys(t *testing.T) {
	t.Parallel()
	m, _, resetter := newTestModel(t)

	m.Update(keyRunes("n"))
	assert.Equal(t, 1, resetter.resets)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestEventsUpdateTable(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t)

	m.Update(EventMsg{Event: game.HoleCardsDealtEvent{Seat: 0, Cards: poker.MustParseCards("Ah Kd")}})
	m.Update(EventMsg{Event: game.HoleCardsDealtEvent{Seat: 1, Cards: poker.MustParseCards("2c 2d")}})
	m.Update(EventMsg{Event: game.PotChangedEvent{Pot: 30}})
	m.Update(EventMsg{Event: game.StackChangedEvent{Seat: 2, Stack: 980}})
	m.Update(EventMsg{Event: game.PlayerActionEvent{Seat: 1, Name: "DarkNite12", Action: game.Fold}})
	m.Update(EventMsg{Event: game.CommunityCardEvent{Card: poker.MustParseCards("9s")[0]}})
	m.Update(MoodMsg{Reading: mood.Reading{State: mood.Calm, Bands: [3]float64{0.5, 0.47, 0.53}}})

	assert.Equal(t, 30, m.pot)
	assert.Equal(t, 980, m.seats[2].Stack)
	assert.True(t, m.seats[1].Folded)
	assert.Len(t, m.board, 1)
	assert.Len(t, m.holeCards, 2, "only the human's cards are kept")

	view := m.View()
	assert.Contains(t, view, "Hand #3")
	assert.Contains(t, view, "Pot: $30")
	assert.Contains(t, view, "AAWizard17 (out)")
	assert.Contains(t, view, "Calm 0.50 0.47 0.53")
	assert.Contains(t, m.Log(), "DarkNite12: folds")
	assert.Contains(t, m.Log(), "Dealt to seat 0: [A♥ K♦]")
	assert.NotContains(t, m.Log(), "Dealt to seat 1: [2♣ 2♦]")
}

func TestIllegalActionShowsStatus(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(t)
	yourTurn(m, 20)
	m.Update(keyRunes("k"))
	m.Update(EventMsg{Event: game.IllegalActionEvent{Seat: 0, Name: "PokerStar121", Action: game.Check, Message: "20 to call"}})
	assert.Equal(t, "20 to call", m.Status())
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func TestBridgeForwardsMessages(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	bridge := NewBridge(sender)

	bridge.OnEvent(game.PotChangedEvent{Pot: 40})
	bridge.OnMood(mood.Reading{State: mood.Focused})

	require.Len(t, sender.msgs, 2)
	assert.Equal(t, EventMsg{Event: game.PotChangedEvent{Pot: 40}}, sender.msgs[0])
	assert.Equal(t, MoodMsg{Reading: mood.Reading{State: mood.Focused}}, sender.msgs[1])
}

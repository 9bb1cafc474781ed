package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/internal/mood"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards game events and mood readings into the program
type Bridge struct {
	sender Sender
}

// NewBridge creates a bridge to sender
func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

// OnEvent implements game.EventSubscriber
func (b *Bridge) OnEvent(event game.GameEvent) {
	b.sender.Send(EventMsg{Event: event})
}

// OnMood forwards a mood reading
func (b *Bridge) OnMood(r mood.Reading) {
	b.sender.Send(MoodMsg{Reading: r})
}

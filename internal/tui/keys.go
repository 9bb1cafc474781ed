package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Call   key.Binding
	Check  key.Binding
	Raise  key.Binding
	Fold   key.Binding
	Less   key.Binding
	More   key.Binding
	Reset  key.Binding
	Quit   key.Binding
	Scroll key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Call:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "call")),
		Check:  key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "check")),
		Raise:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "raise")),
		Fold:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fold")),
		Less:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "raise -10")),
		More:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "raise +10")),
		Reset:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new hand")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll log")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Call, k.Check, k.Raise, k.Fold, k.Less, k.More, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Call, k.Check, k.Raise, k.Fold},
		{k.Less, k.More, k.Scroll},
		{k.Reset, k.Quit},
	}
}

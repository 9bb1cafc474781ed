// Package display renders game events as styled lines for headless play.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/homegame/internal/game"
	"github.com/lox/homegame/poker"
)

type styles struct {
	header  lipgloss.Style
	street  lipgloss.Style
	action  lipgloss.Style
	winner  lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	red     lipgloss.Style
	black   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		street:  r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		action:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		winner:  r.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		red:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		black:   r.NewStyle().Bold(true),
	}
}

// Options configures a Console
type Options struct {
	Profile        termenv.Profile // Colour profile, termenv.Ascii disables styling
	Perspective    int             // Seat whose hole cards are printed, -1 for none
	ShowHoleCards  bool            // Print every seat's hole cards
	ShowReasonings bool
}

// Console is an event subscriber that prints one line per event
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	formatter *game.EventFormatter
	styles    styles
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer, opts Options) *Console {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(opts.Profile)

	return &Console{
		w: w,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			ShowReasonings: opts.ShowReasonings,
			ShowHoleCards:  opts.ShowHoleCards,
			Perspective:    opts.Perspective,
		}),
		styles: newStyles(r),
	}
}

// OnEvent implements game.EventSubscriber
func (c *Console) OnEvent(event game.GameEvent) {
	text, ok := c.render(event)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, text)
}

func (c *Console) render(event game.GameEvent) (string, bool) {
	s := c.styles
	switch e := event.(type) {
	case game.HandStartEvent:
		return "\n" + s.header.Render(c.formatter.FormatHandStart(e)), true
	case game.StreetChangeEvent:
		return s.street.Render(c.formatter.FormatStreetChange(e)), true
	case game.HoleCardsRevealedEvent:
		text := fmt.Sprintf("%s shows %s", e.Name, c.cards(e.Cards))
		if e.HasClass {
			text += " - " + e.Class.String()
		}
		return s.info.Render(text), true
	case game.HandEndEvent:
		return s.winner.Render(strings.TrimRight(c.formatter.FormatHandEnd(e), "\n")), true
	case game.IllegalActionEvent, game.HandAbortedEvent:
		text, _ := c.formatter.Format(event)
		return s.warning.Render(text), true
	case game.SessionOverEvent:
		return s.header.Render(strings.TrimRight(c.formatter.FormatSessionOver(e), "\n")), true
	}

	text, ok := c.formatter.Format(event)
	if !ok {
		return "", false
	}
	return s.action.Render(text), true
}

func (c *Console) cards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			parts[i] = c.styles.red.Render(card.String())
		} else {
			parts[i] = c.styles.black.Render(card.String())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

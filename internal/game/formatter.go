package game

import (
	"fmt"
	"strings"

	"github.com/lox/homegame/poker"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowReasonings bool // Include AI reasoning
	ShowHoleCards  bool // Show every seat's dealt cards, not just Perspective's
	Perspective    int  // Seat whose hole cards are always shown, -1 for none
}

// EventFormatter provides centralized formatting for all game events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any event that has a text form. Events with nothing to say
// (turns, pot and stack updates) return false.
func (ef *EventFormatter) Format(event GameEvent) (string, bool) {
	switch e := event.(type) {
	case HandStartEvent:
		return ef.FormatHandStart(e), true
	case HoleCardsDealtEvent:
		line := ef.FormatHoleCards(e.Seat, "", e.Cards)
		return line, line != ""
	case BlindPostedEvent:
		return ef.FormatBlind(e), true
	case PlayerActionEvent:
		return ef.FormatPlayerAction(e), true
	case StreetChangeEvent:
		return ef.FormatStreetChange(e), true
	case HoleCardsRevealedEvent:
		return ef.FormatReveal(e), true
	case HandEndEvent:
		return ef.FormatHandEnd(e), true
	case IllegalActionEvent:
		return fmt.Sprintf("%s: %s rejected (%s)", e.Name, e.Action, e.Message), true
	case HandAbortedEvent:
		return fmt.Sprintf("Hand %s abandoned: %s. Stakes returned.", shortID(e.HandID), e.Reason), true
	case SessionOverEvent:
		return ef.FormatSessionOver(e), true
	default:
		return "", false
	}
}

// FormatPlayerAction formats a player action event into a human-readable string
func (ef *EventFormatter) FormatPlayerAction(event PlayerActionEvent) string {
	var text string
	switch event.Action {
	case Fold:
		text = fmt.Sprintf("%s: folds", event.Name)
	case Check:
		text = fmt.Sprintf("%s: checks", event.Name)
	case Call:
		text = fmt.Sprintf("%s: calls $%d (pot now: $%d)", event.Name, event.Amount, event.PotAfter)
	case Raise:
		text = fmt.Sprintf("%s: raises to $%d (pot now: $%d)", event.Name, event.TargetBet, event.PotAfter)
	default:
		text = fmt.Sprintf("%s: %s $%d", event.Name, event.Action, event.Amount)
	}

	if ef.opts.ShowReasonings && event.Reasoning != "" {
		text += fmt.Sprintf(" (%s)", event.Reasoning)
	}
	return text
}

// FormatBlind formats a forced bet
func (ef *EventFormatter) FormatBlind(event BlindPostedEvent) string {
	kind := "small"
	if event.Big {
		kind = "big"
	}
	return fmt.Sprintf("%s: posts %s blind $%d", event.Name, kind, event.Amount)
}

// FormatStreetChange formats a street change event into a human-readable string
func (ef *EventFormatter) FormatStreetChange(event StreetChangeEvent) string {
	board := event.Community
	switch {
	case event.Street == Flop && len(board) >= 3:
		return fmt.Sprintf("*** FLOP *** [%s]", poker.FormatCards(board[:3]))
	case event.Street == Turn && len(board) >= 4:
		return fmt.Sprintf("*** TURN *** [%s] [%s]", poker.FormatCards(board[:3]), board[3])
	case event.Street == River && len(board) >= 5:
		return fmt.Sprintf("*** RIVER *** [%s] [%s]", poker.FormatCards(board[:4]), board[4])
	case event.Street == Showdown && len(board) > 0:
		return fmt.Sprintf("*** SHOWDOWN *** [%s]", poker.FormatCards(board))
	default:
		return fmt.Sprintf("*** %s ***", strings.ToUpper(event.Street.String()))
	}
}

// FormatHandStart formats a hand start event into a human-readable string
func (ef *EventFormatter) FormatHandStart(event HandStartEvent) string {
	dealer := "?"
	if event.Dealer >= 0 && event.Dealer < len(event.Seats) {
		dealer = event.Seats[event.Dealer].Name
	}
	return fmt.Sprintf("Hand #%d • %d players • $%d/$%d • dealer %s",
		event.Number, len(event.Seats), event.SmallBlind, event.BigBlind, dealer)
}

// FormatHoleCards formats dealt cards. Cards the options hide return "".
func (ef *EventFormatter) FormatHoleCards(seat int, name string, cards []poker.Card) string {
	if len(cards) == 0 {
		return ""
	}
	if seat != ef.opts.Perspective && !ef.opts.ShowHoleCards {
		return ""
	}
	if name == "" {
		name = fmt.Sprintf("seat %d", seat)
	}
	return fmt.Sprintf("Dealt to %s: [%s]", name, poker.FormatCards(cards))
}

// FormatReveal formats the cards shown at the end of a hand
func (ef *EventFormatter) FormatReveal(event HoleCardsRevealedEvent) string {
	text := fmt.Sprintf("%s shows [%s]", event.Name, poker.FormatCards(event.Cards))
	if event.HasClass {
		text += fmt.Sprintf(" - %s", event.Class)
	}
	return text
}

// FormatHandEnd formats a hand end event into a human-readable string
func (ef *EventFormatter) FormatHandEnd(event HandEndEvent) string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("=== Hand %s Complete ===\n", shortID(event.HandID)))
	result.WriteString(fmt.Sprintf("Pot: $%d\n", event.Pot))

	for _, winner := range event.Winners {
		text := fmt.Sprintf("Winner: %s ($%d)", winner.Name, winner.Amount)
		if winner.HasClass {
			text += fmt.Sprintf(" - %s", winner.Class)
		}
		result.WriteString(text + "\n")
	}
	if event.Remainder > 0 {
		result.WriteString(fmt.Sprintf("Unsplittable $%d left on the table\n", event.Remainder))
	}

	return result.String()
}

// FormatSessionOver formats the final standings
func (ef *EventFormatter) FormatSessionOver(event SessionOverEvent) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("=== Game over after %d hands ===\n", event.HandsPlayed))
	for _, seat := range event.Seats {
		result.WriteString(fmt.Sprintf("%s: $%d\n", seat.Name, seat.Stack))
	}
	return result.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package game

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/homegame/internal/fileutil"
	"github.com/lox/homegame/poker"
)

// HandHistoryWriter interface for writing hand history
type HandHistoryWriter interface {
	WriteHandHistory(handID string, content string) error
}

// FileHandHistoryWriter writes hand history to files
type FileHandHistoryWriter struct {
	directory string
}

// NewFileHandHistoryWriter creates a new file-based hand history writer
func NewFileHandHistoryWriter(directory string) *FileHandHistoryWriter {
	return &FileHandHistoryWriter{directory: directory}
}

// WriteHandHistory writes hand history to a file
func (w *FileHandHistoryWriter) WriteHandHistory(handID string, content string) error {
	filename := filepath.Join(w.directory, fmt.Sprintf("hand_%s.txt", handID))
	if err := fileutil.WriteFileAtomic(filename, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write hand history file: %w", err)
	}
	return nil
}

// NoOpHandHistoryWriter is a no-op writer for tests
type NoOpHandHistoryWriter struct{}

// WriteHandHistory does nothing
func (w *NoOpHandHistoryWriter) WriteHandHistory(handID string, content string) error {
	return nil
}

// HandAction is one line of betting in the history
type HandAction struct {
	Name      string
	Action    string // fold, check, call, raise, small blind, big blind
	Amount    int
	TargetBet int
	PotAfter  int
	Street    Street
	Reasoning string
	Timestamp time.Time
}

// HandHistory is the record of a single hand, built from its events
type HandHistory struct {
	HandID     string
	Number     int
	StartTime  time.Time
	SmallBlind int
	BigBlind   int
	Dealer     int
	Seats      []SeatSnapshot // Stacks at hand start
	HoleCards  map[int][]poker.Card
	Actions    []HandAction
	Community  []poker.Card
	Classes    map[int]poker.StrengthClass
	FinalPot   int
	Remainder  int
	Winners    []WinnerInfo
	Aborted    string // Reason, if the hand was abandoned
	Complete   bool
}

func newHandHistory(e HandStartEvent) *HandHistory {
	return &HandHistory{
		HandID:     e.HandID,
		Number:     e.Number,
		StartTime:  e.Timestamp(),
		SmallBlind: e.SmallBlind,
		BigBlind:   e.BigBlind,
		Dealer:     e.Dealer,
		Seats:      slices.Clone(e.Seats),
		HoleCards:  make(map[int][]poker.Card),
		Classes:    make(map[int]poker.StrengthClass),
	}
}

// OnEvent implements EventSubscriber interface
func (hh *HandHistory) OnEvent(event GameEvent) {
	switch e := event.(type) {
	case HoleCardsDealtEvent:
		hh.HoleCards[e.Seat] = slices.Clone(e.Cards)
	case BlindPostedEvent:
		kind := "small blind"
		if e.Big {
			kind = "big blind"
		}
		hh.Actions = append(hh.Actions, HandAction{
			Name:      e.Name,
			Action:    kind,
			Amount:    e.Amount,
			Street:    PreFlop,
			Timestamp: e.Timestamp(),
		})
	case PlayerActionEvent:
		hh.Actions = append(hh.Actions, HandAction{
			Name:      e.Name,
			Action:    e.Action.String(),
			Amount:    e.Amount,
			TargetBet: e.TargetBet,
			PotAfter:  e.PotAfter,
			Street:    e.Street,
			Reasoning: e.Reasoning,
			Timestamp: e.Timestamp(),
		})
	case StreetChangeEvent:
		hh.Community = slices.Clone(e.Community)
	case HoleCardsRevealedEvent:
		if e.HasClass {
			hh.Classes[e.Seat] = e.Class
		}
	case HandEndEvent:
		hh.FinalPot = e.Pot
		hh.Remainder = e.Remainder
		hh.Winners = slices.Clone(e.Winners)
		hh.Community = slices.Clone(e.Board)
		hh.Complete = true
	case HandAbortedEvent:
		hh.Aborted = e.Reason
		hh.Complete = true
	}
}

// Text renders the hand as plain text
func (hh *HandHistory) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== HAND #%d %s ===\n", hh.Number, hh.HandID)
	fmt.Fprintf(&b, "Date: %s\n", hh.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Blinds: %d/%d\n", hh.SmallBlind, hh.BigBlind)
	fmt.Fprintf(&b, "Players: %d\n\n", len(hh.Seats))

	b.WriteString("STARTING POSITIONS:\n")
	for _, seat := range hh.Seats {
		marker := ""
		if seat.Index == hh.Dealer {
			marker = " [D]"
		}
		if !seat.Active {
			marker += " (out)"
		}
		fmt.Fprintf(&b, "Seat %d: %s (%d chips)%s\n", seat.Index+1, seat.Name, seat.Stack, marker)
	}
	b.WriteString("\n")

	b.WriteString("HOLE CARDS:\n")
	for _, seat := range hh.Seats {
		if cards := hh.HoleCards[seat.Index]; len(cards) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", seat.Name, poker.FormatCards(cards))
		}
	}
	b.WriteString("\n")

	if len(hh.Actions) > 0 {
		b.WriteString("HAND ACTION:\n")
		shown := make(map[Street]bool)
		for _, action := range hh.Actions {
			if !shown[action.Street] {
				shown[action.Street] = true
				hh.writeStreetHeader(&b, action.Street)
			}
			b.WriteString(formatHistoryAction(action) + "\n")
		}
		b.WriteString("\n")
	}

	if hh.Aborted != "" {
		fmt.Fprintf(&b, "*** ABANDONED *** %s, stakes returned\n", hh.Aborted)
	} else if hh.Complete {
		b.WriteString(hh.summary())
	}

	b.WriteString("=== END HAND ===\n")
	return b.String()
}

func (hh *HandHistory) writeStreetHeader(b *strings.Builder, street Street) {
	if street == PreFlop {
		b.WriteString("*** PRE-FLOP ***\n")
		return
	}
	fmt.Fprintf(b, "\n*** %s ***\n", strings.ToUpper(street.String()))
	if n := street.boardSize(); n > 0 && len(hh.Community) >= n {
		fmt.Fprintf(b, "Board: [%s]\n", poker.FormatCards(hh.Community[:n]))
	}
}

func (hh *HandHistory) summary() string {
	var b strings.Builder
	b.WriteString("*** SUMMARY ***\n")
	fmt.Fprintf(&b, "Total pot $%d\n", hh.FinalPot)
	if len(hh.Community) > 0 {
		fmt.Fprintf(&b, "Board [%s]\n", poker.FormatCards(hh.Community))
	}
	for _, w := range hh.Winners {
		line := fmt.Sprintf("%s won $%d", w.Name, w.Amount)
		if w.HasClass {
			line += " with " + w.Class.String()
		}
		b.WriteString(line + "\n")
	}
	if hh.Remainder > 0 {
		fmt.Fprintf(&b, "$%d not split\n", hh.Remainder)
	}
	for _, seat := range hh.Seats {
		if class, ok := hh.Classes[seat.Index]; ok {
			fmt.Fprintf(&b, "%s showed %s\n", seat.Name, class)
		}
	}
	return b.String()
}

func formatHistoryAction(a HandAction) string {
	var text string
	switch a.Action {
	case "small blind", "big blind":
		text = fmt.Sprintf("%s: posts %s $%d", a.Name, a.Action, a.Amount)
	case "call":
		text = fmt.Sprintf("%s: calls $%d (pot now: $%d)", a.Name, a.Amount, a.PotAfter)
	case "raise":
		text = fmt.Sprintf("%s: raises to $%d (pot now: $%d)", a.Name, a.TargetBet, a.PotAfter)
	default:
		text = fmt.Sprintf("%s: %ss", a.Name, a.Action)
	}
	if a.Reasoning != "" {
		text = fmt.Sprintf("%s: thinks %q\n%s", a.Name, a.Reasoning, text)
	}
	return text
}

// HandHistoryRecorder keeps a HandHistory for the hand in progress and
// writes it out once the hand ends or is abandoned.
type HandHistoryRecorder struct {
	writer HandHistoryWriter
	logger *log.Logger

	mu      sync.Mutex
	current *HandHistory
	last    *HandHistory
}

// NewHandHistoryRecorder creates a recorder. A nil writer keeps histories in
// memory only.
func NewHandHistoryRecorder(writer HandHistoryWriter, logger *log.Logger) *HandHistoryRecorder {
	if writer == nil {
		writer = &NoOpHandHistoryWriter{}
	}
	return &HandHistoryRecorder{writer: writer, logger: logger.WithPrefix("history")}
}

// OnEvent implements EventSubscriber interface
func (r *HandHistoryRecorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if start, ok := event.(HandStartEvent); ok {
		r.current = newHandHistory(start)
		return
	}
	if r.current == nil {
		return
	}

	r.current.OnEvent(event)
	if !r.current.Complete {
		return
	}

	if err := r.writer.WriteHandHistory(r.current.HandID, r.current.Text()); err != nil {
		r.logger.Error("Failed to write hand history", "hand", r.current.Number, "error", err)
	}
	r.last = r.current
	r.current = nil
}

// Last returns the most recently finished hand, or nil
func (r *HandHistoryRecorder) Last() *HandHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

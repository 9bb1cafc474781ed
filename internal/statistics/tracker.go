package statistics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lox/homegame/internal/game"
)

// Tracker turns the event stream into per-seat Statistics. Abandoned hands
// are not counted.
type Tracker struct {
	mu sync.Mutex

	names   []string
	seats   []*Statistics
	hands   int
	aborted int

	// Hand in progress
	inHand   bool
	bigBlind int
	dealer   int
	dealt    []bool
	start    []int
	stacks   []int
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnEvent implements game.EventSubscriber
func (t *Tracker) OnEvent(event game.GameEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := event.(type) {
	case game.HandStartEvent:
		t.begin(e)
	case game.StackChangedEvent:
		if t.inHand && e.Seat >= 0 && e.Seat < len(t.stacks) {
			t.stacks[e.Seat] = e.Stack
		}
	case game.HandEndEvent:
		if t.inHand {
			t.finish(e)
		}
	case game.HandAbortedEvent:
		t.inHand = false
		t.aborted++
	}
}

func (t *Tracker) begin(e game.HandStartEvent) {
	if len(t.seats) != len(e.Seats) {
		t.names = make([]string, len(e.Seats))
		t.seats = make([]*Statistics, len(e.Seats))
		for i := range t.seats {
			t.seats[i] = NewStatistics(len(e.Seats))
		}
	}
	t.inHand = true
	t.bigBlind = max(e.BigBlind, 1)
	t.dealer = e.Dealer
	t.dealt = make([]bool, len(e.Seats))
	t.start = make([]int, len(e.Seats))
	t.stacks = make([]int, len(e.Seats))
	for i, s := range e.Seats {
		t.names[i] = s.Name
		t.dealt[i] = s.Active
		t.start[i] = s.Stack
		t.stacks[i] = s.Stack
	}
}

func (t *Tracker) finish(e game.HandEndEvent) {
	t.inHand = false
	t.hands++
	n := len(t.seats)
	for i, stats := range t.seats {
		if !t.dealt[i] {
			continue
		}
		stats.Add(HandResult{
			NetBB:          float64(t.stacks[i]-t.start[i]) / float64(t.bigBlind),
			Position:       (i - t.dealer + n) % n,
			WentToShowdown: e.ShowdownType == game.ShowdownTypeShowdown,
			FinalPotSize:   e.Pot,
		})
	}
}

// Hands returns the number of completed and abandoned hands seen
func (t *Tracker) Hands() (completed, aborted int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hands, t.aborted
}

// Seat returns a copy of one seat's statistics
func (t *Tracker) Seat(i int) (Statistics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.seats) {
		return Statistics{}, false
	}
	s := *t.seats[i]
	s.Values = append([]float64(nil), s.Values...)
	s.PositionResults = append([]PositionStats(nil), s.PositionResults...)
	return s, true
}

// Summary renders one line per seat
func (t *Tracker) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%d hands played, %d abandoned\n", t.hands, t.aborted)
	for i, s := range t.seats {
		lo, hi := s.ConfidenceInterval95()
		fmt.Fprintf(&b, "%-14s %4d hands  %+8.2f bb/hand  [%+.2f, %+.2f]  won %d at showdown, %d without\n",
			t.names[i], s.Hands, s.Mean(), lo, hi, s.ShowdownWins, s.NonShowdownWins)
	}
	return b.String()
}

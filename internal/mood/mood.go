// Package mood produces the cosmetic "EEG" mood feed shown next to the human
// seat. Readings are random and never feed back into the game.
package mood

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/homegame/internal/randutil"
)

// State is a simulated mood
type State int

const (
	Focused State = iota
	Calm
	Anxious
	Relaxed
)

func (s State) String() string {
	switch s {
	case Focused:
		return "Focused"
	case Calm:
		return "Calm"
	case Anxious:
		return "Anxious"
	case Relaxed:
		return "Relaxed"
	default:
		return "Unknown"
	}
}

// Color is the colour the human seat's name is drawn in
func (s State) Color() lipgloss.Color {
	switch s {
	case Focused:
		return lipgloss.Color("#FF0000")
	case Calm:
		return lipgloss.Color("#0000FF")
	case Anxious:
		return lipgloss.Color("#FFA500")
	case Relaxed:
		return lipgloss.Color("#D8BFD8")
	default:
		return lipgloss.Color("#FFFFFF")
	}
}

// Weights in State order, out of 1000
var weights = []int{600, 125, 125, 125}

const (
	bandLow  = 0.46
	bandHigh = 0.54
)

// Reading is one sample of the feed
type Reading struct {
	State State
	Bands [3]float64
	At    time.Time
}

// Simulator emits a Reading immediately and then once per interval
type Simulator struct {
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator
func NewSimulator(clock quartz.Clock, interval time.Duration, rng *rand.Rand, logger *log.Logger) *Simulator {
	return &Simulator{
		clock:    clock,
		interval: interval,
		rng:      rng,
		logger:   logger.WithPrefix("mood"),
	}
}

// Next draws a reading
func (s *Simulator) Next() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reading{
		State: State(max(randutil.Weighted(s.rng, weights), 0)),
		At:    s.clock.Now(),
	}
	for i := range r.Bands {
		r.Bands[i] = bandLow + s.rng.Float64()*(bandHigh-bandLow)
	}
	return r
}

// Run calls emit with a fresh reading until ctx is done
func (s *Simulator) Run(ctx context.Context, emit func(Reading)) error {
	ticker := s.clock.NewTicker(s.interval, "mood", "tick")
	defer ticker.Stop()

	s.logger.Debug("Mood feed started", "interval", s.interval)
	emit(s.Next())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			emit(s.Next())
		}
	}
}

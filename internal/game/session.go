package game

import (
	"fmt"
)

// SeatSpec describes a seat when creating a session
type SeatSpec struct {
	Name string
	Kind SeatKind
}

// SessionConfig holds the table settings for a session
type SessionConfig struct {
	Seats         []SeatSpec
	SmallBlind    int
	BigBlind      int
	StartingStack int
	Dealer        int // Initial dealer seat
}

// Session is the table state that outlives a hand: stacks, the dealer
// button and the hand counter.
type Session struct {
	Seats         []*Seat
	Dealer        int
	HandsPlayed   int
	SmallBlind    int
	BigBlind      int
	StartingStack int

	// Discarded counts chips lost to uneven pot splits
	Discarded int
}

// NewSession validates the config and seats every player with the
// starting stack.
func NewSession(cfg SessionConfig) (*Session, error) {
	if len(cfg.Seats) < 2 {
		return nil, fmt.Errorf("at least 2 seats required, got %d", len(cfg.Seats))
	}
	if cfg.SmallBlind < 0 || cfg.BigBlind < 0 {
		return nil, fmt.Errorf("blinds must not be negative")
	}
	if cfg.StartingStack <= 0 {
		return nil, fmt.Errorf("starting stack must be positive, got %d", cfg.StartingStack)
	}
	if cfg.Dealer < 0 || cfg.Dealer >= len(cfg.Seats) {
		return nil, fmt.Errorf("%w: dealer %d", ErrCorruptSeat, cfg.Dealer)
	}

	seats := make([]*Seat, len(cfg.Seats))
	for i, spec := range cfg.Seats {
		seats[i] = NewSeat(i, spec.Name, spec.Kind, cfg.StartingStack)
	}

	return &Session{
		Seats:         seats,
		Dealer:        cfg.Dealer,
		SmallBlind:    cfg.SmallBlind,
		BigBlind:      cfg.BigBlind,
		StartingStack: cfg.StartingStack,
	}, nil
}

// TotalChips returns the sum of all stacks
func (s *Session) TotalChips() int {
	total := 0
	for _, seat := range s.Seats {
		total += seat.Stack
	}
	return total
}

// ExpectedChips is the chip total the table must hold between hands
func (s *Session) ExpectedChips() int {
	return len(s.Seats)*s.StartingStack - s.Discarded
}

// Funded returns the seats that still have chips
func (s *Session) Funded() []*Seat {
	var out []*Seat
	for _, seat := range s.Seats {
		if seat.Stack > 0 {
			out = append(out, seat)
		}
	}
	return out
}

// Over returns true once fewer than two seats have chips
func (s *Session) Over() bool {
	return len(s.Funded()) < 2
}

// RotateDealer moves the button one seat to the left
func (s *Session) RotateDealer() {
	s.Dealer = (s.Dealer + 1) % len(s.Seats)
}

// Snapshot returns read-only copies of all seats
func (s *Session) Snapshot() []SeatSnapshot {
	out := make([]SeatSnapshot, len(s.Seats))
	for i, seat := range s.Seats {
		out[i] = seat.snapshot()
	}
	return out
}

// ValidateChipConservation checks that no chips have appeared or vanished
// outside of discarded split remainders.
func (s *Session) ValidateChipConservation() error {
	if got, want := s.TotalChips(), s.ExpectedChips(); got != want {
		return fmt.Errorf("chip total %d, expected %d", got, want)
	}
	return nil
}

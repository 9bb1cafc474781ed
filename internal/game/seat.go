package game

import (
	"github.com/lox/homegame/poker"
)

// SeatKind distinguishes the human seat from computer seats
type SeatKind int

const (
	Human SeatKind = iota
	AI
)

func (k SeatKind) String() string {
	switch k {
	case Human:
		return "human"
	case AI:
		return "ai"
	default:
		return "unknown"
	}
}

// Seat is the per-player state at the table
type Seat struct {
	Index int
	Name  string
	Kind  SeatKind

	Stack  int  // Chips behind, persists across hands
	Folded bool // Reset every hand
	Active bool // False once the seat starts a hand with no chips

	StreetContribution int // Chips committed on the current street
	HandContribution   int // Chips committed over the whole hand

	HoleCards []poker.Card
}

// NewSeat creates a seat with a starting stack
func NewSeat(index int, name string, kind SeatKind, stack int) *Seat {
	return &Seat{
		Index:  index,
		Name:   name,
		Kind:   kind,
		Stack:  stack,
		Active: stack > 0,
	}
}

// ResetForHand clears per-hand fields. A seat without chips becomes inactive
// and stays that way for the rest of the session.
func (s *Seat) ResetForHand() {
	s.Folded = false
	s.StreetContribution = 0
	s.HandContribution = 0
	s.HoleCards = nil
	if s.Stack <= 0 {
		s.Active = false
	}
}

// CanAct returns true if the seat can still be given the turn
func (s *Seat) CanAct() bool {
	return s.Active && !s.Folded && s.Stack > 0
}

// IsLive returns true if the seat can still win the pot, including a seat
// that is all-in.
func (s *Seat) IsLive() bool {
	return s.Active && !s.Folded && (s.Stack > 0 || s.HandContribution > 0)
}

// IsAllIn returns true if the seat has committed its whole stack this hand
func (s *Seat) IsAllIn() bool {
	return s.IsLive() && s.Stack == 0
}

// commit moves chips from the stack into the current street. Callers check
// the amount against the stack first.
func (s *Seat) commit(amount int) {
	s.Stack -= amount
	s.StreetContribution += amount
	s.HandContribution += amount
}

// refund returns everything committed this hand back to the stack
func (s *Seat) refund() int {
	amount := s.HandContribution
	s.Stack += amount
	s.StreetContribution = 0
	s.HandContribution = 0
	return amount
}

func (s *Seat) snapshot() SeatSnapshot {
	return SeatSnapshot{
		Index:  s.Index,
		Name:   s.Name,
		Kind:   s.Kind,
		Stack:  s.Stack,
		Active: s.Active,
	}
}

// SeatSnapshot is a read-only copy of a seat carried by events
type SeatSnapshot struct {
	Index  int
	Name   string
	Kind   SeatKind
	Stack  int
	Active bool
}

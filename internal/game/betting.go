package game

import (
	"fmt"
	"strings"
)

// ActionKind is a betting action
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
)

func (a ActionKind) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// ParseActionKind parses "fold", "check", "call" or "raise"
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "k":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "raise", "r":
		return Raise, nil
	default:
		return Fold, fmt.Errorf("unknown action %q", s)
	}
}

// StateKind is the betting engine state
type StateKind int

const (
	AwaitingAction StateKind = iota
	StreetComplete
	SingleSurvivor
)

func (k StateKind) String() string {
	switch k {
	case AwaitingAction:
		return "awaiting_action"
	case StreetComplete:
		return "street_complete"
	case SingleSurvivor:
		return "single_survivor"
	default:
		return "unknown"
	}
}

// State is the engine state. Seat is the seat on turn for AwaitingAction and
// the winner for SingleSurvivor.
type State struct {
	Kind StateKind
	Seat int
}

// Outcome describes an applied decision
type Outcome struct {
	Seat      int
	Action    ActionKind
	Amount    int // Chips moved into the pot
	TargetBet int // Street target after the action
	Pot       int
	Stack     int // Seat stack after the action
}

// BettingEngine runs the betting on one street at a time. It mutates the
// hand and seats it was created with and nothing else.
type BettingEngine struct {
	hand  *HandState
	seats []*Seat
	acted []bool // Seats that have acted since the street opened or the last raise
	state State
}

// NewBettingEngine creates an engine for the given hand
func NewBettingEngine(hand *HandState, seats []*Seat) *BettingEngine {
	return &BettingEngine{
		hand:  hand,
		seats: seats,
		acted: make([]bool, len(seats)),
		state: State{Kind: StreetComplete, Seat: -1},
	}
}

// State returns the current engine state
func (e *BettingEngine) State() State {
	return e.state
}

// FirstActor returns the seat that opens betting on a street: left of the
// big blind pre-flop, left of the dealer afterwards.
func FirstActor(street Street, dealer, seatCount int) int {
	if street == PreFlop {
		return (dealer + 3) % seatCount
	}
	return (dealer + 1) % seatCount
}

// OpenStreet starts betting on the hand's current street with the turn
// starting at firstActor.
func (e *BettingEngine) OpenStreet(firstActor int) State {
	e.hand.ActionsSinceLastRaise = 0
	for i := range e.acted {
		e.acted[i] = false
	}
	e.hand.TurnIndex = firstActor
	e.state = e.evaluate(firstActor)
	return e.state
}

// Apply validates and applies a decision for the seat on turn. Rejected
// decisions leave every field untouched.
func (e *BettingEngine) Apply(d Decision) (Outcome, error) {
	if e.state.Kind != AwaitingAction {
		return Outcome{}, ErrNoTurn
	}
	if d.Seat != e.state.Seat {
		return Outcome{}, fmt.Errorf("%w: got seat %d, seat %d is on turn", ErrInvalidSeatOnAction, d.Seat, e.state.Seat)
	}
	if d.Seat < 0 || d.Seat >= len(e.seats) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrCorruptSeat, d.Seat)
	}

	h := e.hand
	s := e.seats[d.Seat]
	moved := 0

	switch d.Kind {
	case Fold:
		s.Folded = true
		h.ActionsSinceLastRaise++

	case Check:
		if s.StreetContribution < h.StreetTargetBet {
			return Outcome{}, &IllegalActionError{
				Seat:   d.Seat,
				Action: Check,
				Reason: ReasonCheckWithOutstandingBet,
				Detail: fmt.Sprintf("%d to call", h.ToCall(s)),
			}
		}
		h.ActionsSinceLastRaise++

	case Call:
		moved = min(h.ToCall(s), s.Stack)
		s.commit(moved)
		h.Pot += moved
		h.ActionsSinceLastRaise++

	case Raise:
		if d.Amount <= 0 {
			return Outcome{}, &IllegalActionError{
				Seat:   d.Seat,
				Action: Raise,
				Reason: ReasonInvalidRaise,
				Detail: fmt.Sprintf("raise must be positive, got %d", d.Amount),
			}
		}
		target := h.StreetTargetBet + d.Amount
		required := target - s.StreetContribution
		if required > s.Stack {
			return Outcome{}, &IllegalActionError{
				Seat:   d.Seat,
				Action: Raise,
				Reason: ReasonInsufficientChips,
				Detail: fmt.Sprintf("needs %d, has %d", required, s.Stack),
			}
		}
		moved = required
		s.commit(moved)
		h.Pot += moved
		h.StreetTargetBet = target
		h.ActionsSinceLastRaise = 0
		for i := range e.acted {
			e.acted[i] = false
		}

	default:
		return Outcome{}, &IllegalActionError{Seat: d.Seat, Action: d.Kind, Reason: ReasonUnknownAction}
	}

	e.acted[d.Seat] = true
	h.TurnIndex = (d.Seat + 1) % len(e.seats)
	e.state = e.evaluate(h.TurnIndex)

	return Outcome{
		Seat:      d.Seat,
		Action:    d.Kind,
		Amount:    moved,
		TargetBet: h.StreetTargetBet,
		Pot:       h.Pot,
		Stack:     s.Stack,
	}, nil
}

// evaluate runs the completion test and otherwise hands the turn to the next
// seat that can act, scanning from `from`.
func (e *BettingEngine) evaluate(from int) State {
	live, survivor := 0, -1
	for _, s := range e.seats {
		if s.IsLive() {
			live++
			survivor = s.Index
		}
	}
	if live == 1 {
		return State{Kind: SingleSurvivor, Seat: survivor}
	}
	if live == 0 || e.settled(live) {
		return State{Kind: StreetComplete, Seat: -1}
	}

	next := e.nextActor(from)
	if next < 0 {
		return State{Kind: StreetComplete, Seat: -1}
	}
	e.hand.TurnIndex = next
	return State{Kind: AwaitingAction, Seat: next}
}

// settled reports whether the street is over. Every seat that can act must
// have matched the target and acted since the last raise. Without all-in
// seats the street also needs ActionsSinceLastRaise to reach the live count;
// all-in seats never act, so once one exists the first two conditions
// decide, and a lone remaining actor who has matched does not act at all.
func (e *BettingEngine) settled(live int) bool {
	actors, allIns := 0, 0
	for _, s := range e.seats {
		switch {
		case s.CanAct():
			actors++
			if s.StreetContribution < e.hand.StreetTargetBet {
				return false
			}
		case s.IsAllIn():
			allIns++
		}
	}

	if allIns > 0 && actors <= 1 {
		return true
	}
	for _, s := range e.seats {
		if s.CanAct() && !e.acted[s.Index] {
			return false
		}
	}
	if allIns > 0 {
		return true
	}
	return e.hand.ActionsSinceLastRaise >= live
}

// nextActor scans at most one lap of the table for a seat that can act
func (e *BettingEngine) nextActor(from int) int {
	n := len(e.seats)
	for i := range n {
		idx := (from + i) % n
		if e.seats[idx].CanAct() {
			return idx
		}
	}
	return -1
}

// LiveSeats returns the seats that can still win the pot
func (e *BettingEngine) LiveSeats() []*Seat {
	var out []*Seat
	for _, s := range e.seats {
		if s.IsLive() {
			out = append(out, s)
		}
	}
	return out
}

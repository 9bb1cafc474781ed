package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction matches every *IllegalActionError
	ErrIllegalAction = errors.New("game: illegal action")

	// ErrInvalidSeatOnAction is returned for a decision addressed to a seat
	// that is not on turn. Such decisions are dropped.
	ErrInvalidSeatOnAction = errors.New("game: decision for seat not on turn")

	// ErrNoTurn is returned when a decision arrives while no seat is on turn
	ErrNoTurn = errors.New("game: no seat is on turn")

	// ErrHandAborted is returned by PlayHand when the hand was reset
	ErrHandAborted = errors.New("game: hand aborted")

	// ErrSessionOver is returned when fewer than two seats have chips
	ErrSessionOver = errors.New("game: session over")

	// ErrCorruptSeat is returned when a seat index falls outside the table
	ErrCorruptSeat = errors.New("game: seat index out of range")
)

// Reason is a stable code describing why an action was rejected
type Reason string

const (
	ReasonCheckWithOutstandingBet Reason = "check_with_outstanding_bet"
	ReasonInsufficientChips       Reason = "insufficient_chips"
	ReasonInvalidRaise            Reason = "invalid_raise"
	ReasonUnknownAction           Reason = "unknown_action"
)

// IllegalActionError describes a rejected decision. The seat keeps the turn.
type IllegalActionError struct {
	Seat   int
	Action ActionKind
	Reason Reason
	Detail string
}

func (e *IllegalActionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("seat %d cannot %s: %s (%s)", e.Seat, e.Action, e.Reason, e.Detail)
	}
	return fmt.Sprintf("seat %d cannot %s: %s", e.Seat, e.Action, e.Reason)
}

// Is lets errors.Is(err, ErrIllegalAction) match
func (e *IllegalActionError) Is(target error) bool {
	return target == ErrIllegalAction
}

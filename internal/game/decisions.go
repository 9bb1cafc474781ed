package game

import (
	"context"

	"github.com/lox/homegame/poker"
)

// Decision is a decision event addressed to a seat
type Decision struct {
	Seat      int
	Kind      ActionKind
	Amount    int    // Raise delta over the current street target
	Reasoning string // Optional, shown in hand history
}

// DecisionRequest is the read-only view handed to a source when its seat is
// on turn.
type DecisionRequest struct {
	HandID             string
	Seat               int
	Name               string
	Street             Street
	Pot                int
	TargetBet          int
	StreetContribution int
	ToCall             int
	Stack              int
	HoleCards          []poker.Card
	Community          []poker.Card
}

// CanCheck reports whether checking is legal for the request
func (r DecisionRequest) CanCheck() bool {
	return r.ToCall == 0
}

// ActionSource supplies decisions for one or more seats. RequestDecision must
// not block; the source answers later through the Inbox. ctx is cancelled
// once the turn is over or the hand is reset, and a source must not submit
// after that.
type ActionSource interface {
	RequestDecision(ctx context.Context, req DecisionRequest)
}

// Sources maps seat index to the source that decides for it
type Sources []ActionSource

// DecisionSink accepts decision events
type DecisionSink interface {
	Submit(d Decision) bool
}

// Inbox is the single queue all sources submit decisions to. The
// orchestrator is its only reader.
type Inbox struct {
	ch chan Decision
}

// NewInbox creates an inbox buffering up to size decisions
func NewInbox(size int) *Inbox {
	if size < 1 {
		size = 1
	}
	return &Inbox{ch: make(chan Decision, size)}
}

// Submit queues a decision without blocking. It returns false if the inbox
// is full and the decision was dropped.
func (in *Inbox) Submit(d Decision) bool {
	select {
	case in.ch <- d:
		return true
	default:
		return false
	}
}

// Next blocks until a decision arrives or ctx is done
func (in *Inbox) Next(ctx context.Context) (Decision, error) {
	select {
	case d := <-in.ch:
		return d, nil
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}

// Drain discards and returns every queued decision
func (in *Inbox) Drain() []Decision {
	var stale []Decision
	for {
		select {
		case d := <-in.ch:
			stale = append(stale, d)
		default:
			return stale
		}
	}
}

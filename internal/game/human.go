package game

import (
	"context"
	"sync"
)

// HumanSource routes a human seat's input into the inbox. The front end
// watches for TurnEvents (or Pending) and calls Submit when the player acts.
type HumanSource struct {
	seat int
	sink DecisionSink

	mu      sync.Mutex
	pending *DecisionRequest
	ctx     context.Context
}

// NewHumanSource creates a source for the given seat
func NewHumanSource(seat int, sink DecisionSink) *HumanSource {
	return &HumanSource{seat: seat, sink: sink}
}

// Seat returns the seat this source decides for
func (h *HumanSource) Seat() int {
	return h.seat
}

// RequestDecision records the pending request. It is cleared when the
// player submits or ctx is cancelled.
func (h *HumanSource) RequestDecision(ctx context.Context, req DecisionRequest) {
	h.mu.Lock()
	h.pending = &req
	h.ctx = ctx
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.ctx == ctx {
			h.pending = nil
			h.ctx = nil
		}
	}()
}

// Pending returns the request waiting for input, if any
func (h *HumanSource) Pending() (DecisionRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return DecisionRequest{}, false
	}
	return *h.pending, true
}

// Submit sends the player's decision. Input is accepted at any time; the
// engine drops it if the seat is not on turn.
func (h *HumanSource) Submit(kind ActionKind, amount int) bool {
	h.mu.Lock()
	h.pending = nil
	h.mu.Unlock()

	return h.sink.Submit(Decision{
		Seat:   h.seat,
		Kind:   kind,
		Amount: amount,
	})
}

package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/homegame/internal/randutil"
)

// UnopenedWeights are the action weights when nothing is owed
type UnopenedWeights struct {
	Check int
	Raise int
}

// FacingBetWeights are the action weights when a bet is outstanding
type FacingBetWeights struct {
	Call  int
	Fold  int
	Raise int
}

// AIPolicy configures the computer seats
type AIPolicy struct {
	Unopened  UnopenedWeights
	FacingBet FacingBetWeights

	// Raise delta range, inclusive
	RaiseMin int
	RaiseMax int

	// Presentation delay before the decision is submitted
	ThinkMin time.Duration
	ThinkMax time.Duration
}

// DefaultAIPolicy returns the stock weights: check 80 / raise 20 when
// unopened, call 70 / fold 20 / raise 10 facing a bet, raises of 10 to 50
// and two to four seconds of thinking.
func DefaultAIPolicy() AIPolicy {
	return AIPolicy{
		Unopened:  UnopenedWeights{Check: 80, Raise: 20},
		FacingBet: FacingBetWeights{Call: 70, Fold: 20, Raise: 10},
		RaiseMin:  10,
		RaiseMax:  50,
		ThinkMin:  2 * time.Second,
		ThinkMax:  4 * time.Second,
	}
}

// AISource decides for computer seats with a weighted random policy. The
// decision is drawn when requested and submitted after the thinking delay.
type AISource struct {
	policy AIPolicy
	sink   DecisionSink
	clock  quartz.Clock
	logger *log.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewAISource creates a policy-driven source
func NewAISource(policy AIPolicy, sink DecisionSink, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *AISource {
	return &AISource{
		policy: policy,
		sink:   sink,
		clock:  clock,
		rng:    rng,
		logger: logger.WithPrefix("ai"),
	}
}

// RequestDecision draws a decision now and submits it once the thinking
// delay has elapsed, unless ctx is cancelled first.
func (a *AISource) RequestDecision(ctx context.Context, req DecisionRequest) {
	a.mu.Lock()
	d := a.decide(req)
	delay := a.thinkTime()
	a.mu.Unlock()

	a.logger.Debug("Decision drawn", "seat", req.Seat, "action", d.Kind, "amount", d.Amount, "delay", delay)

	if delay <= 0 {
		if ctx.Err() == nil {
			a.submit(d)
		}
		return
	}

	timer := a.clock.NewTimer(delay, "ai", "think")
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			a.logger.Debug("Pending decision discarded", "seat", req.Seat)
			return
		case <-timer.C:
		}
		if ctx.Err() == nil {
			a.submit(d)
		}
	}()
}

// Decide draws a decision for req without any delay
func (a *AISource) Decide(req DecisionRequest) Decision {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decide(req)
}

func (a *AISource) submit(d Decision) {
	if !a.sink.Submit(d) {
		a.logger.Warn("Inbox full, decision dropped", "seat", d.Seat)
	}
}

func (a *AISource) thinkTime() time.Duration {
	lo, hi := a.policy.ThinkMin, a.policy.ThinkMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(a.rng.Int64N(int64(hi-lo)+1))
}

func (a *AISource) decide(req DecisionRequest) Decision {
	p := a.policy
	d := Decision{Seat: req.Seat}

	if req.ToCall <= 0 {
		switch randutil.Weighted(a.rng, []int{p.Unopened.Check, p.Unopened.Raise}) {
		case 1:
			return a.raise(req)
		default:
			d.Kind = Check
			d.Reasoning = "checks it through"
			return d
		}
	}

	switch randutil.Weighted(a.rng, []int{p.FacingBet.Call, p.FacingBet.Fold, p.FacingBet.Raise}) {
	case 1:
		d.Kind = Fold
		d.Reasoning = "gives up"
	case 2:
		return a.raise(req)
	default:
		d.Kind = Call
		d.Reasoning = fmt.Sprintf("calls %d", min(req.ToCall, req.Stack))
	}
	return d
}

// raise draws a raise delta and clamps it to what the stack can cover after
// calling. With nothing left over it calls or checks instead.
func (a *AISource) raise(req DecisionRequest) Decision {
	d := Decision{Seat: req.Seat}
	headroom := req.Stack - req.ToCall
	if headroom <= 0 {
		if req.ToCall > 0 {
			d.Kind = Call
			d.Reasoning = "calls all-in"
		} else {
			d.Kind = Check
			d.Reasoning = "checks"
		}
		return d
	}

	delta := min(randutil.Between(a.rng, a.policy.RaiseMin, a.policy.RaiseMax), headroom)
	if delta <= 0 {
		delta = 1
	}
	d.Kind = Raise
	d.Amount = delta
	d.Reasoning = fmt.Sprintf("raises %d to %d", delta, req.TargetBet+delta)
	return d
}

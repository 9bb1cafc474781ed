package game

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/homegame/poker"
)

// TestSessionOption configures test session creation
type TestSessionOption func(*testSessionBuilder)

type testSessionBuilder struct {
	config SessionConfig
	deck   []poker.Card
	bus    EventBus
}

func WithBlinds(small, big int) TestSessionOption {
	return func(b *testSessionBuilder) {
		b.config.SmallBlind = small
		b.config.BigBlind = big
	}
}

func WithStartingStack(stack int) TestSessionOption {
	return func(b *testSessionBuilder) { b.config.StartingStack = stack }
}

func WithDealer(dealer int) TestSessionOption {
	return func(b *testSessionBuilder) { b.config.Dealer = dealer }
}

func WithSeats(names ...string) TestSessionOption {
	return func(b *testSessionBuilder) {
		b.config.Seats = b.config.Seats[:0]
		for _, name := range names {
			b.config.Seats = append(b.config.Seats, SeatSpec{Name: name, Kind: AI})
		}
	}
}

// WithStackedDeck deals cards in exactly this order every hand
func WithStackedDeck(cards []poker.Card) TestSessionOption {
	return func(b *testSessionBuilder) { b.deck = cards }
}

func WithTestEventBus(bus EventBus) TestSessionOption {
	return func(b *testSessionBuilder) { b.bus = bus }
}

// NewTestSession creates a four seat 10/20 session with 1000 chips each
func NewTestSession(opts ...TestSessionOption) *Session {
	b := newTestSessionBuilder(opts...)
	session, err := NewSession(b.config)
	if err != nil {
		panic(err)
	}
	return session
}

func newTestSessionBuilder(opts ...TestSessionOption) *testSessionBuilder {
	b := &testSessionBuilder{
		config: SessionConfig{
			Seats: []SeatSpec{
				{Name: "Alice", Kind: AI},
				{Name: "Bob", Kind: AI},
				{Name: "Carol", Kind: AI},
				{Name: "Dave", Kind: AI},
			},
			SmallBlind:    10,
			BigBlind:      20,
			StartingStack: 1000,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewTestOrchestrator wires a session to a ScriptedSource covering every seat
func NewTestOrchestrator(opts ...TestSessionOption) (*Orchestrator, *ScriptedSource) {
	b := newTestSessionBuilder(opts...)
	session, err := NewSession(b.config)
	if err != nil {
		panic(err)
	}

	inbox := NewInbox(len(session.Seats) * 2)
	script := NewScriptedSource(inbox)
	sources := make(Sources, len(session.Seats))
	for i := range sources {
		sources[i] = script
	}

	var orchOpts []OrchestratorOption
	if b.deck != nil {
		cards := b.deck
		orchOpts = append(orchOpts, WithDeckFactory(func() *poker.Deck { return poker.NewOrderedDeck(cards) }))
	}
	if b.bus != nil {
		orchOpts = append(orchOpts, WithEventBus(b.bus))
	}

	orch, err := NewOrchestrator(session, sources, inbox, log.New(io.Discard), orchOpts...)
	if err != nil {
		panic(err)
	}
	return orch, script
}

// ScriptedSource answers requests from per-seat queues of decisions. A seat
// with nothing queued checks when it can and calls otherwise.
type ScriptedSource struct {
	sink DecisionSink

	mu       sync.Mutex
	queued   map[int][]Decision
	requests []DecisionRequest
	onTurn   func(req DecisionRequest) bool
}

// NewScriptedSource creates a scripted source submitting to sink
func NewScriptedSource(sink DecisionSink) *ScriptedSource {
	return &ScriptedSource{sink: sink, queued: make(map[int][]Decision)}
}

// Queue appends decisions for a seat
func (s *ScriptedSource) Queue(seat int, decisions ...Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range decisions {
		d.Seat = seat
		s.queued[seat] = append(s.queued[seat], d)
	}
}

// Hold is called for every request; returning true leaves the request
// unanswered.
func (s *ScriptedSource) Hold(fn func(req DecisionRequest) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTurn = fn
}

// Requests returns every request seen so far
func (s *ScriptedSource) Requests() []DecisionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DecisionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *ScriptedSource) RequestDecision(ctx context.Context, req DecisionRequest) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	hold := s.onTurn
	s.mu.Unlock()

	if hold != nil && hold(req) {
		return
	}

	s.mu.Lock()
	var d Decision
	if q := s.queued[req.Seat]; len(q) > 0 {
		d = q[0]
		s.queued[req.Seat] = q[1:]
	} else if req.CanCheck() {
		d = Decision{Seat: req.Seat, Kind: Check}
	} else {
		d = Decision{Seat: req.Seat, Kind: Call}
	}
	s.mu.Unlock()

	if ctx.Err() == nil {
		s.sink.Submit(d)
	}
}

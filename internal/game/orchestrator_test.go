package game

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/homegame/poker"
)

// recorder collects every published event
type recorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *recorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) ofType(t EventType) []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []GameEvent
	for _, e := range r.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

func newRecordedOrchestrator(t *testing.T, opts ...TestSessionOption) (*Orchestrator, *ScriptedSource, *recorder) {
	t.Helper()
	rec := &recorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)
	orch, script := NewTestOrchestrator(append(opts, WithTestEventBus(bus))...)
	return orch, script, rec
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPlayHandFoldsToBigBlind(t *testing.T) {
	t.Parallel()
	orch, script, rec := newRecordedOrchestrator(t)
	script.Queue(3, Decision{Kind: Fold})
	script.Queue(0, Decision{Kind: Fold})
	script.Queue(1, Decision{Kind: Fold})

	result, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, ShowdownTypeFold, result.ShowdownType)
	assert.Equal(t, 30, result.Pot)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, 2, result.Winners[0].Seat)
	assert.Empty(t, result.Board, "no streets dealt after the last fold")

	seats := orch.Session().Seats
	assert.Equal(t, []int{1000, 990, 1010, 1000}, []int{seats[0].Stack, seats[1].Stack, seats[2].Stack, seats[3].Stack})
	assert.Len(t, script.Requests(), 3)
	assert.Len(t, rec.ofType(EventTypeHoleCardsRevealed), 4)
	assert.Empty(t, rec.ofType(EventTypeCommunityCard))
	assert.Equal(t, 1, orch.Session().Dealer)
	assert.Equal(t, 1, orch.Session().HandsPlayed)
}

func TestPlayHandScenarioReachesFlop(t *testing.T) {
	t.Parallel()
	orch, script, rec := newRecordedOrchestrator(t)
	script.Queue(3, Decision{Kind: Fold})
	script.Queue(0, Decision{Kind: Fold})
	script.Queue(1, Decision{Kind: Call})

	var potAtFlop int
	orch.EventBus().Subscribe(EventSubscriberFunc(func(event GameEvent) {
		if e, ok := event.(StreetChangeEvent); ok && e.Street == Flop {
			potAtFlop = rec.lastPot()
		}
	}))

	result, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 40, potAtFlop)
	assert.Equal(t, 40, result.Pot)
	assert.Len(t, result.Board, 5)
	assert.Equal(t, ShowdownTypeShowdown, result.ShowdownType)
	assert.Len(t, rec.ofType(EventTypeCommunityCard), 5)
}

func (r *recorder) lastPot() int {
	pots := r.ofType(EventTypePotChanged)
	if len(pots) == 0 {
		return 0
	}
	return pots[len(pots)-1].(PotChangedEvent).Pot
}

func TestShowdownTieDiscardsOddChip(t *testing.T) {
	t.Parallel()

	deck := poker.MustParseCards(
		"3h 4h " + // seat 0
			"5d 6c " + // seat 1
			"Ah Ad " + // seat 2
			"Qh Qd " + // seat 3
			"2c 7d 9h Js Kc") // board
	orch, script, _ := newRecordedOrchestrator(t, WithBlinds(5, 10), WithStackedDeck(deck))
	script.Queue(3, Decision{Kind: Raise, Amount: 38})
	script.Queue(0, Decision{Kind: Fold})
	script.Queue(1, Decision{Kind: Fold})

	result, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, 101, result.Pot)
	assert.Equal(t, 1, result.Remainder)
	require.Len(t, result.Winners, 2)
	for _, w := range result.Winners {
		assert.Equal(t, 50, w.Amount)
		assert.Equal(t, poker.OnePair, w.Class)
	}
	assert.Equal(t, poker.OnePair, result.Classes[2])
	assert.Equal(t, poker.OnePair, result.Classes[3])
	assert.NotContains(t, result.Classes, 0)

	session := orch.Session()
	assert.Equal(t, 1002, session.Seats[2].Stack)
	assert.Equal(t, 1002, session.Seats[3].Stack)
	assert.Equal(t, 995, session.Seats[1].Stack)
	assert.Equal(t, 1, session.Discarded)
	assert.Equal(t, 3999, session.TotalChips())
	assert.NoError(t, session.ValidateChipConservation())
}

func TestShowdownBestClassTakesPot(t *testing.T) {
	t.Parallel()

	deck := poker.MustParseCards(
		"3h 3d " + // seat 0, trips with the board
			"5d 6c " +
			"Ah Ad " +
			"Qh Kd " +
			"3c 7d 9h Js 2c")
	orch, _, rec := newRecordedOrchestrator(t, WithStackedDeck(deck))

	result, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, 0, result.Winners[0].Seat)
	assert.Equal(t, poker.ThreeOfAKind, result.Winners[0].Class)
	assert.Equal(t, 80, result.Pot)
	assert.Equal(t, 1060, orch.Session().Seats[0].Stack)

	var classes int
	for _, e := range rec.ofType(EventTypeHoleCardsRevealed) {
		if e.(HoleCardsRevealedEvent).HasClass {
			classes++
		}
	}
	assert.Equal(t, 4, classes)
}

func TestIllegalDecisionIsRequestedAgain(t *testing.T) {
	t.Parallel()
	orch, script, rec := newRecordedOrchestrator(t)
	script.Queue(3, Decision{Kind: Check}, Decision{Kind: Fold})

	_, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)

	illegal := rec.ofType(EventTypeIllegalAction)
	require.Len(t, illegal, 1)
	e := illegal[0].(IllegalActionEvent)
	assert.Equal(t, 3, e.Seat)
	assert.Equal(t, ReasonCheckWithOutstandingBet, e.Reason)

	requests := script.Requests()
	require.GreaterOrEqual(t, len(requests), 2)
	assert.Equal(t, 3, requests[0].Seat)
	assert.Equal(t, 3, requests[1].Seat)
	assert.True(t, orch.Session().Seats[3].Folded)
}

func TestDecisionsForOtherSeatsAreIgnored(t *testing.T) {
	t.Parallel()
	orch, script, _ := newRecordedOrchestrator(t)
	script.Queue(3, Decision{Kind: Fold})
	script.Queue(0, Decision{Kind: Fold})
	script.Queue(1, Decision{Kind: Fold})

	var once sync.Once
	script.Hold(func(req DecisionRequest) bool {
		once.Do(func() {
			script.sink.Submit(Decision{Seat: 2, Kind: Fold})
		})
		return false
	})

	result, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Winners[0].Seat, "out of turn fold from seat 2 was dropped")
}

func TestResetHandRefundsStakes(t *testing.T) {
	t.Parallel()
	orch, script, rec := newRecordedOrchestrator(t)
	script.Queue(3, Decision{Kind: Raise, Amount: 100})

	script.Hold(func(req DecisionRequest) bool {
		if req.Seat == 0 {
			require.True(t, orch.ResetHand())
			return true
		}
		return false
	})

	_, err := orch.PlayHand(testContext(t))
	require.ErrorIs(t, err, ErrHandAborted)

	session := orch.Session()
	for _, seat := range session.Seats {
		assert.Equal(t, 1000, seat.Stack, seat.Name)
		assert.Zero(t, seat.HandContribution, seat.Name)
	}
	assert.Equal(t, 0, session.Dealer, "button does not move for an abandoned hand")
	assert.Equal(t, 0, session.HandsPlayed)
	assert.Len(t, rec.ofType(EventTypeHandAborted), 1)
	assert.Empty(t, rec.ofType(EventTypeHandEnd))
	assert.False(t, orch.ResetHand(), "no hand in progress")
}

func TestCancelledContextStopsHand(t *testing.T) {
	t.Parallel()
	orch, script, _ := newRecordedOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	script.Hold(func(req DecisionRequest) bool {
		cancel()
		return true
	})

	_, err := orch.PlayHand(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrHandAborted)
	assert.Equal(t, 4000, orch.Session().TotalChips())
}

func TestRunRotatesDealerAndConservesChips(t *testing.T) {
	t.Parallel()
	orch, _, rec := newRecordedOrchestrator(t)

	var dealers []int
	orch.EventBus().Subscribe(EventSubscriberFunc(func(event GameEvent) {
		if e, ok := event.(HandStartEvent); ok {
			dealers = append(dealers, e.Dealer)
		}
	}))

	require.NoError(t, orch.Run(testContext(t), 5))

	session := orch.Session()
	assert.Equal(t, []int{0, 1, 2, 3, 0}, dealers)
	assert.Equal(t, 5, session.HandsPlayed)
	assert.Equal(t, 1, session.Dealer)
	assert.Equal(t, session.ExpectedChips(), session.TotalChips())
	assert.Len(t, rec.ofType(EventTypeHandEnd), 5)
}

func TestRunEndsWhenOneSeatHasChips(t *testing.T) {
	t.Parallel()
	orch, _, rec := newRecordedOrchestrator(t)
	for _, seat := range orch.Session().Seats[1:] {
		seat.Stack = 0
	}

	require.NoError(t, orch.Run(testContext(t), 0))
	require.Len(t, rec.ofType(EventTypeSessionOver), 1)

	_, err := orch.PlayHand(testContext(t))
	assert.ErrorIs(t, err, ErrSessionOver)
}

func TestShortStackedBlindsPostWhatTheyHave(t *testing.T) {
	t.Parallel()
	orch, _, rec := newRecordedOrchestrator(t)
	orch.Session().Seats[2].Stack = 15
	orch.Session().Seats[0].Stack = 1985 // keep the table total intact

	_, err := orch.PlayHand(testContext(t))
	require.NoError(t, err)

	blinds := rec.ofType(EventTypeBlindPosted)
	require.Len(t, blinds, 2)
	assert.Equal(t, 10, blinds[0].(BlindPostedEvent).Amount)
	assert.Equal(t, 15, blinds[1].(BlindPostedEvent).Amount)

	turns := rec.ofType(EventTypeTurn)
	require.NotEmpty(t, turns)
	assert.Equal(t, 15, turns[0].(TurnEvent).Request.TargetBet)
}

func TestBustedOrShortBlindsStillComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		seat       int // Blind seat whose stack is cut, dealer is 0
		stack      int
		wantBlinds []int
		wantTarget int
	}{
		{"busted big blind", 2, 0, []int{10, 0}, 10},
		{"big blind shorter than small blind", 2, 5, []int{10, 5}, 10},
		{"busted small blind", 1, 0, []int{0, 20}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			orch, _, rec := newRecordedOrchestrator(t)
			session := orch.Session()
			session.Seats[0].Stack += session.Seats[tt.seat].Stack - tt.stack
			session.Seats[tt.seat].Stack = tt.stack

			_, err := orch.PlayHand(testContext(t))
			require.NoError(t, err)

			blinds := rec.ofType(EventTypeBlindPosted)
			require.Len(t, blinds, 2)
			assert.Equal(t, tt.wantBlinds[0], blinds[0].(BlindPostedEvent).Amount)
			assert.Equal(t, tt.wantBlinds[1], blinds[1].(BlindPostedEvent).Amount)

			turns := rec.ofType(EventTypeTurn)
			require.NotEmpty(t, turns)
			assert.Equal(t, tt.wantTarget, turns[0].(TurnEvent).Request.TargetBet)

			assert.Empty(t, rec.ofType(EventTypeIllegalAction))
			assert.Len(t, rec.ofType(EventTypeHandEnd), 1)
			assert.NoError(t, session.ValidateChipConservation())
		})
	}
}

func TestNewOrchestratorNeedsSourcePerSeat(t *testing.T) {
	t.Parallel()
	session := NewTestSession()
	inbox := NewInbox(4)

	_, err := NewOrchestrator(session, Sources{NewScriptedSource(inbox)}, inbox, discardLogger())
	assert.Error(t, err)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

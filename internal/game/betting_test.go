package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preFlop sets up dealer 0 with blinds 10/20 already posted. Stacks override
// the 1000 chip default per seat.
func preFlop(t *testing.T, stacks ...int) (*HandState, []*Seat, *BettingEngine) {
	t.Helper()
	session := NewTestSession()
	seats := session.Seats
	for i, stack := range stacks {
		seats[i].Stack = stack
		seats[i].Active = stack > 0
	}

	hand := &HandState{Dealer: 0}
	for i, blind := range map[int]int{1: 10, 2: 20} {
		amount := min(blind, seats[i].Stack)
		seats[i].commit(amount)
		hand.Pot += amount
	}
	hand.StreetTargetBet = 20

	engine := NewBettingEngine(hand, seats)
	state := engine.OpenStreet(FirstActor(PreFlop, hand.Dealer, len(seats)))
	require.Equal(t, State{Kind: AwaitingAction, Seat: 3}, state)
	return hand, seats, engine
}

func apply(t *testing.T, e *BettingEngine, seat int, kind ActionKind, amount int) Outcome {
	t.Helper()
	out, err := e.Apply(Decision{Seat: seat, Kind: kind, Amount: amount})
	require.NoError(t, err)
	return out
}

func TestFirstActor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		street Street
		dealer int
		want   int
	}{
		{PreFlop, 0, 3},
		{PreFlop, 1, 0},
		{PreFlop, 3, 2},
		{Flop, 0, 1},
		{Turn, 3, 0},
		{River, 2, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FirstActor(tt.street, tt.dealer, 4), "%s dealer %d", tt.street, tt.dealer)
	}
}

func TestBlindsFoldToCallCheck(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t)

	apply(t, e, 3, Fold, 0)
	apply(t, e, 0, Fold, 0)
	out := apply(t, e, 1, Call, 0)
	assert.Equal(t, 10, out.Amount)
	assert.Equal(t, 20, seats[1].StreetContribution)
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 2}, e.State(), "big blind keeps the option")

	apply(t, e, 2, Check, 0)
	assert.Equal(t, StreetComplete, e.State().Kind)
	assert.Equal(t, 40, hand.Pot)
	assert.Equal(t, 20, hand.StreetTargetBet)
	assert.Equal(t, 4, hand.ActionsSinceLastRaise)
}

func TestSingleSurvivorMidStreet(t *testing.T) {
	t.Parallel()
	hand, _, e := preFlop(t)

	apply(t, e, 3, Fold, 0)
	apply(t, e, 0, Fold, 0)
	apply(t, e, 1, Fold, 0)

	assert.Equal(t, State{Kind: SingleSurvivor, Seat: 2}, e.State())
	assert.Equal(t, 30, hand.Pot)

	_, err := e.Apply(Decision{Seat: 2, Kind: Check})
	assert.ErrorIs(t, err, ErrNoTurn)
}

func TestRaiseReopensBetting(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t)

	apply(t, e, 3, Call, 0)
	apply(t, e, 0, Call, 0)
	out := apply(t, e, 1, Raise, 30)
	assert.Equal(t, 50, out.TargetBet)
	assert.Equal(t, 40, out.Amount)
	assert.Equal(t, 0, hand.ActionsSinceLastRaise)
	assert.Equal(t, 950, seats[1].Stack)

	apply(t, e, 2, Call, 0)
	apply(t, e, 3, Call, 0)
	apply(t, e, 0, Call, 0)
	assert.Equal(t, 3, hand.ActionsSinceLastRaise)
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 1}, e.State(), "raiser acts again before the street closes")

	apply(t, e, 1, Check, 0)
	assert.Equal(t, StreetComplete, e.State().Kind)
	assert.Equal(t, 200, hand.Pot)
	for _, s := range seats {
		assert.Equal(t, 50, s.StreetContribution, s.Name)
	}
}

func TestRejectedDecisionsLeaveStateUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stacks   []int
		decision Decision
		reason   Reason
	}{
		{
			name:     "check facing a bet",
			decision: Decision{Seat: 3, Kind: Check},
			reason:   ReasonCheckWithOutstandingBet,
		},
		{
			name:     "raise beyond stack",
			stacks:   []int{1000, 1000, 1000, 30},
			decision: Decision{Seat: 3, Kind: Raise, Amount: 20},
			reason:   ReasonInsufficientChips,
		},
		{
			name:     "zero raise",
			decision: Decision{Seat: 3, Kind: Raise},
			reason:   ReasonInvalidRaise,
		},
		{
			name:     "unknown action",
			decision: Decision{Seat: 3, Kind: ActionKind(42)},
			reason:   ReasonUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hand, seats, e := preFlop(t, tt.stacks...)
			before := *hand
			stack := seats[3].Stack

			_, err := e.Apply(tt.decision)
			require.ErrorIs(t, err, ErrIllegalAction)

			var illegal *IllegalActionError
			require.ErrorAs(t, err, &illegal)
			assert.Equal(t, tt.reason, illegal.Reason)
			assert.Equal(t, 3, illegal.Seat)

			assert.Equal(t, before, *hand)
			assert.Equal(t, stack, seats[3].Stack)
			assert.Equal(t, State{Kind: AwaitingAction, Seat: 3}, e.State())
		})
	}
}

func TestDecisionForWrongSeat(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t)

	_, err := e.Apply(Decision{Seat: 1, Kind: Fold})
	require.ErrorIs(t, err, ErrInvalidSeatOnAction)
	assert.False(t, seats[1].Folded)
	assert.Equal(t, 0, hand.ActionsSinceLastRaise)
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 3}, e.State())
}

func TestShortCallGoesAllIn(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t, 1000, 1000, 1000, 15)

	out := apply(t, e, 3, Call, 0)
	assert.Equal(t, 15, out.Amount)
	assert.True(t, seats[3].IsAllIn())
	assert.True(t, seats[3].IsLive())
	assert.False(t, seats[3].CanAct())

	apply(t, e, 0, Call, 0)
	apply(t, e, 1, Call, 0)
	apply(t, e, 2, Check, 0)
	assert.Equal(t, StreetComplete, e.State().Kind)
	assert.Equal(t, 75, hand.Pot)

	// The all-in seat is skipped on later streets
	hand.Street = Flop
	for _, s := range seats {
		s.StreetContribution = 0
	}
	hand.StreetTargetBet = 0
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 1}, e.OpenStreet(FirstActor(Flop, 0, 4)))
	apply(t, e, 1, Check, 0)
	apply(t, e, 2, Check, 0)
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 0}, e.State())
	apply(t, e, 0, Check, 0)
	assert.Equal(t, StreetComplete, e.State().Kind)
}

func TestAllInRunOut(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t, 1000, 1000, 1000, 100)

	apply(t, e, 3, Raise, 80)
	assert.True(t, seats[3].IsAllIn())
	apply(t, e, 0, Fold, 0)
	apply(t, e, 1, Fold, 0)
	apply(t, e, 2, Call, 0)
	assert.Equal(t, StreetComplete, e.State().Kind)
	assert.Equal(t, 210, hand.Pot)

	// One seat can act and nobody can bet against it
	for _, s := range seats {
		s.StreetContribution = 0
	}
	hand.StreetTargetBet = 0
	assert.Equal(t, StreetComplete, e.OpenStreet(FirstActor(Flop, 0, 4)).Kind)
	assert.Len(t, e.LiveSeats(), 2)
}

func TestInactiveSeatsNeverGetTheTurn(t *testing.T) {
	t.Parallel()
	_, seats, e := preFlop(t, 0, 1000, 1000, 1000)

	apply(t, e, 3, Call, 0)
	assert.Equal(t, State{Kind: AwaitingAction, Seat: 1}, e.State())
	assert.False(t, seats[0].IsLive())
}

func TestContributionsMatchWhenStreetCompletes(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t)

	script := []Decision{
		{Seat: 3, Kind: Raise, Amount: 40},
		{Seat: 0, Kind: Call},
		{Seat: 1, Kind: Fold},
		{Seat: 2, Kind: Raise, Amount: 25},
		{Seat: 3, Kind: Call},
		{Seat: 0, Kind: Call},
	}
	for _, d := range script {
		_, err := e.Apply(d)
		require.NoError(t, err, "%+v", d)
	}

	for e.State().Kind == AwaitingAction {
		apply(t, e, e.State().Seat, Check, 0)
	}
	require.Equal(t, StreetComplete, e.State().Kind)
	for _, s := range e.LiveSeats() {
		assert.Equal(t, hand.StreetTargetBet, s.StreetContribution, s.Name)
	}
	assert.Equal(t, 10, seats[1].HandContribution)
	assert.Equal(t, 10+3*85, hand.Pot)
}

func TestCheckAllowedAboveTarget(t *testing.T) {
	t.Parallel()
	hand, seats, e := preFlop(t)

	// Target below what the seat already committed, as after a short big blind
	hand.StreetTargetBet = 5
	seats[3].StreetContribution = 5
	seats[0].StreetContribution = 5
	apply(t, e, 3, Check, 0)
	apply(t, e, 0, Check, 0)
	out := apply(t, e, 1, Check, 0)
	assert.Zero(t, out.Amount)
	assert.Equal(t, 10, seats[1].StreetContribution)
}

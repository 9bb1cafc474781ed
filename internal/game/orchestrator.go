package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/homegame/internal/randutil"
	"github.com/lox/homegame/poker"
)

// Showdown types reported in HandResult and HandEndEvent
const (
	ShowdownTypeFold     = "fold"
	ShowdownTypeShowdown = "showdown"
)

// HandResult summarises a completed hand
type HandResult struct {
	HandID       string
	Number       int
	Dealer       int
	Winners      []WinnerInfo
	Pot          int
	Remainder    int
	ShowdownType string
	Board        []poker.Card
	Classes      map[int]poker.StrengthClass // Showdown only, keyed by seat
}

// Orchestrator plays hands against a session. All seat and hand mutation
// happens on the goroutine that calls PlayHand or Run.
type Orchestrator struct {
	session *Session
	sources Sources
	inbox   *Inbox
	bus     EventBus
	logger  *log.Logger
	newDeck func() *poker.Deck

	mu     sync.Mutex
	cancel context.CancelFunc
	reset  bool
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithEventBus publishes events to bus instead of a private one
func WithEventBus(bus EventBus) OrchestratorOption {
	return func(o *Orchestrator) { o.bus = bus }
}

// WithDeckFactory sets how the deck for each hand is built
func WithDeckFactory(fn func() *poker.Deck) OrchestratorOption {
	return func(o *Orchestrator) { o.newDeck = fn }
}

// WithRandSource shuffles every hand's deck with the next stream from src
func WithRandSource(src *randutil.Source) OrchestratorOption {
	return func(o *Orchestrator) {
		o.newDeck = func() *poker.Deck { return poker.NewDeck(src.Next()) }
	}
}

// NewOrchestrator creates an orchestrator. There must be one source per seat.
func NewOrchestrator(session *Session, sources Sources, inbox *Inbox, logger *log.Logger, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(sources) != len(session.Seats) {
		return nil, fmt.Errorf("need %d action sources, got %d", len(session.Seats), len(sources))
	}
	for i, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("no action source for seat %d", i)
		}
	}

	o := &Orchestrator{
		session: session,
		sources: sources,
		inbox:   inbox,
		bus:     NewEventBus(),
		logger:  logger.WithPrefix("table"),
		newDeck: func() *poker.Deck { return poker.NewDeck(randutil.Fresh()) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// EventBus returns the bus events are published on
func (o *Orchestrator) EventBus() EventBus {
	return o.bus
}

// Session returns the session being played
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Run plays hands until the session is over, maxHands hands have completed
// (0 means no limit) or ctx is cancelled. Reset hands do not count.
func (o *Orchestrator) Run(ctx context.Context, maxHands int) error {
	played := 0
	for maxHands <= 0 || played < maxHands {
		if o.session.Over() {
			o.logger.Info("Session over", "hands", o.session.HandsPlayed)
			o.bus.Publish(SessionOverEvent{
				stamp:       now(),
				HandsPlayed: o.session.HandsPlayed,
				Seats:       o.session.Snapshot(),
			})
			return nil
		}

		result, err := o.PlayHand(ctx)
		if errors.Is(err, ErrHandAborted) {
			o.logger.Info("Hand reset, dealing a new one")
			continue
		}
		if err != nil {
			return err
		}
		played++

		o.logger.Info("Hand complete",
			"hand", result.Number,
			"type", result.ShowdownType,
			"pot", result.Pot,
			"winners", len(result.Winners))
	}
	return nil
}

// ResetHand abandons the hand in progress. A pending decision is discarded,
// stakes are refunded and PlayHand returns ErrHandAborted. It returns false
// if no hand is running.
func (o *Orchestrator) ResetHand() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return false
	}
	o.reset = true
	o.cancel()
	return true
}

// PlayHand plays one hand to completion and rotates the dealer button
func (o *Orchestrator) PlayHand(ctx context.Context) (*HandResult, error) {
	if o.session.Over() {
		return nil, ErrSessionOver
	}

	handCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.reset = false
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
		cancel()
	}()

	hand := o.newHand()
	logger := o.logger.With("hand", hand.Number)

	result, err := o.play(handCtx, hand)
	if err != nil {
		o.mu.Lock()
		wasReset := o.reset
		o.mu.Unlock()

		reason := err.Error()
		if wasReset {
			reason = "reset requested"
		}
		o.abort(hand, reason)

		switch {
		case wasReset:
			logger.Info("Hand aborted", "reason", reason)
			return nil, ErrHandAborted
		case ctx.Err() != nil:
			return nil, fmt.Errorf("hand %d: %w", hand.Number, ctx.Err())
		default:
			logger.Error("Hand terminated", "error", err)
			return nil, fmt.Errorf("hand %d: %w", hand.Number, err)
		}
	}

	o.session.HandsPlayed++
	o.session.Discarded += result.Remainder
	o.session.RotateDealer()

	if err := o.session.ValidateChipConservation(); err != nil {
		logger.Error("Chip conservation violation detected!", "error", err)
		return result, fmt.Errorf("chip conservation violation: %w", err)
	}

	o.bus.Publish(HandEndEvent{
		stamp:        now(),
		HandID:       result.HandID,
		Winners:      result.Winners,
		Pot:          result.Pot,
		Remainder:    result.Remainder,
		ShowdownType: result.ShowdownType,
		Board:        result.Board,
	})
	return result, nil
}

func (o *Orchestrator) newHand() *HandState {
	for _, seat := range o.session.Seats {
		seat.ResetForHand()
	}
	return &HandState{
		ID:     uuid.NewString(),
		Number: o.session.HandsPlayed + 1,
		Street: PreFlop,
		Dealer: o.session.Dealer,
		Deck:   o.newDeck(),
	}
}

func (o *Orchestrator) play(ctx context.Context, hand *HandState) (*HandResult, error) {
	seats := o.session.Seats
	n := len(seats)
	sb, bb := (hand.Dealer+1)%n, (hand.Dealer+2)%n

	o.logger.Debug("Starting hand", "hand", hand.Number, "id", hand.ID, "dealer", hand.Dealer)
	o.bus.Publish(HandStartEvent{
		stamp:          now(),
		HandID:         hand.ID,
		Number:         hand.Number,
		Dealer:         hand.Dealer,
		SmallBlindSeat: sb,
		BigBlindSeat:   bb,
		SmallBlind:     o.session.SmallBlind,
		BigBlind:       o.session.BigBlind,
		Seats:          o.session.Snapshot(),
	})

	if err := o.dealHoleCards(hand); err != nil {
		return nil, err
	}
	sbPosted := o.postBlind(hand, seats[sb], o.session.SmallBlind, false)
	bbPosted := o.postBlind(hand, seats[bb], o.session.BigBlind, true)
	// A short or busted big blind never leaves the small blind over the target
	hand.StreetTargetBet = max(sbPosted, bbPosted)

	engine := NewBettingEngine(hand, seats)
	state := engine.OpenStreet(FirstActor(PreFlop, hand.Dealer, n))
	for {
		for state.Kind == AwaitingAction {
			var err error
			if state, err = o.runTurn(ctx, hand, engine, state.Seat); err != nil {
				return nil, err
			}
		}

		if state.Kind == SingleSurvivor {
			return o.awardSurvivor(hand, state.Seat)
		}
		if hand.Street == River {
			return o.showdown(hand, engine)
		}
		if err := o.nextStreet(hand); err != nil {
			return nil, err
		}
		state = engine.OpenStreet(FirstActor(hand.Street, hand.Dealer, n))
	}
}

func (o *Orchestrator) dealHoleCards(hand *HandState) error {
	for _, seat := range o.session.Seats {
		if !seat.Active {
			continue
		}
		cards, err := hand.Deck.DealN(2)
		if err != nil {
			return fmt.Errorf("deal hole cards to seat %d: %w", seat.Index, err)
		}
		seat.HoleCards = cards
		o.bus.Publish(HoleCardsDealtEvent{stamp: now(), Seat: seat.Index, Cards: slices.Clone(cards)})
	}
	return nil
}

// postBlind commits min(blind, stack) and returns the amount posted
func (o *Orchestrator) postBlind(hand *HandState, seat *Seat, blind int, big bool) int {
	amount := min(blind, seat.Stack)
	seat.commit(amount)
	hand.Pot += amount

	o.bus.Publish(BlindPostedEvent{stamp: now(), Seat: seat.Index, Name: seat.Name, Big: big, Amount: amount})
	o.bus.Publish(StackChangedEvent{stamp: now(), Seat: seat.Index, Stack: seat.Stack})
	o.bus.Publish(PotChangedEvent{stamp: now(), Pot: hand.Pot})
	return amount
}

func (o *Orchestrator) nextStreet(hand *HandState) error {
	for _, seat := range o.session.Seats {
		seat.StreetContribution = 0
	}
	hand.StreetTargetBet = 0
	hand.ActionsSinceLastRaise = 0

	street, count := hand.Street.next()
	hand.Street = street
	cards, err := hand.Deck.DealN(count)
	if err != nil {
		return fmt.Errorf("deal %s: %w", street, err)
	}
	for _, card := range cards {
		hand.Community = append(hand.Community, card)
		o.bus.Publish(CommunityCardEvent{stamp: now(), Card: card, Slot: len(hand.Community) - 1})
	}

	o.logger.Debug("Dealt "+street.String(), "hand", hand.Number, "board", poker.FormatCards(hand.Community))
	o.bus.Publish(StreetChangeEvent{stamp: now(), Street: street, Community: slices.Clone(hand.Community)})
	return nil
}

func (o *Orchestrator) request(hand *HandState, seat *Seat) DecisionRequest {
	return DecisionRequest{
		HandID:             hand.ID,
		Seat:               seat.Index,
		Name:               seat.Name,
		Street:             hand.Street,
		Pot:                hand.Pot,
		TargetBet:          hand.StreetTargetBet,
		StreetContribution: seat.StreetContribution,
		ToCall:             hand.ToCall(seat),
		Stack:              seat.Stack,
		HoleCards:          slices.Clone(seat.HoleCards),
		Community:          slices.Clone(hand.Community),
	}
}

// runTurn prompts the seat on turn until one of its decisions is accepted
func (o *Orchestrator) runTurn(ctx context.Context, hand *HandState, engine *BettingEngine, seatIdx int) (State, error) {
	if seatIdx < 0 || seatIdx >= len(o.sources) {
		return State{}, fmt.Errorf("%w: %d", ErrCorruptSeat, seatIdx)
	}
	seat := o.session.Seats[seatIdx]

	for _, d := range o.inbox.Drain() {
		o.logger.Debug("Discarding stale decision", "seat", d.Seat, "action", d.Kind)
	}

	for {
		req := o.request(hand, seat)
		o.bus.Publish(TurnEvent{stamp: now(), Request: req})

		turnCtx, cancel := context.WithCancel(ctx)
		o.sources[seatIdx].RequestDecision(turnCtx, req)
		d, out, err := o.awaitDecision(turnCtx, engine)
		cancel()

		var illegal *IllegalActionError
		if errors.As(err, &illegal) {
			o.logger.Info("Illegal action rejected", "seat", seatIdx, "action", illegal.Action, "reason", illegal.Reason)
			o.bus.Publish(IllegalActionEvent{
				stamp:   now(),
				Seat:    seatIdx,
				Name:    seat.Name,
				Action:  illegal.Action,
				Reason:  illegal.Reason,
				Message: illegal.Error(),
			})
			continue
		}
		if err != nil {
			return State{}, err
		}

		o.publishAction(hand, seat, d, out)
		if err := o.checkChips(hand); err != nil {
			return State{}, err
		}
		return engine.State(), nil
	}
}

// awaitDecision reads the inbox until a decision for the seat on turn is
// accepted or rejected. Decisions for any other seat are dropped.
func (o *Orchestrator) awaitDecision(ctx context.Context, engine *BettingEngine) (Decision, Outcome, error) {
	for {
		d, err := o.inbox.Next(ctx)
		if err != nil {
			return d, Outcome{}, err
		}
		out, err := engine.Apply(d)
		if errors.Is(err, ErrInvalidSeatOnAction) {
			o.logger.Warn("Ignoring decision for seat not on turn",
				"seat", d.Seat,
				"turn", engine.State().Seat,
				"action", d.Kind)
			continue
		}
		return d, out, err
	}
}

func (o *Orchestrator) publishAction(hand *HandState, seat *Seat, d Decision, out Outcome) {
	o.logger.Debug("Player action",
		"hand", hand.Number,
		"seat", seat.Index,
		"action", out.Action,
		"amount", out.Amount,
		"pot", hand.Pot)

	o.bus.Publish(PlayerActionEvent{
		stamp:     now(),
		Seat:      seat.Index,
		Name:      seat.Name,
		Action:    out.Action,
		Amount:    out.Amount,
		TargetBet: out.TargetBet,
		Street:    hand.Street,
		PotAfter:  out.Pot,
		Reasoning: d.Reasoning,
	})
	if out.Amount > 0 {
		o.bus.Publish(StackChangedEvent{stamp: now(), Seat: seat.Index, Stack: seat.Stack})
		o.bus.Publish(PotChangedEvent{stamp: now(), Pot: hand.Pot})
	}
}

// checkChips verifies that stacks plus the pot still add up while a hand is
// in progress
func (o *Orchestrator) checkChips(hand *HandState) error {
	if got, want := o.session.TotalChips()+hand.Pot, o.session.ExpectedChips(); got != want {
		return fmt.Errorf("chips in play %d, expected %d", got, want)
	}
	return nil
}

func (o *Orchestrator) awardSurvivor(hand *HandState, winnerIdx int) (*HandResult, error) {
	if winnerIdx < 0 || winnerIdx >= len(o.session.Seats) {
		return nil, fmt.Errorf("%w: survivor %d", ErrCorruptSeat, winnerIdx)
	}
	winner := o.session.Seats[winnerIdx]
	o.revealHoleCards(nil)

	winner.Stack += hand.Pot
	o.logger.Debug("Hand won by fold", "hand", hand.Number, "winner", winner.Name, "pot", hand.Pot)
	o.bus.Publish(StackChangedEvent{stamp: now(), Seat: winner.Index, Stack: winner.Stack})
	o.bus.Publish(PotChangedEvent{stamp: now(), Pot: 0})

	return &HandResult{
		HandID:       hand.ID,
		Number:       hand.Number,
		Dealer:       hand.Dealer,
		Winners:      []WinnerInfo{{Seat: winner.Index, Name: winner.Name, Amount: hand.Pot}},
		Pot:          hand.Pot,
		ShowdownType: ShowdownTypeFold,
		Board:        slices.Clone(hand.Community),
	}, nil
}

// showdown classifies every live seat and splits the pot between those
// holding the best class. Odd chips are not paid out.
func (o *Orchestrator) showdown(hand *HandState, engine *BettingEngine) (*HandResult, error) {
	hand.Street = Showdown
	o.bus.Publish(StreetChangeEvent{stamp: now(), Street: Showdown, Community: slices.Clone(hand.Community)})

	classes := make(map[int]poker.StrengthClass)
	var best poker.StrengthClass
	var winners []*Seat
	for _, seat := range engine.LiveSeats() {
		cards := append(slices.Clone(seat.HoleCards), hand.Community...)
		class, err := poker.Classify(cards)
		if err != nil {
			return nil, fmt.Errorf("classify seat %d: %w", seat.Index, err)
		}
		classes[seat.Index] = class

		switch cmp := poker.Compare(class, best); {
		case len(winners) == 0 || cmp > 0:
			best = class
			winners = []*Seat{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	if len(winners) == 0 {
		return nil, errors.New("showdown with no live seats")
	}
	o.revealHoleCards(classes)

	share := hand.Pot / len(winners)
	remainder := hand.Pot % len(winners)
	result := &HandResult{
		HandID:       hand.ID,
		Number:       hand.Number,
		Dealer:       hand.Dealer,
		Pot:          hand.Pot,
		Remainder:    remainder,
		ShowdownType: ShowdownTypeShowdown,
		Board:        slices.Clone(hand.Community),
		Classes:      classes,
	}
	for _, w := range winners {
		w.Stack += share
		result.Winners = append(result.Winners, WinnerInfo{
			Seat:     w.Index,
			Name:     w.Name,
			Amount:   share,
			Class:    best,
			HasClass: true,
		})
		o.bus.Publish(StackChangedEvent{stamp: now(), Seat: w.Index, Stack: w.Stack})
	}
	o.bus.Publish(PotChangedEvent{stamp: now(), Pot: 0})

	o.logger.Debug("Hand went to showdown",
		"hand", hand.Number,
		"class", best,
		"winners", len(winners),
		"share", share,
		"remainder", remainder)
	return result, nil
}

// revealHoleCards shows every dealt hand. classes is nil when the hand ended
// without a showdown.
func (o *Orchestrator) revealHoleCards(classes map[int]poker.StrengthClass) {
	for _, seat := range o.session.Seats {
		if len(seat.HoleCards) == 0 {
			continue
		}
		class, ok := classes[seat.Index]
		o.bus.Publish(HoleCardsRevealedEvent{
			stamp:    now(),
			Seat:     seat.Index,
			Name:     seat.Name,
			Cards:    slices.Clone(seat.HoleCards),
			Class:    class,
			HasClass: ok,
		})
	}
}

// abort refunds everything committed this hand
func (o *Orchestrator) abort(hand *HandState, reason string) {
	for _, seat := range o.session.Seats {
		if seat.refund() > 0 {
			o.bus.Publish(StackChangedEvent{stamp: now(), Seat: seat.Index, Stack: seat.Stack})
		}
	}
	hand.Pot = 0
	o.bus.Publish(PotChangedEvent{stamp: now(), Pot: 0})
	o.bus.Publish(HandAbortedEvent{
		stamp:  now(),
		HandID: hand.ID,
		Reason: reason,
		Seats:  o.session.Snapshot(),
	})
}

package game

import (
	"sync"
	"time"

	"github.com/lox/homegame/poker"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeHandStart         EventType = "hand_start"
	EventTypeHoleCardsDealt    EventType = "hole_cards_dealt"
	EventTypeBlindPosted       EventType = "blind_posted"
	EventTypeTurn              EventType = "turn"
	EventTypePlayerAction      EventType = "player_action"
	EventTypePotChanged        EventType = "pot_changed"
	EventTypeStackChanged      EventType = "stack_changed"
	EventTypeStreetChange      EventType = "street_change"
	EventTypeCommunityCard     EventType = "community_card"
	EventTypeHoleCardsRevealed EventType = "hole_cards_revealed"
	EventTypeHandEnd           EventType = "hand_end"
	EventTypeIllegalAction     EventType = "illegal_action"
	EventTypeHandAborted       EventType = "hand_aborted"
	EventTypeSessionOver       EventType = "session_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a game
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

type stamp struct {
	at time.Time
}

func now() stamp { return stamp{at: time.Now()} }

func (s stamp) Timestamp() time.Time { return s.at }

// HandStartEvent is published when a new hand begins, before any card is dealt
type HandStartEvent struct {
	stamp
	HandID         string
	Number         int
	Dealer         int
	SmallBlindSeat int
	BigBlindSeat   int
	SmallBlind     int
	BigBlind       int
	Seats          []SeatSnapshot
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }

// HoleCardsDealtEvent carries a seat's private cards. Presentation decides
// whose cards to show.
type HoleCardsDealtEvent struct {
	stamp
	Seat  int
	Cards []poker.Card
}

func (e HoleCardsDealtEvent) EventType() EventType { return EventTypeHoleCardsDealt }

// BlindPostedEvent is published for each forced bet
type BlindPostedEvent struct {
	stamp
	Seat   int
	Name   string
	Big    bool
	Amount int
}

func (e BlindPostedEvent) EventType() EventType { return EventTypeBlindPosted }

// TurnEvent is published when a seat is put on turn
type TurnEvent struct {
	stamp
	Request DecisionRequest
}

func (e TurnEvent) EventType() EventType { return EventTypeTurn }

// PlayerActionEvent is published after a decision has been applied
type PlayerActionEvent struct {
	stamp
	Seat      int
	Name      string
	Action    ActionKind
	Amount    int // Chips moved into the pot
	TargetBet int
	Street    Street
	PotAfter  int
	Reasoning string
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

// PotChangedEvent carries the new pot total
type PotChangedEvent struct {
	stamp
	Pot int
}

func (e PotChangedEvent) EventType() EventType { return EventTypePotChanged }

// StackChangedEvent carries a seat's new stack
type StackChangedEvent struct {
	stamp
	Seat  int
	Stack int
}

func (e StackChangedEvent) EventType() EventType { return EventTypeStackChanged }

// StreetChangeEvent is published when a new street opens
type StreetChangeEvent struct {
	stamp
	Street    Street
	Community []poker.Card
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }

// CommunityCardEvent is published for each board card, Slot counts from 0
type CommunityCardEvent struct {
	stamp
	Card poker.Card
	Slot int
}

func (e CommunityCardEvent) EventType() EventType { return EventTypeCommunityCard }

// HoleCardsRevealedEvent shows a seat's cards at the end of a hand. Class is
// only meaningful when HasClass is set (showdown).
type HoleCardsRevealedEvent struct {
	stamp
	Seat     int
	Name     string
	Cards    []poker.Card
	Class    poker.StrengthClass
	HasClass bool
}

func (e HoleCardsRevealedEvent) EventType() EventType { return EventTypeHoleCardsRevealed }

// WinnerInfo captures winner information
type WinnerInfo struct {
	Seat     int
	Name     string
	Amount   int
	Class    poker.StrengthClass
	HasClass bool
}

// HandEndEvent is published once the pot has been paid
type HandEndEvent struct {
	stamp
	HandID       string
	Winners      []WinnerInfo
	Pot          int
	Remainder    int // Chips left over by an uneven split, not paid to anyone
	ShowdownType string
	Board        []poker.Card
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }

// IllegalActionEvent is published when a decision is rejected
type IllegalActionEvent struct {
	stamp
	Seat    int
	Name    string
	Action  ActionKind
	Reason  Reason
	Message string
}

func (e IllegalActionEvent) EventType() EventType { return EventTypeIllegalAction }

// HandAbortedEvent is published when a hand is abandoned and stakes refunded
type HandAbortedEvent struct {
	stamp
	HandID string
	Reason string
	Seats  []SeatSnapshot
}

func (e HandAbortedEvent) EventType() EventType { return EventTypeHandAborted }

// SessionOverEvent is published when fewer than two seats have chips left
type SessionOverEvent struct {
	stamp
	HandsPlayed int
	Seats       []SeatSnapshot
}

func (e SessionOverEvent) EventType() EventType { return EventTypeSessionOver }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventSubscriberFunc adapts a function to EventSubscriber
type EventSubscriberFunc func(event GameEvent)

func (f EventSubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously in subscription order
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. Function subscribers cannot be compared
// and are only removed by identity of the wrapping value.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sameSubscriber(sub, subscriber) {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}

func sameSubscriber(a, b EventSubscriber) bool {
	if _, ok := a.(EventSubscriberFunc); ok {
		return false
	}
	return a == b
}

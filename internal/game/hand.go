package game

import (
	"github.com/lox/homegame/poker"
)

// Street represents the betting round
type Street int

const (
	PreFlop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	switch s {
	case PreFlop:
		return "pre-flop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// next returns the following street and how many community cards it reveals
func (s Street) next() (Street, int) {
	switch s {
	case PreFlop:
		return Flop, 3
	case Flop:
		return Turn, 1
	case Turn:
		return River, 1
	default:
		return Showdown, 0
	}
}

// HandState is the state of the hand in progress. It is created when a hand
// starts and dropped once the pot has been paid.
type HandState struct {
	ID     string
	Number int

	Pot                   int
	StreetTargetBet       int
	Street                Street
	Community             []poker.Card
	Dealer                int
	TurnIndex             int
	ActionsSinceLastRaise int

	Deck *poker.Deck
}

// ToCall returns how much the seat must add to match the street target
func (h *HandState) ToCall(s *Seat) int {
	return max(h.StreetTargetBet-s.StreetContribution, 0)
}

// boardSize returns how many community cards are out once the street opens
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	default:
		return 0
	}
}

package poker

import (
	"errors"
	"fmt"
)

// StrengthClass is the coarse ranking bucket a set of cards falls into.
// Only rank multiplicities are considered: straights, flushes and kickers are
// ignored, so two ThreeOfAKind hands always compare equal.
type StrengthClass uint8

// Ordinals are part of the contract: FullHouse is 6 and FourOfAKind is 7.
const (
	HighCard     StrengthClass = 0
	OnePair      StrengthClass = 1
	TwoPair      StrengthClass = 2
	ThreeOfAKind StrengthClass = 3
	FullHouse    StrengthClass = 6
	FourOfAKind  StrengthClass = 7
)

func (s StrengthClass) String() string {
	switch s {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	default:
		return fmt.Sprintf("StrengthClass(%d)", uint8(s))
	}
}

// ErrCardCount is returned when classifying fewer than 5 or more than 7 cards
var ErrCardCount = errors.New("classify needs between 5 and 7 cards")

// Classify groups cards by rank and buckets the multiset of group sizes.
//
// Precedence: a group of four; a group of exactly three together with a group
// of exactly two; any group of three; exactly two pairs; exactly one pair.
// Two triples without a pair are ThreeOfAKind and three pairs are OnePair.
func Classify(cards []Card) (StrengthClass, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HighCard, fmt.Errorf("%w: got %d", ErrCardCount, len(cards))
	}
	return classifyCounts(rankCounts(cards)), nil
}

func rankCounts(cards []Card) map[Rank]int {
	counts := make(map[Rank]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

func classifyCounts(counts map[Rank]int) StrengthClass {
	var quads, trips, pairs int
	for _, n := range counts {
		switch n {
		case 4:
			quads++
		case 3:
			trips++
		case 2:
			pairs++
		}
	}

	switch {
	case quads > 0:
		return FourOfAKind
	case trips > 0 && pairs > 0:
		return FullHouse
	case trips > 0:
		return ThreeOfAKind
	case pairs == 2:
		return TwoPair
	case pairs >= 1:
		return OnePair
	default:
		return HighCard
	}
}

// Compare returns 1 if a is stronger than b, -1 if weaker and 0 if equal
func Compare(a, b StrengthClass) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

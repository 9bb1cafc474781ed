package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "A♠", NewCard(Ace, Spades).String())
	assert.Equal(t, "10♥", NewCard(Ten, Hearts).String())
	assert.Equal(t, "2♣", NewCard(Two, Clubs).String())
	assert.True(t, NewCard(Queen, Diamonds).IsRed())
	assert.False(t, NewCard(Queen, Clubs).IsRed())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Card
		wantErr bool
	}{
		{"As", NewCard(Ace, Spades), false},
		{"2h", NewCard(Two, Hearts), false},
		{"Td", NewCard(Ten, Diamonds), false},
		{"10c", NewCard(Ten, Clubs), false},
		{"kS", NewCard(King, Spades), false},
		{"Q♦", NewCard(Queen, Diamonds), false},
		{"1s", Card{}, true},
		{"Ax", Card{}, true},
		{"", Card{}, true},
		{"100h", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullDeckHasNoDuplicates(t *testing.T) {
	t.Parallel()
	cards := FullDeck()
	require.Len(t, cards, 52)

	seen := make(map[Card]bool, 52)
	for _, c := range cards {
		require.False(t, seen[c], "duplicate card %s", c)
		require.True(t, c.Rank.Valid())
		seen[c] = true
	}
}

func TestMustParseCards(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("As Kd 10h")
	require.Len(t, cards, 3)
	assert.Equal(t, "A♠ K♦ 10♥", FormatCards(cards))
	assert.Panics(t, func() { MustParseCards("As Zz") })
}

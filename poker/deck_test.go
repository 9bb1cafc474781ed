package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/homegame/internal/randutil"
)

func TestDeckDealsEveryCardOnce(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(42))
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool, 52)
	for range 52 {
		c, err := d.Deal()
		require.NoError(t, err)
		require.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
	assert.Equal(t, 0, d.Remaining())

	_, err := d.Deal()
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeckShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	a := NewDeck(randutil.New(7))
	b := NewDeck(randutil.New(7))
	c := NewDeck(randutil.New(8))

	ca, err := a.DealN(13)
	require.NoError(t, err)
	cb, err := b.DealN(13)
	require.NoError(t, err)
	cc, err := c.DealN(13)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.NotEqual(t, ca, cc)
}

func TestDeckIsShuffled(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(1))
	dealt, err := d.DealN(52)
	require.NoError(t, err)
	assert.NotEqual(t, FullDeck(), dealt)
	assert.ElementsMatch(t, FullDeck(), dealt)
}

func TestDealNInsufficient(t *testing.T) {
	t.Parallel()
	d := NewOrderedDeck(MustParseCards("As Ks Qs"))
	_, err := d.DealN(4)
	require.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 3, d.Remaining(), "failed deal must not consume cards")

	cards, err := d.DealN(2)
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("As Ks"), cards)
}

func TestNewDeckRequiresRNG(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewDeck(nil) })
}

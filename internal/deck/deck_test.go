// internal/deck/deck_test.go
package deck

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

func TestNewDeckComposition(t *testing.T) {
	cards := New()
	require.Len(t, cards, Size)

	perHero := map[models.Hero]int{}
	seen := map[uuid.UUID]bool{}
	for _, c := range cards {
		perHero[c.Hero]++
		assert.False(t, seen[c.ID], "card instance ids must be unique")
		seen[c.ID] = true
		assert.Equal(t, Points(c.Hero), c.Points)
	}
	require.Len(t, perHero, len(Heroes))
	for _, hero := range Heroes {
		assert.Equal(t, CopiesPerHero, perHero[hero], "hero %s", hero)
	}
}

func TestNewDecksDoNotShareInstances(t *testing.T) {
	a, b := New(), New()
	ids := map[uuid.UUID]bool{}
	for _, c := range a {
		ids[c.ID] = true
	}
	for _, c := range b {
		assert.False(t, ids[c.ID])
	}
}

func TestShufflePreservesCards(t *testing.T) {
	cards := New()
	before := map[uuid.UUID]bool{}
	for _, c := range cards {
		before[c.ID] = true
	}
	Shuffle(cards)
	require.Len(t, cards, Size)
	for _, c := range cards {
		assert.True(t, before[c.ID])
	}
}

func TestDeal(t *testing.T) {
	cards := New()
	hands, err := Deal(cards, 3)
	require.NoError(t, err)
	require.Len(t, hands, 3)

	dealt := map[uuid.UUID]bool{}
	for i, hand := range hands {
		require.Len(t, hand, HandSize)
		for j, c := range hand {
			assert.False(t, dealt[c.ID], "card dealt twice")
			dealt[c.ID] = true
			assert.Same(t, cards[i*HandSize+j], c, "hands are contiguous blocks")
		}
	}
}

func TestDealTooManyPlayers(t *testing.T) {
	_, err := Deal(New(), 5)
	assert.Error(t, err)
}

func TestWinning(t *testing.T) {
	mk := func(heroes ...models.Hero) []*models.Card {
		hand := make([]*models.Card, len(heroes))
		for i, h := range heroes {
			hand[i] = &models.Card{ID: uuid.New(), Hero: h, Points: Points(h)}
		}
		return hand
	}

	hero, ok := Winning(mk(models.HeroFlash, models.HeroFlash, models.HeroFlash, models.HeroFlash))
	assert.True(t, ok)
	assert.Equal(t, models.HeroFlash, hero)

	_, ok = Winning(mk(models.HeroFlash, models.HeroFlash, models.HeroFlash, models.HeroBatman))
	assert.False(t, ok)

	_, ok = Winning(mk(models.HeroFlash, models.HeroFlash, models.HeroFlash))
	assert.False(t, ok)

	_, ok = Winning(nil)
	assert.False(t, ok)
}

func TestHeroCount(t *testing.T) {
	hand := []*models.Card{
		{ID: uuid.New(), Hero: models.HeroBatman},
		{ID: uuid.New(), Hero: models.HeroBatman},
		{ID: uuid.New(), Hero: models.HeroSuperman},
	}
	assert.Equal(t, 2, HeroCount(hand, models.HeroBatman))
	assert.Equal(t, 1, HeroCount(hand, models.HeroSuperman))
	assert.Equal(t, 0, HeroCount(hand, models.HeroFlash))
}

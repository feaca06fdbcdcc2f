// internal/deck/deck.go
package deck

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

const (
	// CopiesPerHero is how many identical cards each hero has.
	CopiesPerHero = 4
	// HandSize is how many cards every seated player holds.
	HandSize = 4
	// Size is the total number of cards in a fresh deck.
	Size = 16
)

// Heroes lists the four heroes in deck-build order.
var Heroes = []models.Hero{
	models.HeroSuperman,
	models.HeroBatman,
	models.HeroWonderWoman,
	models.HeroFlash,
}

var heroPoints = map[models.Hero]int{
	models.HeroSuperman:    10,
	models.HeroBatman:      9,
	models.HeroWonderWoman: 11,
	models.HeroFlash:       8,
}

// Points returns the printed point value for a hero's cards.
func Points(h models.Hero) int {
	return heroPoints[h]
}

// New builds an unshuffled 16-card deck. Every card gets a fresh
// instance id, so two rounds never share card identities.
func New() []*models.Card {
	cards := make([]*models.Card, 0, Size)
	for _, hero := range Heroes {
		for i := 0; i < CopiesPerHero; i++ {
			cards = append(cards, &models.Card{
				ID:     uuid.New(),
				Hero:   hero,
				Points: heroPoints[hero],
			})
		}
	}
	return cards
}

// Shuffle permutes cards in place.
func Shuffle(cards []*models.Card) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal splits the front of a shuffled deck into numPlayers contiguous
// hands of HandSize cards. Cards beyond numPlayers*HandSize sit out
// for the round.
func Deal(cards []*models.Card, numPlayers int) ([][]*models.Card, error) {
	need := numPlayers * HandSize
	if need > len(cards) {
		return nil, fmt.Errorf("deal %d players: need %d cards, have %d", numPlayers, need, len(cards))
	}
	hands := make([][]*models.Card, numPlayers)
	for i := 0; i < numPlayers; i++ {
		hand := make([]*models.Card, HandSize)
		copy(hand, cards[i*HandSize:(i+1)*HandSize])
		hands[i] = hand
	}
	return hands, nil
}

// HeroCount returns how many cards of hero h are in hand.
func HeroCount(hand []*models.Card, h models.Hero) int {
	n := 0
	for _, c := range hand {
		if c.Hero == h {
			n++
		}
	}
	return n
}

// Winning reports whether hand is a completed set: exactly HandSize
// cards, all the same hero.
func Winning(hand []*models.Card) (models.Hero, bool) {
	if len(hand) != HandSize {
		return "", false
	}
	hero := hand[0].Hero
	for _, c := range hand[1:] {
		if c.Hero != hero {
			return "", false
		}
	}
	return hero, true
}

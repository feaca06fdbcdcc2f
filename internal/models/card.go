// internal/models/card.go
package models

import "github.com/google/uuid"

// Hero is one of the four characters printed on the cards.
type Hero string

const (
	HeroSuperman    Hero = "Superman"
	HeroBatman      Hero = "Batman"
	HeroWonderWoman Hero = "Wonder Woman"
	HeroFlash       Hero = "Flash"
)

// Card is a single physical card in a round. ID identifies the card
// instance: two cards of the same hero are still distinct cards, which
// is what the pass restriction keys on.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Hero   Hero      `json:"hero"`
	Points int       `json:"points"`
}

// internal/models/player.go
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Player is a connected client identity, created when the connection
// announces itself. ID is the connection id, not an account id; the
// same person reconnecting gets a fresh Player.
type Player struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	AvatarID   int             `json:"avatarId"`
	AccountID  uuid.UUID       `json:"accountId,omitempty"` // uuid.Nil when not linked to an account
	CardDesign json.RawMessage `json:"cardDesign,omitempty"`

	// RoomID is the room this player currently occupies, uuid.Nil when
	// they are in the hall.
	RoomID uuid.UUID `json:"-"`
}

// RoomPlayer is a seat at a table: the identity of a Player (or an AI)
// plus the per-round state attached to it.
type RoomPlayer struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	AvatarID   int             `json:"avatarId"`
	AccountID  uuid.UUID       `json:"-"`
	CardDesign json.RawMessage `json:"cardDesign,omitempty"`

	IsAI       bool   `json:"isAI,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	Hand        []*Card `json:"-"`
	CardsPlayed int     `json:"cardsPlayed"`

	// LastReceivedID is the instance id of the card most recently
	// passed to this player, uuid.Nil before their first receive.
	LastReceivedID uuid.UUID `json:"-"`
}

// Seat returns a new seat for p with empty round state.
func (p *Player) Seat() *RoomPlayer {
	return &RoomPlayer{
		ID:         p.ID,
		Name:       p.Name,
		AvatarID:   p.AvatarID,
		AccountID:  p.AccountID,
		CardDesign: p.CardDesign,
	}
}

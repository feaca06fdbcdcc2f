// internal/room/events.go
package room

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// EventType tags a server-to-client event.
type EventType string

const (
	EventPlayerInfo           EventType = "playerInfo"
	EventRoomList             EventType = "roomList"
	EventJoinedRoom           EventType = "joinedRoom"
	EventLeftRoom             EventType = "leftRoom"
	EventGameStarted          EventType = "gameStarted"
	EventGameState            EventType = "gameState"
	EventCardPassed           EventType = "cardPassed"
	EventGameWon              EventType = "gameWon"
	EventGameReset            EventType = "gameReset"
	EventChatMessage          EventType = "chatMessage"
	EventPlayerJoined         EventType = "playerJoined"
	EventPlayerLeft           EventType = "playerLeft"
	EventSpectatorJoined      EventType = "spectatorJoined"
	EventSpectatorLeft        EventType = "spectatorLeft"
	EventPlayerUpdated        EventType = "playerUpdated"
	EventPrivateRoomCreated   EventType = "privateRoomCreated"
	EventPrivateRoomValidated EventType = "privateRoomValidated"
	EventError                EventType = "error"
	EventPong                 EventType = "pong"
)

// PlayerInfo is the public identity of a player or spectator.
type PlayerInfo struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	AvatarID int       `json:"avatarId"`
}

// SeatInfo is the public view of a seat: identity plus the round state
// everyone at the table may see. Hands stay private; only their size
// is exposed.
type SeatInfo struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	AvatarID    int             `json:"avatarId"`
	HandSize    int             `json:"handSize"`
	CardsPlayed int             `json:"cardsPlayed"`
	IsAI        bool            `json:"isAI,omitempty"`
	Difficulty  string          `json:"difficulty,omitempty"`
	CardDesign  json.RawMessage `json:"cardDesign,omitempty"`
}

// Winner records who ended the round and with what set.
type Winner struct {
	PlayerID uuid.UUID   `json:"playerId"`
	Name     string      `json:"name"`
	AvatarID int         `json:"avatarId"`
	Hero     models.Hero `json:"hero"`
	IsAI     bool        `json:"isAI,omitempty"`

	// AccountID is uuid.Nil for AI seats and unlinked guests.
	AccountID uuid.UUID `json:"accountId"`
}

// Snapshot is the public state of a room, as sent in room lists and
// join acknowledgements.
type Snapshot struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	MaxPlayers   int          `json:"maxPlayers"`
	TurnDuration int          `json:"turnDuration"`
	Started      bool         `json:"started"`
	Private      bool         `json:"private,omitempty"`
	CreatorID    uuid.UUID    `json:"creatorId"`
	Players      []SeatInfo   `json:"players"`
	Spectators   []PlayerInfo `json:"spectators"`
	CurrentTurn  int          `json:"currentTurn"`
	Winner       *Winner      `json:"winner,omitempty"`
}

// Event is a server-to-client message. Type decides which of the
// optional fields are populated.
type Event struct {
	Type EventType `json:"type"`

	Self    *models.Player       `json:"self,omitempty"`    // playerInfo
	Room    *Snapshot            `json:"room,omitempty"`    // joinedRoom, gameStarted, gameReset
	Rooms   []Snapshot           `json:"rooms,omitempty"`   // roomList
	History []models.ChatMessage `json:"history,omitempty"` // joinedRoom

	Player   *PlayerInfo  `json:"player,omitempty"`     // playerJoined/Left, spectatorJoined/Left
	Seats    []SeatInfo   `json:"players,omitempty"`    // membership and turn updates
	Watchers []PlayerInfo `json:"spectators,omitempty"` // spectatorJoined/Left
	Seat     *SeatInfo    `json:"seat,omitempty"`       // playerUpdated

	Hand          []*models.Card `json:"hand,omitempty"` // gameState, private
	CurrentTurn   *int           `json:"currentTurn,omitempty"`
	TurnStartedAt int64          `json:"turnStartedAt,omitempty"`
	From          *PlayerInfo    `json:"from,omitempty"` // cardPassed
	To            *PlayerInfo    `json:"to,omitempty"`   // cardPassed
	Winner        *Winner        `json:"winner,omitempty"`

	Chat *models.ChatMessage `json:"chat,omitempty"` // chatMessage

	RoomID  string `json:"roomId,omitempty"`  // leftRoom, privateRoom*
	Message string `json:"message,omitempty"` // error
}

// SeatResult is one seat's contribution to a finished round.
type SeatResult struct {
	PlayerID    uuid.UUID `json:"playerId"`
	Name        string    `json:"name"`
	AccountID   uuid.UUID `json:"accountId,omitempty"`
	IsAI        bool      `json:"isAI,omitempty"`
	CardsPlayed int       `json:"cardsPlayed"`
	Won         bool      `json:"won"`
}

// RoundResult is handed to the persistence gateway when a round ends.
type RoundResult struct {
	RoomID      uuid.UUID    `json:"roomId"`
	RoomName    string       `json:"roomName"`
	Winner      Winner       `json:"winner"`
	Players     []SeatResult `json:"players"`
	StartedAt   int64        `json:"startedAt"`
	DurationSec int          `json:"durationSec"`
}

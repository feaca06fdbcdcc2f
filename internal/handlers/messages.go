// internal/handlers/messages.go
package handlers

import "encoding/json"

// Client messages arrive as a tagged union: a "type" field plus the
// fixed payload for that type. The dispatcher decodes the envelope
// first, then the per-type payload; anything malformed gets an error
// reply instead of a best-effort guess.

type clientEnvelope struct {
	Type string `json:"type"`
}

type identityPayload struct {
	Name       string          `json:"name"`
	AvatarID   int             `json:"avatarId"`
	AccountID  string          `json:"accountId"`
	CardDesign json.RawMessage `json:"cardDesign"`
}

type createRoomPayload struct {
	Name         string `json:"name"`
	MaxPlayers   int    `json:"maxPlayers"`
	TurnDuration int    `json:"turnDuration"`
}

type joinRoomPayload struct {
	RoomID      string `json:"roomId"`
	AsSpectator bool   `json:"asSpectator"`
}

type roomActionPayload struct {
	RoomID string `json:"roomId"`
}

type passCardPayload struct {
	RoomID    string `json:"roomId"`
	CardIndex int    `json:"cardIndex"`
}

type chatPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type addAIPayload struct {
	RoomID     string `json:"roomId"`
	Difficulty string `json:"difficulty"`
}

type removeAIPayload struct {
	RoomID string `json:"roomId"`
	AIID   string `json:"aiId"`
}

type designPayload struct {
	RoomID string          `json:"roomId"`
	Design json.RawMessage `json:"design"`
}

type secretPayload struct {
	RoomID string `json:"roomId"`
	Secret string `json:"secret"`
}

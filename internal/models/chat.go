// internal/models/chat.go
package models

// ChatMessage is one entry in a room's chat log. System messages
// (joins, game start, wins) use SenderID "system".
type ChatMessage struct {
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
	AvatarID    int    `json:"avatarId,omitempty"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"`
	IsSpectator bool   `json:"isSpectator,omitempty"`
	System      bool   `json:"system,omitempty"`
}

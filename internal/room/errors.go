// internal/room/errors.go
package room

// Error is a guard failure reported back to the offending connection.
// Code is stable for clients, Message is the human-readable text.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrRoomFull            = &Error{"roomFull", "room is full"}
	ErrGameAlreadyStarted  = &Error{"gameAlreadyStarted", "game has already started"}
	ErrGameNotStarted      = &Error{"gameNotStarted", "game is not in progress"}
	ErrNotRoomCreator      = &Error{"notRoomCreator", "only the room creator can do that"}
	ErrInsufficientPlayers = &Error{"insufficientPlayers", "need at least 2 players to start"}
	ErrNotYourTurn         = &Error{"notYourTurn", "it is not your turn"}
	ErrInvalidCard         = &Error{"invalidCard", "invalid card index"}
	ErrPassRestricted      = &Error{"passRestricted", "you cannot pass back the card you just received"}
	ErrInvalidCredential   = &Error{"invalidCredential", "incorrect room password"}
)

// internal/persistence/gateway.go
package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

// Metrics is one account's contribution to a finished round.
type Metrics struct {
	CardsPlayed int
	DurationSec int
	// Hero is the winning hero, read only when the account won.
	Hero string
}

// Gateway is everything the dispatcher needs persisted. Round writes
// are invoked fire-and-forget; credential operations are synchronous
// reads/writes on the join path.
type Gateway interface {
	SaveRoundResult(ctx context.Context, res room.RoundResult) (uuid.UUID, error)
	RecordWinLoss(ctx context.Context, accountID uuid.UUID, won bool, m Metrics) error
	CheckAchievements(ctx context.Context, accountID uuid.UUID) ([]models.Achievement, error)

	StoreRoomCredential(ctx context.Context, roomID uuid.UUID, secret string, creatorAccountID uuid.UUID) error
	ValidateRoomCredential(ctx context.Context, roomID uuid.UUID, secret string) (bool, error)
	DeleteRoomCredential(ctx context.Context, roomID uuid.UUID) error
}

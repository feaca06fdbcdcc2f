// internal/persistence/postgres.go
package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sumit112234/sixteen-parchi/internal/cache"
	"github.com/Sumit112234/sixteen-parchi/internal/database"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

// Postgres is the production Gateway: rows in Postgres, finished
// rounds additionally queued to Redis for the stats worker.
type Postgres struct {
	Logger *logrus.Logger
	// Queue controls whether round results are also pushed to Redis.
	Queue bool
}

var _ Gateway = (*Postgres)(nil)

func (p *Postgres) SaveRoundResult(ctx context.Context, res room.RoundResult) (uuid.UUID, error) {
	id, err := database.InsertGame(ctx, res)
	if err != nil {
		return uuid.Nil, err
	}
	if p.Queue {
		// Queue failures never fail the save.
		if qErr := cache.PublishRoundResult(ctx, res); qErr != nil && p.Logger != nil {
			p.Logger.Warnf("failed to queue round result for room %s: %v", res.RoomID, qErr)
		}
	}
	return id, nil
}

func (p *Postgres) RecordWinLoss(ctx context.Context, accountID uuid.UUID, won bool, m Metrics) error {
	return database.RecordWinLoss(ctx, accountID, won, m.CardsPlayed, m.DurationSec, m.Hero)
}

func (p *Postgres) CheckAchievements(ctx context.Context, accountID uuid.UUID) ([]models.Achievement, error) {
	return database.UnlockAchievements(ctx, accountID)
}

func (p *Postgres) StoreRoomCredential(ctx context.Context, roomID uuid.UUID, secret string, creatorAccountID uuid.UUID) error {
	return database.StoreRoomCredential(ctx, roomID, secret, creatorAccountID)
}

func (p *Postgres) ValidateRoomCredential(ctx context.Context, roomID uuid.UUID, secret string) (bool, error) {
	return database.ValidateRoomCredential(ctx, roomID, secret)
}

func (p *Postgres) DeleteRoomCredential(ctx context.Context, roomID uuid.UUID) error {
	return database.DeleteRoomCredential(ctx, roomID)
}

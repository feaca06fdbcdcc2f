// internal/persistence/noop.go
package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

// Noop is a Gateway that remembers room credentials in memory and
// drops everything else. Used when the server runs without a database
// and in handler tests.
type Noop struct {
	mu      sync.Mutex
	secrets map[uuid.UUID]string

	SavedRounds []room.RoundResult
}

var _ Gateway = (*Noop)(nil)

func (n *Noop) SaveRoundResult(_ context.Context, res room.RoundResult) (uuid.UUID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.SavedRounds = append(n.SavedRounds, res)
	return uuid.New(), nil
}

func (n *Noop) RecordWinLoss(context.Context, uuid.UUID, bool, Metrics) error {
	return nil
}

func (n *Noop) CheckAchievements(context.Context, uuid.UUID) ([]models.Achievement, error) {
	return nil, nil
}

func (n *Noop) StoreRoomCredential(_ context.Context, roomID uuid.UUID, secret string, _ uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.secrets == nil {
		n.secrets = make(map[uuid.UUID]string)
	}
	n.secrets[roomID] = secret
	return nil
}

func (n *Noop) ValidateRoomCredential(_ context.Context, roomID uuid.UUID, secret string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	stored, ok := n.secrets[roomID]
	return ok && stored == secret, nil
}

func (n *Noop) DeleteRoomCredential(_ context.Context, roomID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.secrets, roomID)
	return nil
}

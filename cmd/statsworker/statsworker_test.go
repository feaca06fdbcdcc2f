// cmd/statsworker/statsworker_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

func sampleRound(name string) room.RoundResult {
	id := uuid.New()
	return room.RoundResult{
		RoomID:   uuid.New(),
		RoomName: name,
		Winner: room.Winner{
			PlayerID: id,
			Name:     "winner",
			Hero:     models.HeroFlash,
		},
		Players: []room.SeatResult{
			{PlayerID: id, Name: "winner", CardsPlayed: 3, Won: true},
			{PlayerID: uuid.New(), Name: "loser", CardsPlayed: 4},
		},
		StartedAt:   time.Now().UnixMilli(),
		DurationSec: 42,
	}
}

func newTestWorker(batchSize int, sink *[][]room.RoundResult) *StatsWorker {
	return &StatsWorker{
		batchSize: batchSize,
		writeBatch: func(_ context.Context, batch []room.RoundResult) error {
			*sink = append(*sink, batch)
			return nil
		},
		batch: make([]room.RoundResult, 0, batchSize),
	}
}

// Filling the batch to its threshold must flush and return; the append
// path and the timer path share one lock.
func TestAppendFlushesAtThresholdWithoutBlocking(t *testing.T) {
	var flushed [][]room.RoundResult
	sw := newTestWorker(2, &flushed)

	done := make(chan struct{})
	go func() {
		sw.appendToBatch(sampleRound("table 1"))
		sw.appendToBatch(sampleRound("table 2"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("appendToBatch blocked when the batch reached its threshold")
	}

	require.Len(t, flushed, 1)
	assert.Len(t, flushed[0], 2)
	assert.Equal(t, "table 1", flushed[0][0].RoomName)

	sw.batchMu.Lock()
	assert.Empty(t, sw.batch, "flushed rounds should leave the batch")
	sw.batchMu.Unlock()
}

func TestTimerFlushDrainsPartialBatch(t *testing.T) {
	var flushed [][]room.RoundResult
	sw := newTestWorker(10, &flushed)

	sw.appendToBatch(sampleRound("table 1"))
	require.Empty(t, flushed, "below the threshold nothing flushes")

	sw.flushBatchToDB()
	require.Len(t, flushed, 1)
	assert.Len(t, flushed[0], 1)

	// Nothing pending: the next tick is a no-op.
	sw.flushBatchToDB()
	assert.Len(t, flushed, 1)
}

func TestFailedFlushDoesNotRetainBatch(t *testing.T) {
	calls := 0
	sw := &StatsWorker{
		batchSize: 1,
		writeBatch: func(context.Context, []room.RoundResult) error {
			calls++
			return errors.New("db down")
		},
	}

	sw.appendToBatch(sampleRound("table 1"))
	sw.appendToBatch(sampleRound("table 2"))

	assert.Equal(t, 2, calls)
	sw.batchMu.Lock()
	assert.Empty(t, sw.batch)
	sw.batchMu.Unlock()
}

// cmd/statsworker/statsworker.go is an asynchronous worker that pops finished
// round results from a Redis queue and folds them into analytics tables in
// PostgreSQL. It runs separately from the game server so heavy reporting
// queries never share a process with live games.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Sumit112234/sixteen-parchi/internal/database"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

// StatsWorker encapsulates the Redis + DB logic for archiving finished
// rounds and maintaining per-hero win aggregates.
type StatsWorker struct {
	redisClient *redis.Client
	batchSize   int
	flushDelay  time.Duration

	// writeBatch persists one drained batch. Swapped out in tests.
	writeBatch func(ctx context.Context, batch []room.RoundResult) error

	batchMu  sync.Mutex
	batch    []room.RoundResult
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewStatsWorker constructs a StatsWorker from environment variables or defaults.
func NewStatsWorker() *StatsWorker {
	batchSize := getEnvInt("STATS_BATCH_SIZE", 20)
	flushMs := getEnvInt("STATS_FLUSH_MS", 500)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &StatsWorker{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		writeBatch:  writeBatchToDB,
		batch:       make([]room.RoundResult, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and drains the queue until Stop is called.
func (sw *StatsWorker) Run() {
	database.ConnectDB()

	go sw.readRedisLoop()

	log.Println("parchi-statsworker started.")
	<-sw.ctx.Done()
	log.Println("parchi-statsworker shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve round results from the
// Redis queue, accumulating them into a batch that flushes on size or on a
// timer.
func (sw *StatsWorker) readRedisLoop() {
	ticker := time.NewTicker(sw.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("ROUNDS_QUEUE_NAME", "parchi_rounds")

	for {
		select {
		case <-sw.ctx.Done():
			return

		case <-ticker.C:
			sw.flushBatchToDB()

		default:
			// BLPop with a 3-second timeout so context cancellation is handled.
			res, err := sw.redisClient.BLPop(sw.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				// No message popped.
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var rr room.RoundResult
			if err := json.Unmarshal([]byte(res[1]), &rr); err != nil {
				log.Printf("invalid round result: %v\n", err)
				continue
			}

			sw.appendToBatch(rr)
		}
	}
}

// appendToBatch adds a result to the in-memory batch and flushes when the
// threshold is reached.
func (sw *StatsWorker) appendToBatch(rr room.RoundResult) {
	sw.batchMu.Lock()
	defer sw.batchMu.Unlock()

	sw.batch = append(sw.batch, rr)
	if len(sw.batch) >= sw.batchSize {
		sw.flushLocked()
	}
}

// flushBatchToDB drains whatever the timer finds pending.
func (sw *StatsWorker) flushBatchToDB() {
	sw.batchMu.Lock()
	defer sw.batchMu.Unlock()
	sw.flushLocked()
}

// flushLocked writes the current batch and resets it. Callers hold
// batchMu.
func (sw *StatsWorker) flushLocked() {
	if len(sw.batch) == 0 {
		return
	}
	batchCopy := make([]room.RoundResult, len(sw.batch))
	copy(batchCopy, sw.batch)
	sw.batch = sw.batch[:0]

	if err := sw.writeBatch(context.Background(), batchCopy); err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d rounds to DB.\n", len(batchCopy))
	}
}

// writeBatchToDB writes one batch in a single transaction: one archive
// row per round plus an upsert into the hero aggregate table.
func writeBatchToDB(ctx context.Context, batch []room.RoundResult) error {
	return beginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rr := range batch {
			if err := archiveRoundTx(ctx, tx, rr); err != nil {
				return fmt.Errorf("archiveRoundTx: %w", err)
			}
		}
		return nil
	})
}

// archiveRoundTx inserts one archive row and bumps the winning hero's
// aggregate counters.
func archiveRoundTx(ctx context.Context, tx pgx.Tx, rr room.RoundResult) error {
	players, err := json.Marshal(rr.Players)
	if err != nil {
		return err
	}

	archiveQ := `
		INSERT INTO round_archive (
			room_id, room_name, winner_name, winning_hero, duration_sec, players, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7 / 1000.0))
	`
	_, err = tx.Exec(ctx, archiveQ,
		rr.RoomID, rr.RoomName, rr.Winner.Name, rr.Winner.Hero, rr.DurationSec, players, rr.StartedAt,
	)
	if err != nil {
		return err
	}

	heroQ := `
		INSERT INTO hero_stats (hero, wins, total_duration_sec)
		VALUES ($1, 1, $2)
		ON CONFLICT (hero)
		DO UPDATE SET
			wins = hero_stats.wins + 1,
			total_duration_sec = hero_stats.total_duration_sec + EXCLUDED.total_duration_sec
	`
	_, err = tx.Exec(ctx, heroQ, rr.Winner.Hero, rr.DurationSec)
	return err
}

// beginTxFunc starts a transaction on the pool, calls f with it, and commits
// or rolls back as needed.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the worker after the current batch settles.
func (sw *StatsWorker) Stop() {
	sw.cancelFn()
}

func main() {
	sw := NewStatsWorker()
	go sw.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	sw.Stop()
	log.Println("Stats worker shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt parses an environment variable as an integer or returns a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}

// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sumit112234/sixteen-parchi/internal/room"
)

// InsertGame persists a finished round's game row and returns its id.
func InsertGame(ctx context.Context, res room.RoundResult) (uuid.UUID, error) {
	gameID := uuid.New()

	playersJSON, err := json.Marshal(res.Players)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal players: %w", err)
	}

	var winnerAccount interface{}
	if res.Winner.AccountID != uuid.Nil {
		winnerAccount = res.Winner.AccountID
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO games (id, room_id, room_name, winner_account_id, winner_name, winning_hero, duration_sec, players)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, e := tx.Exec(ctx, q,
			gameID, res.RoomID, res.RoomName, winnerAccount,
			res.Winner.Name, string(res.Winner.Hero), res.DurationSec, playersJSON,
		)
		return e
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("tx insert game: %w", err)
	}
	return gameID, nil
}

// RecordWinLoss applies one account's round outcome to its stats row.
// Winners additionally track fastest win and per-hero win counts;
// hero is the winning hero and only read when won is true.
func RecordWinLoss(ctx context.Context, accountID uuid.UUID, won bool, cardsPlayed, durationSec int, hero string) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ensure := `INSERT INTO user_stats (user_id, hero_wins) VALUES ($1, '{}')
		           ON CONFLICT (user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, ensure, accountID); err != nil {
			return err
		}

		if !won {
			q := `
			UPDATE user_stats
			SET games_played = games_played + 1,
			    losses = losses + 1,
			    cards_played = cards_played + $2
			WHERE user_id = $1
			`
			_, err := tx.Exec(ctx, q, accountID, cardsPlayed)
			return err
		}

		q := `
		UPDATE user_stats
		SET games_played = games_played + 1,
		    wins = wins + 1,
		    cards_played = cards_played + $2,
		    fastest_win = LEAST(COALESCE(fastest_win, $3), $3),
		    hero_wins = jsonb_set(
		        hero_wins,
		        ARRAY[$4::text],
		        (COALESCE(hero_wins->>$4, '0')::int + 1)::text::jsonb
		    )
		WHERE user_id = $1
		`
		_, err := tx.Exec(ctx, q, accountID, cardsPlayed, durationSec, hero)
		return err
	})
}

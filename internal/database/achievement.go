// internal/database/achievement.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// achievementRule decides whether an account's stats earn a badge.
type achievementRule struct {
	code string
	met  func(s *models.UserStats) bool
}

var achievementRules = []achievementRule{
	{"first_win", func(s *models.UserStats) bool { return s.Wins >= 1 }},
	{"ten_wins", func(s *models.UserStats) bool { return s.Wins >= 10 }},
	{"fifty_wins", func(s *models.UserStats) bool { return s.Wins >= 50 }},
	{"veteran", func(s *models.UserStats) bool { return s.GamesPlayed >= 100 }},
	{"card_shark", func(s *models.UserStats) bool { return s.CardsPlayed >= 500 }},
	{"speed_demon", func(s *models.UserStats) bool { return s.FastestWin != nil && *s.FastestWin <= 60 }},
}

// UnlockAchievements evaluates every rule against the account's
// current stats and records badges not yet held. Returns the newly
// unlocked ones.
func UnlockAchievements(ctx context.Context, accountID uuid.UUID) ([]models.Achievement, error) {
	stats, err := GetUserStats(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	var earned []string
	for _, rule := range achievementRules {
		if rule.met(stats) {
			earned = append(earned, rule.code)
		}
	}
	if len(earned) == 0 {
		return nil, nil
	}

	var unlocked []models.Achievement
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO user_achievements (user_id, achievement_id)
		SELECT $1, a.id FROM achievements a
		WHERE a.code = ANY($2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		RETURNING achievement_id
		`
		rows, e := tx.Query(ctx, q, accountID, earned)
		if e != nil {
			return e
		}
		var newIDs []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if e := rows.Scan(&id); e != nil {
				rows.Close()
				return e
			}
			newIDs = append(newIDs, id)
		}
		rows.Close()
		if e := rows.Err(); e != nil {
			return e
		}
		if len(newIDs) == 0 {
			return nil
		}

		q = `SELECT id, code, name, description FROM achievements WHERE id = ANY($1)`
		rows, e = tx.Query(ctx, q, newIDs)
		if e != nil {
			return e
		}
		defer rows.Close()
		for rows.Next() {
			var a models.Achievement
			if e := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description); e != nil {
				return e
			}
			unlocked = append(unlocked, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("tx unlock achievements: %w", err)
	}
	return unlocked, nil
}

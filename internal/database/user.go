// internal/database/user.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sumit112234/sixteen-parchi/internal/auth"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// CreateUser hashes the password and inserts the account plus an empty
// stats row.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.HashSecret(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `INSERT INTO users (id, email, password, username, avatar_id)
		      VALUES ($1, $2, $3, $4, $5)`
		if _, e := tx.Exec(ctx, q, user.ID, user.Email, user.Password, user.Username, user.AvatarID); e != nil {
			return e
		}
		q = `INSERT INTO user_stats (user_id, hero_wins) VALUES ($1, '{}')
		     ON CONFLICT (user_id) DO NOTHING`
		_, e := tx.Exec(ctx, q, user.ID)
		return e
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, password, username, avatar_id FROM users WHERE email=$1`
	err := DB.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.Username, &u.AvatarID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `SELECT id, email, password, username, avatar_id FROM users WHERE id=$1`
	err := DB.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.Username, &u.AvatarID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthenticateUser verifies credentials and returns a signed session
// token.
func AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.VerifySecret(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, nil
}

// GetUserStats loads an account's aggregate results.
func GetUserStats(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
	s := models.UserStats{UserID: id, HeroWins: map[string]int{}}
	q := `SELECT games_played, wins, losses, cards_played, fastest_win, hero_wins
	      FROM user_stats WHERE user_id=$1`
	err := DB.QueryRow(ctx, q, id).Scan(
		&s.GamesPlayed, &s.Wins, &s.Losses, &s.CardsPlayed, &s.FastestWin, &s.HeroWins,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetLeaderboard returns the top accounts by wins.
func GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `
	SELECT u.username, u.avatar_id, s.wins, s.games_played
	FROM user_stats s
	JOIN users u ON u.id = s.user_id
	ORDER BY s.wins DESC, s.games_played ASC
	LIMIT $1
	`
	rows, err := DB.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.AvatarID, &e.Wins, &e.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// internal/models/user.go
package models

import "github.com/google/uuid"

// User is a registered account row.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Password string    `json:"-"`
	AvatarID int       `json:"avatarId"`
}

// UserStats aggregates an account's lifetime game results.
type UserStats struct {
	UserID      uuid.UUID      `json:"userId"`
	GamesPlayed int            `json:"gamesPlayed"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	CardsPlayed int            `json:"cardsPlayed"`
	FastestWin  *int           `json:"fastestWin,omitempty"` // seconds; nil until the first win
	HeroWins    map[string]int `json:"heroWins,omitempty"`   // winning hero -> count
}

// FavoriteHero is the hero this account has won with most often, or ""
// before the first win.
func (s *UserStats) FavoriteHero() string {
	best, bestCount := "", 0
	for hero, n := range s.HeroWins {
		if n > bestCount {
			best, bestCount = hero, n
		}
	}
	return best
}

// Achievement is an unlockable badge.
type Achievement struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// LeaderboardEntry is one row of the wins leaderboard.
type LeaderboardEntry struct {
	Username    string `json:"username"`
	AvatarID    int    `json:"avatarId"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
}

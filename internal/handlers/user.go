package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Sumit112234/sixteen-parchi/internal/auth"
	"github.com/Sumit112234/sixteen-parchi/internal/database"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// CreateUserHandler registers an account.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
		AvatarID int    `json:"avatarId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		http.Error(w, "email, password and username are required", http.StatusBadRequest)
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		AvatarID: req.AvatarID,
	}

	if err := database.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler verifies credentials and returns a session token, also
// set as the auth_token cookie the websocket upgrade reads.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := database.AuthenticateUser(context.Background(), req.Email, req.Password)
	if err != nil {
		log.Printf("failed to authenticate user: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenMaxAge(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(loginResponse{Token: token}); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
		return
	}
}

type statsResponse struct {
	User         *models.User      `json:"user"`
	Stats        *models.UserStats `json:"stats"`
	FavoriteHero string            `json:"favoriteHero,omitempty"`
}

// StatsHandler returns the authenticated account's profile and
// lifetime stats, resolved from the auth_token cookie.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	sub, err := auth.AuthenticateJWT(cookie.Value)
	if err != nil {
		http.Error(w, "invalid auth token", http.StatusUnauthorized)
		return
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		http.Error(w, "invalid auth token", http.StatusUnauthorized)
		return
	}

	user, err := database.GetUserByID(r.Context(), accountID)
	if err != nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}
	stats, err := database.GetUserStats(r.Context(), accountID)
	if err != nil {
		log.Printf("failed to load stats for %s: %v", accountID, err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsResponse{
		User:         user,
		Stats:        stats,
		FavoriteHero: stats.FavoriteHero(),
	}); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

// RoomsHandler lists the public state of every room.
func (s *GameServer) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Rooms.Snapshots()); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

// LeaderboardHandler returns the top accounts by wins.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := database.GetLeaderboard(r.Context(), 10)
	if err != nil {
		log.Printf("failed to load leaderboard: %v", err)
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

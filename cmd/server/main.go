// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Sumit112234/sixteen-parchi/internal/auth"
	"github.com/Sumit112234/sixteen-parchi/internal/cache"
	"github.com/Sumit112234/sixteen-parchi/internal/database"
	"github.com/Sumit112234/sixteen-parchi/internal/handlers"
	"github.com/Sumit112234/sixteen-parchi/internal/middleware"
	"github.com/Sumit112234/sixteen-parchi/internal/persistence"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	queue := true
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, round results will not be queued: %v", err)
		queue = false
	}

	gw := &persistence.Postgres{Logger: logger, Queue: queue}
	srv := handlers.NewGameServer(gw, logger)

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.Handle("/user/create", logged(http.HandlerFunc(handlers.CreateUserHandler)))
	mux.Handle("/user/login", logged(http.HandlerFunc(handlers.LoginHandler)))
	mux.Handle("/user/stats", logged(http.HandlerFunc(handlers.StatsHandler)))

	// read-only REST views
	mux.Handle("/rooms", logged(http.HandlerFunc(srv.RoomsHandler)))
	mux.Handle("/leaderboard", logged(http.HandlerFunc(handlers.LeaderboardHandler)))

	// game websocket
	mux.Handle("/ws", http.HandlerFunc(handlers.WSHandler(logger, srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

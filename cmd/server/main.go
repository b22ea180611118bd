// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"chameleon/internal/auth"
	"chameleon/internal/cache"
	"chameleon/internal/database"
	"chameleon/internal/handlers"
	"chameleon/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		// Action history is best effort; the game itself runs without it.
		logger.Warnf("redis unavailable, action history disabled: %v", err)
		cache.Rdb = nil
	}

	repo := database.NewRepo(database.DB)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	srv := handlers.NewGameServer(repo, logger)

	mux := http.NewServeMux()

	mux.Handle("/game/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateGameHandler(srv),
	)))
	mux.Handle("/game/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.JoinGameHandler(srv),
	)))
	mux.Handle("/game/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameStateHandler(srv),
	)))
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	scheduler := handlers.NewAIScheduler(repo, srv.Engine, logger)
	go scheduler.Run(context.Background())

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

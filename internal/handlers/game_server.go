// internal/handlers/game_server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"chameleon/internal/database"
	"chameleon/internal/game"
)

// GameServer bundles the persistence repo, the turn engine, and the WebSocket
// hub that the HTTP and WS handlers share.
type GameServer struct {
	Repo   *database.Repo
	Engine *game.Engine
	Hub    *Hub
	Logger *logrus.Logger
}

// NewGameServer wires a server around the repo; the hub doubles as the
// engine's event notifier.
func NewGameServer(repo *database.Repo, logger *logrus.Logger) *GameServer {
	hub := NewHub(logger)
	return &GameServer{
		Repo:   repo,
		Engine: game.NewEngine(repo, hub, logger, repo),
		Hub:    hub,
		Logger: logger,
	}
}

// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"chameleon/internal/auth"
	"chameleon/internal/game"
	"chameleon/internal/middleware"
)

// GameMessage is the shape of incoming WebSocket messages.
type GameMessage struct {
	Type        string `json:"type"`
	ColumnIndex *int   `json:"columnIndex,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for one game room.
// It authenticates the session token, verifies the player holds a seat, then
// subscribes the connection to the hub and starts the read loop.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract the game name from the URL path: /game/ws/{name}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing game name in path (/game/ws/{name})", http.StatusBadRequest)
			return
		}
		gameName := pathParts[0]

		g, err := gs.Repo.FindByName(r.Context(), gameName)
		if errors.Is(err, game.ErrGameNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Errorf("failed to load game %s: %v", gameName, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if g.IsFinished {
			http.Error(w, "Game has already ended", http.StatusGone)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameName, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameName, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'game' subprotocol.")
			return
		}
		player, err := sessionPlayer(r)
		if err != nil {
			logger.Warnf("Session authentication failed for game %s: %v", gameName, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}

		seated := false
		for _, p := range g.Players {
			if p == player {
				seated = true
				break
			}
		}
		if !seated {
			logger.Warnf("Player %s is not seated in game %s. Closing connection.", player, gameName)
			c.Close(websocket.StatusPolicyViolation, "You are not a player in this game.")
			return
		}

		client := gs.Hub.Subscribe(gameName, player, c)
		defer gs.Hub.Unsubscribe(gameName, client)
		middleware.LogWebSocketConnect(logger, gameName, player, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readGameMessages(ctx, c, gs, gameName, player, logger)

		middleware.LogWebSocketDisconnect(logger, gameName, player, nil)
	}
}

// sessionPlayer resolves the player name from the session_token cookie or the
// token query parameter.
func sessionPlayer(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if cookie, err := r.Cookie("session_token"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", fmt.Errorf("no session token presented")
	}
	return auth.AuthenticateJWT(token)
}

// readGameMessages reads client messages in a blocking loop and routes them to
// the engine. Exits on read error or context cancellation.
func readGameMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, gameName, player string, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s in game %s.", player, gameName)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for player %s in game %s.", player, gameName)
			} else {
				logger.Warnf("Error reading from WebSocket for player %s in game %s: %v", player, gameName, err)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from player %s in game %s. Ignoring.", msgType, player, gameName)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from player %s in game %s: %v", player, gameName, err)
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		logger.Debugf("Received action '%s' from player %s in game %s.", msg.Type, player, gameName)

		switch msg.Type {
		case "reveal_card":
			if msg.ColumnIndex == nil {
				sendWsError(ctx, c, "reveal_card requires columnIndex.")
				continue
			}
			out, err := gs.Engine.RevealCard(ctx, gameName, player, *msg.ColumnIndex)
			if err != nil {
				logger.Errorf("reveal_card failed for player %s in game %s: %v", player, gameName, err)
				sendWsError(ctx, c, "Internal error.")
				continue
			}
			if !out.Success {
				sendWsError(ctx, c, "Illegal reveal.")
			}

		case "take_column":
			if msg.ColumnIndex == nil {
				sendWsError(ctx, c, "take_column requires columnIndex.")
				continue
			}
			out, err := gs.Engine.TakeColumn(ctx, gameName, player, *msg.ColumnIndex)
			if err != nil {
				logger.Errorf("take_column failed for player %s in game %s: %v", player, gameName, err)
				sendWsError(ctx, c, "Internal error.")
				continue
			}
			if !out.Success {
				sendWsError(ctx, c, "Illegal take.")
			}

		case "ping":
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})

		default:
			logger.Warnf("Unknown action type '%s' from player %s in game %s.", msg.Type, player, gameName)
			sendWsError(ctx, c, fmt.Sprintf("Unknown action type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// sendWsMessage marshals a message and sends it to the client with a write
// timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	if c == nil {
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, msgBytes)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}

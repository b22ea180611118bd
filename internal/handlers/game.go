// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chameleon/internal/auth"
	"chameleon/internal/game"
	"chameleon/internal/models"
)

// createGameRequest is the POST /game/create body.
type createGameRequest struct {
	Name     string   `json:"name"`
	JoinCode string   `json:"joinCode,omitempty"`
	Players  []string `json:"players"`
	AISeats  []struct {
		Name       string `json:"name"`
		Difficulty string `json:"difficulty"`
		Strategy   string `json:"strategy"`
	} `json:"aiPlayers"`
}

// CreateGameHandler builds a fresh game aggregate, deals it, and persists it.
// A joinCode, when present, is stored as an Argon2id hash; clients must
// present the code again when connecting.
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "Missing game name", http.StatusBadRequest)
			return
		}
		if len(req.Players)+len(req.AISeats) < 2 {
			http.Error(w, "A game needs at least two seats", http.StatusBadRequest)
			return
		}

		var aiSeats []models.AISeat
		for _, s := range req.AISeats {
			seat := models.AISeat{
				Name:       s.Name,
				Difficulty: models.Difficulty(s.Difficulty),
				Strategy:   models.Strategy(s.Strategy),
			}
			if seat.Difficulty == "" {
				seat.Difficulty = models.DifficultyBasic
			}
			if seat.Strategy == "" {
				seat.Strategy = models.StrategyBalanced
			}
			aiSeats = append(aiSeats, seat)
		}

		g := models.NewGame(req.Name, req.Players, aiSeats)
		if req.JoinCode != "" {
			hash, err := auth.HashJoinCode(req.JoinCode)
			if err != nil {
				gs.Logger.Errorf("failed to hash join code for game %s: %v", req.Name, err)
				http.Error(w, "Internal error", http.StatusInternalServerError)
				return
			}
			g.JoinCodeHash = hash
		}
		game.PrepareGame(g)

		if err := gs.Repo.Save(r.Context(), g); err != nil {
			if errors.Is(err, game.ErrStaleVersion) {
				http.Error(w, "A game with that name already exists", http.StatusConflict)
				return
			}
			gs.Logger.Errorf("failed to save new game %s: %v", req.Name, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		gs.Logger.Infof("created game %s (%d players, %d ai)", g.Name, len(g.Players), len(g.AISeats))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":      g.ID,
			"name":    g.Name,
			"players": g.SeatNames(),
		})
	}
}

// GameStateHandler returns the current aggregate for GET /game/state?name=...
func GameStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Missing name query parameter", http.StatusBadRequest)
			return
		}
		g, err := gs.Repo.FindByName(r.Context(), name)
		if errors.Is(err, game.ErrGameNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			gs.Logger.Errorf("failed to load game %s: %v", name, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// JoinGameHandler issues a guest session token for a named seat, checking the
// join code on private games. POST /game/join {name, player, joinCode}.
func JoinGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Name     string `json:"name"`
			Player   string `json:"player"`
			JoinCode string `json:"joinCode,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		g, err := gs.Repo.FindByName(r.Context(), req.Name)
		if errors.Is(err, game.ErrGameNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			gs.Logger.Errorf("failed to load game %s: %v", req.Name, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		if g.JoinCodeHash != "" {
			ok, err := auth.VerifyJoinCode(req.JoinCode, g.JoinCodeHash)
			if err != nil || !ok {
				http.Error(w, "Invalid join code", http.StatusForbidden)
				return
			}
		}

		seated := false
		for _, p := range g.Players {
			if p == req.Player {
				seated = true
				break
			}
		}
		if !seated {
			http.Error(w, "You are not seated in this game", http.StatusForbidden)
			return
		}

		token, err := auth.CreateSessionJWT(req.Player)
		if err != nil {
			gs.Logger.Errorf("failed to create session token for %s: %v", req.Player, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     "session_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"token": token, "player": req.Player})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

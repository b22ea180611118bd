// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chameleon/internal/game"
	"chameleon/internal/models"
)

// Repo is the postgres-backed game store. The whole aggregate is stored as a
// jsonb snapshot keyed by the unique game name; the version column is the
// optimistic lock.
type Repo struct {
	Pool *pgxpool.Pool
}

// NewRepo wraps a pgx pool.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// EnsureSchema creates the tables the service needs if they do not exist.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS games (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  version INT NOT NULL DEFAULT 1,
  state JSONB NOT NULL,
  is_finished BOOLEAN NOT NULL DEFAULT FALSE,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS game_results (
  game_id UUID NOT NULL,
  player_id TEXT NOT NULL,
  score INT NOT NULL,
  did_win BOOLEAN NOT NULL,
  PRIMARY KEY (game_id, player_id)
);
CREATE TABLE IF NOT EXISTS game_actions (
  game_id UUID NOT NULL,
  action_index INT NOT NULL,
  actor TEXT NOT NULL,
  action_type TEXT NOT NULL,
  action_payload JSONB,
  recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (game_id, action_index)
);
`
	_, err := r.Pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// FindByName loads the aggregate, or game.ErrGameNotFound.
func (r *Repo) FindByName(ctx context.Context, name string) (*models.Game, error) {
	var state []byte
	var version int
	q := `SELECT state, version FROM games WHERE name = $1`
	err := r.Pool.QueryRow(ctx, q, name).Scan(&state, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading game %q: %w", name, err)
	}

	var g models.Game
	if err := json.Unmarshal(state, &g); err != nil {
		return nil, fmt.Errorf("decoding game %q state: %w", name, err)
	}
	g.Version = version
	return &g, nil
}

// Save persists the aggregate with a compare-and-swap on the version column.
// A lost race returns game.ErrStaleVersion; the in-memory version is bumped
// on success.
func (r *Repo) Save(ctx context.Context, g *models.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding game %q state: %w", g.Name, err)
	}

	if g.Version == 0 {
		q := `
			INSERT INTO games (id, name, version, state, is_finished)
			VALUES ($1, $2, 1, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`
		tag, err := r.Pool.Exec(ctx, q, g.ID, g.Name, data, g.IsFinished)
		if err != nil {
			return fmt.Errorf("inserting game %q: %w", g.Name, err)
		}
		if tag.RowsAffected() == 0 {
			return game.ErrStaleVersion
		}
		g.Version = 1
		return nil
	}

	q := `
		UPDATE games
		SET state = $1, version = version + 1, is_finished = $2, updated_at = NOW()
		WHERE name = $3 AND version = $4
	`
	tag, err := r.Pool.Exec(ctx, q, data, g.IsFinished, g.Name, g.Version)
	if err != nil {
		return fmt.Errorf("saving game %q: %w", g.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrStaleVersion
	}
	g.Version++
	return nil
}

// FindProjectionByID extracts only the requested top-level fields from the
// stored state. Returns (nil, nil) when the game row is gone.
func (r *Repo) FindProjectionByID(ctx context.Context, id uuid.UUID, fields []string) (*game.Projection, error) {
	wanted := make(map[string]bool, len(fields))
	for _, f := range fields {
		wanted[f] = true
	}

	var players, aiSeats []byte
	q := `SELECT state->'players', state->'aiPlayers' FROM games WHERE id = $1`
	err := r.Pool.QueryRow(ctx, q, id).Scan(&players, &aiSeats)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading projection for game %s: %w", id, err)
	}

	proj := &game.Projection{}
	if wanted["players"] && players != nil {
		if err := json.Unmarshal(players, &proj.Players); err != nil {
			return nil, fmt.Errorf("decoding players projection: %w", err)
		}
	}
	if wanted["aiPlayers"] && aiSeats != nil {
		if err := json.Unmarshal(aiSeats, &proj.AISeats); err != nil {
			return nil, fmt.Errorf("decoding aiPlayers projection: %w", err)
		}
	}
	return proj, nil
}

// ListActiveNames returns every unfinished game, oldest activity first, for
// the AI scheduler sweep.
func (r *Repo) ListActiveNames(ctx context.Context) ([]string, error) {
	q := `SELECT name FROM games WHERE is_finished = FALSE ORDER BY updated_at ASC`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing active games: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RecordFinalResults persists final scores plus the winner flags in one
// transaction.
func (r *Repo) RecordFinalResults(ctx context.Context, g *models.Game) error {
	err := pgx.BeginTxFunc(ctx, r.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, seat := range g.SeatNames() {
			didWin := false
			for _, w := range g.Winners {
				if w == seat {
					didWin = true
					break
				}
			}
			q := `
				INSERT INTO game_results (game_id, player_id, score, did_win)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET score = $3, did_win = $4
			`
			if _, e := tx.Exec(ctx, q, g.ID, seat, g.FinalScores[seat], didWin); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording results for game %q: %w", g.Name, err)
	}
	return nil
}

// InsertActionRecord stores one historian record. Duplicate indexes are
// ignored so the consumer can be restarted safely.
func (r *Repo) InsertActionRecord(ctx context.Context, gameID uuid.UUID, actionIndex int, actor, actionType string, payload []byte) error {
	q := `
		INSERT INTO game_actions (game_id, action_index, actor, action_type, action_payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err := r.Pool.Exec(ctx, q, gameID, actionIndex, actor, actionType, payload)
	if err != nil {
		return fmt.Errorf("inserting action record: %w", err)
	}
	return nil
}

// internal/game/store.go
package game

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"chameleon/internal/models"
)

// ErrGameNotFound signals a load for a game name that does not exist.
var ErrGameNotFound = errors.New("game not found")

// ErrStaleVersion signals an optimistic-lock conflict: another writer saved
// the aggregate since this copy was loaded.
var ErrStaleVersion = errors.New("stale game version")

// Projection is the minimal seat listing re-read before committing an AI
// take, to detect a seat that was replaced mid-turn.
type Projection struct {
	Players []string        `json:"players"`
	AISeats []models.AISeat `json:"aiPlayers"`
}

// HasAISeat reports whether the projection still lists the named AI seat.
func (p *Projection) HasAISeat(name string) bool {
	for _, s := range p.AISeats {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Store is the persistence collaborator the engine depends on. Save must
// return ErrStaleVersion on a version conflict so callers can re-read and
// retry.
type Store interface {
	FindByName(ctx context.Context, name string) (*models.Game, error)
	Save(ctx context.Context, g *models.Game) error
	FindProjectionByID(ctx context.Context, id uuid.UUID, fields []string) (*Projection, error)
	ListActiveNames(ctx context.Context) ([]string, error)
}

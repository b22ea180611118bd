// internal/game/helpers_test.go
package game

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chameleon/internal/models"
)

// memStore is a map-backed Store honoring the same contract as the real repo:
// reads hand out detached snapshots, the stored state only changes through
// Save. failSaves forces the next n saves to report a conflict.
type memStore struct {
	mu        sync.Mutex
	games     map[string]*models.Game
	failSaves int
	saves     int
}

func newMemStore(games ...*models.Game) *memStore {
	s := &memStore{games: make(map[string]*models.Game)}
	for _, g := range games {
		s.games[g.Name] = g
	}
	return s
}

func (s *memStore) FindByName(ctx context.Context, name string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[name]
	if !ok {
		return nil, ErrGameNotFound
	}
	return cloneGame(g), nil
}

func (s *memStore) Save(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves > 0 {
		s.failSaves--
		return ErrStaleVersion
	}
	g.Version++
	s.games[g.Name] = cloneGame(g)
	s.saves++
	return nil
}

// get returns the stored snapshot for assertions.
func (s *memStore) get(name string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[name]
}

// cloneGame round-trips the aggregate through JSON, the same detachment the
// real repo's jsonb column gives every reader. Version travels outside the
// serialized state.
func cloneGame(g *models.Game) *models.Game {
	b, err := json.Marshal(g)
	if err != nil {
		panic(err)
	}
	out := &models.Game{}
	if err := json.Unmarshal(b, out); err != nil {
		panic(err)
	}
	out.Version = g.Version
	return out
}

func (s *memStore) FindProjectionByID(ctx context.Context, id uuid.UUID, fields []string) (*Projection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.ID == id {
			return &Projection{Players: g.Players, AISeats: g.AISeats}, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListActiveNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name, g := range s.games {
		if !g.IsFinished {
			names = append(names, name)
		}
	}
	return names, nil
}

// recordNotifier collects emitted events instead of sending them over WS.
type recordNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordNotifier) Emit(event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordNotifier) EmitToRoom(room, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordNotifier) saw(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestEngine(store Store, notifier Notifier) *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e := NewEngine(store, notifier, logger, nil)
	e.eval = newTestEvaluator(1)
	return e
}

// newTestGame builds a mid-round aggregate with the given human seats, one
// brown-marked column per seat, and empty holdings.
func newTestGame(seatNames ...string) *models.Game {
	g := models.NewGame("t-"+uuid.NewString()[:8], seatNames, nil)
	g.Columns = make([]models.Column, len(seatNames))
	for i := range g.Columns {
		g.Columns[i].Cards = []models.Card{{Color: models.ColorBrownColumn}}
	}
	for _, n := range seatNames {
		g.PlayerCollections.Set(n, nil)
		g.WildCards.Set(n, nil)
		g.SummaryCards.Set(n, nil)
	}
	g.IsFirstTurnOfRound = false
	return g
}

func card(color string) models.Card {
	return models.Card{Color: color}
}

func endCard() models.Card {
	return models.Card{Color: models.ColorEndRound, IsEndRound: true}
}

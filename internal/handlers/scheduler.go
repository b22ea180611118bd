// internal/handlers/scheduler.go
package handlers

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"chameleon/internal/game"
)

// defaultAITickInterval is how often the scheduler sweeps active games when
// AI_TICK_INTERVAL is unset.
const defaultAITickInterval = 2 * time.Second

// AIScheduler periodically sweeps every unfinished game and activates the AI
// orchestrator whenever the current seat belongs to a computer player.
type AIScheduler struct {
	Repo     game.Store
	Engine   *game.Engine
	Logger   *logrus.Logger
	Interval time.Duration
}

// NewAIScheduler builds a scheduler; the tick interval comes from the
// AI_TICK_INTERVAL env var when set (e.g. "500ms", "3s").
func NewAIScheduler(repo game.Store, engine *game.Engine, logger *logrus.Logger) *AIScheduler {
	interval := defaultAITickInterval
	if v := os.Getenv("AI_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		} else {
			logger.Warnf("invalid AI_TICK_INTERVAL %q, using default %s", v, defaultAITickInterval)
		}
	}
	return &AIScheduler{Repo: repo, Engine: engine, Logger: logger, Interval: interval}
}

// Run blocks, ticking until the context is cancelled.
func (s *AIScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep activates at most one AI turn per active game whose current seat is a
// computer player. Each game runs in its own goroutine so one slow turn does
// not starve the rest of the sweep.
func (s *AIScheduler) sweep(ctx context.Context) {
	names, err := s.Repo.ListActiveNames(ctx)
	if err != nil {
		s.Logger.Warnf("ai scheduler failed to list active games: %v", err)
		return
	}
	for _, name := range names {
		g, err := s.Repo.FindByName(ctx, name)
		if err != nil {
			s.Logger.Warnf("ai scheduler failed to load game %s: %v", name, err)
			continue
		}
		seat := g.CurrentSeat()
		if g.AISeatByName(seat) == nil {
			continue
		}
		go func(gameName, seatName string) {
			actions, err := s.Engine.ExecuteAITurn(ctx, gameName, seatName)
			if err != nil {
				s.Logger.Warnf("ai turn failed for seat %s in game %s: %v", seatName, gameName, err)
				return
			}
			if len(actions) > 0 {
				s.Logger.WithFields(logrus.Fields{
					"game":    gameName,
					"seat":    seatName,
					"actions": len(actions),
					"last":    actions[len(actions)-1].Action,
				}).Debug("ai turn complete")
			}
		}(name, seat)
	}
}

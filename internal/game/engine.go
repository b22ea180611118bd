// internal/game/engine.go
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"chameleon/internal/cache"
	"chameleon/internal/models"
)

// saveAttempts bounds how often a stale-version save is retried before the
// conflict surfaces.
const saveAttempts = 2

// ResultRecorder is an optional collaborator persisting final scores and
// winners when a game is sealed.
type ResultRecorder interface {
	RecordFinalResults(ctx context.Context, g *models.Game) error
}

// Engine is the service layer around the turn state machine: it loads the
// aggregate, applies one turn-operation under a per-game lock, saves with
// bounded retry, and fans out domain events.
type Engine struct {
	store    Store
	notifier Notifier
	eval     *Evaluator
	log      *logrus.Logger
	results  ResultRecorder

	mu        sync.Mutex
	turnLocks map[string]*sync.Mutex
	actionSeq map[string]int
}

// NewEngine wires an engine. results may be nil.
func NewEngine(store Store, notifier Notifier, logger *logrus.Logger, results ResultRecorder) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		store:     store,
		notifier:  notifier,
		eval:      NewEvaluator(),
		log:       logger,
		results:   results,
		turnLocks: make(map[string]*sync.Mutex),
		actionSeq: make(map[string]int),
	}
}

// turnLock returns the per-game mutex held for the duration of one
// turn-operation. It replaces the old advisory lock with its fixed-delay
// unlock heuristic.
func (e *Engine) turnLock(name string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.turnLocks[name]
	if !ok {
		l = &sync.Mutex{}
		e.turnLocks[name] = l
	}
	return l
}

// applyAndSave loads the freshest aggregate, applies one mutation, and
// persists it. On a stale-version conflict the aggregate is reloaded and the
// mutation replayed against the concurrent writer's state, so nothing that
// writer persisted gets dropped. apply reports whether the aggregate changed;
// unchanged aggregates are returned without a save. The returned aggregate is
// the one the mutation ran against.
func (e *Engine) applyAndSave(ctx context.Context, name string, attempts int, apply func(*models.Game) bool) (*models.Game, error) {
	var saveErr error
	for i := 0; i < attempts; i++ {
		g, err := e.store.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if !apply(g) {
			return g, nil
		}
		saveErr = e.store.Save(ctx, g)
		if saveErr == nil {
			return g, nil
		}
		if !errors.Is(saveErr, ErrStaleVersion) {
			return g, saveErr
		}
		e.log.WithFields(logrus.Fields{"game": name, "attempt": i + 1}).Warn("stale version on save, replaying")
	}
	return nil, saveErr
}

// logAction ships an action record to the historian queue, fire and forget.
func (e *Engine) logAction(g *models.Game, actor, actionType string, payload map[string]interface{}) {
	e.mu.Lock()
	e.actionSeq[g.Name]++
	seq := e.actionSeq[g.Name]
	e.mu.Unlock()

	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		GameName:      g.Name,
		ActionIndex:   seq,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			e.log.WithFields(logrus.Fields{"game": rec.GameName, "action": rec.ActionType}).Warnf("failed to publish action: %v", err)
		}
	}(record)
}

func (e *Engine) emit(g *models.Game, event string, payload map[string]interface{}) {
	if e.notifier != nil {
		e.notifier.EmitToRoom(g.Name, event, payload)
	}
}

// RevealCard executes a human reveal: load, mutate, persist, fan out. A
// stale-version conflict replays the reveal on the reloaded aggregate.
// Illegal actions return an unsuccessful outcome without persisting.
func (e *Engine) RevealCard(ctx context.Context, gameName, playerID string, columnIndex int) (RevealOutcome, error) {
	lock := e.turnLock(gameName)
	lock.Lock()
	defer lock.Unlock()

	var out RevealOutcome
	g, err := e.applyAndSave(ctx, gameName, saveAttempts, func(g *models.Game) bool {
		out = RevealCard(g, playerID, columnIndex)
		if !out.Success {
			return false
		}
		if out.RoundEnded {
			now := time.Now()
			g.LastRoundEndAt = &now
		}
		return true
	})
	if err != nil || !out.Success {
		return out, err
	}

	payload := map[string]interface{}{
		"player":      playerID,
		"columnIndex": columnIndex,
		"card":        out.Card,
	}
	e.emit(g, EventCardRevealed, payload)
	e.logAction(g, playerID, EventCardRevealed, payload)
	if out.RoundEnded {
		e.emit(g, EventRoundEndCardRevealed, map[string]interface{}{"player": playerID})
		e.logAction(g, playerID, EventRoundEndCardRevealed, nil)
	}
	return out, nil
}

// TakeColumn executes a human column take, then hands off to the round-end
// resolver or the scorer when the take closed the round or the game.
func (e *Engine) TakeColumn(ctx context.Context, gameName, playerID string, columnIndex int) (TakeOutcome, error) {
	lock := e.turnLock(gameName)
	lock.Lock()
	defer lock.Unlock()

	var out TakeOutcome
	g, err := e.applyAndSave(ctx, gameName, saveAttempts, func(g *models.Game) bool {
		out = TakeColumn(g, playerID, columnIndex)
		return out.Success
	})
	if err != nil || !out.Success {
		return out, err
	}

	payload := map[string]interface{}{
		"player":      playerID,
		"columnIndex": columnIndex,
		"cards":       out.TakenCards,
	}
	e.emit(g, EventColumnTaken, payload)
	e.logAction(g, playerID, EventColumnTaken, payload)

	if ShouldEndGame(g) {
		if err := e.finalizeGame(ctx, g); err != nil {
			return out, err
		}
	} else if g.AllSeatsTaken() {
		if err := e.resolveRoundEnd(ctx, g); err != nil {
			return out, err
		}
	}
	return out, nil
}

// resolveRoundEnd runs the between-rounds transition and persists it.
// Assumes the per-game lock is held.
func (e *Engine) resolveRoundEnd(ctx context.Context, g *models.Game) error {
	if ShouldEndGame(g) {
		return e.finalizeGame(ctx, g)
	}
	e.emit(g, EventReassignmentStarting, map[string]interface{}{"round": g.CurrentRound})
	e.log.WithFields(logrus.Fields{"game": g.Name, "round": g.CurrentRound}).Info("resolving round end")

	saved, err := e.applyAndSave(ctx, g.Name, saveAttempts, func(g *models.Game) bool {
		ResolveRoundEnd(g)
		return true
	})
	if err != nil {
		return err
	}
	*g = *saved
	e.emit(g, EventReassignmentComplete, map[string]interface{}{
		"round":       g.CurrentRound,
		"nextPlayer":  g.CurrentSeat(),
		"columnCount": len(g.Columns),
	})
	e.logAction(g, "", EventReassignmentComplete, map[string]interface{}{"round": g.CurrentRound})
	return nil
}

// finalizeGame seals the aggregate with final scores and winners. Assumes
// the per-game lock is held.
func (e *Engine) finalizeGame(ctx context.Context, g *models.Game) error {
	if g.IsFinished {
		return nil
	}
	sealed := false
	saved, err := e.applyAndSave(ctx, g.Name, saveAttempts, func(g *models.Game) bool {
		sealed = false
		if g.IsFinished {
			return false
		}
		scores, winners := FinalScores(g)
		g.FinalScores = scores
		g.Winners = winners
		g.IsFinished = true
		g.Touch()
		sealed = true
		return true
	})
	if err != nil {
		return err
	}
	*g = *saved
	if !sealed {
		return nil
	}
	e.emit(g, EventGameFinalized, map[string]interface{}{
		"scores":  g.FinalScores,
		"winners": g.Winners,
	})
	e.logAction(g, "", EventGameFinalized, map[string]interface{}{"winners": g.Winners})
	e.log.WithFields(logrus.Fields{"game": g.Name, "winners": g.Winners}).Info("game finalized")

	if e.results != nil {
		if err := e.results.RecordFinalResults(ctx, g); err != nil {
			// Results bookkeeping must not unseal the game.
			e.log.WithField("game", g.Name).Warnf("failed to record final results: %v", err)
		}
	}
	return nil
}

// ReplaceHumanWithAI swaps a departing human seat for a fresh AI seat,
// migrating the seat's holdings and round state under the new name.
func (e *Engine) ReplaceHumanWithAI(ctx context.Context, gameName, playerID string, seat models.AISeat) error {
	lock := e.turnLock(gameName)
	lock.Lock()
	defer lock.Unlock()

	found := false
	g, err := e.applyAndSave(ctx, gameName, saveAttempts, func(g *models.Game) bool {
		found = false
		idx := -1
		for i, p := range g.Players {
			if p == playerID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		found = true
		currentName := g.CurrentSeat()
		g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
		g.AISeats = append(g.AISeats, seat)
		e.migrateSeat(g, playerID, seat.Name, currentName)
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrGameNotFound
	}
	e.emitReplacement(g, playerID, seat.Name)
	return nil
}

// ReplaceAIWithHuman lets a human take over an AI seat mid-game. The AI turn
// orchestrator detects this through its projection re-read and aborts.
func (e *Engine) ReplaceAIWithHuman(ctx context.Context, gameName, aiName, playerID string) error {
	lock := e.turnLock(gameName)
	lock.Lock()
	defer lock.Unlock()

	found := false
	g, err := e.applyAndSave(ctx, gameName, saveAttempts, func(g *models.Game) bool {
		found = false
		idx := -1
		for i := range g.AISeats {
			if g.AISeats[i].Name == aiName {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		found = true
		currentName := g.CurrentSeat()
		g.AISeats = append(g.AISeats[:idx], g.AISeats[idx+1:]...)
		g.Players = append(g.Players, playerID)
		e.migrateSeat(g, aiName, playerID, currentName)
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrGameNotFound
	}
	e.emitReplacement(g, aiName, playerID)
	return nil
}

// migrateSeat renames a seat across all ledgers and round state and keeps
// the turn pointing at the same participant.
func (e *Engine) migrateSeat(g *models.Game, old, next, currentName string) {
	g.PlayerCollections.Rename(old, next)
	g.WildCards.Rename(old, next)
	g.SummaryCards.Rename(old, next)
	for i, p := range g.PlayersTakenColumn {
		if p == old {
			g.PlayersTakenColumn[i] = next
		}
	}
	for i, p := range g.PlayersEndRoundRevealed {
		if p == old {
			g.PlayersEndRoundRevealed[i] = next
		}
	}
	g.ReplacedPlayers = append(g.ReplacedPlayers, models.Replacement{Old: old, New: next, At: time.Now()})

	if currentName == old {
		currentName = next
	}
	for i, s := range g.SeatNames() {
		if s == currentName {
			g.CurrentPlayerIndex = i
			break
		}
	}
	g.Touch()
}

func (e *Engine) emitReplacement(g *models.Game, old, next string) {
	payload := map[string]interface{}{"old": old, "new": next}
	e.emit(g, EventPlayerReplaced, payload)
	e.logAction(g, next, EventPlayerReplaced, payload)
}

// internal/game/ai.go
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"chameleon/internal/models"
)

const (
	// aiMaxActionsPerTurn caps the reveal chain within one AI activation.
	aiMaxActionsPerTurn = 5
	// aiRevealPacing is the fixed delay between chained AI reveals.
	aiRevealPacing = 2000 * time.Millisecond
	// roundEndCooldown is the window after an end-of-round reveal during
	// which no AI action is attempted on the game.
	roundEndCooldown = 5 * time.Second
)

// AIAction is one entry of the ordered record an AI activation produces.
type AIAction struct {
	Action      string       `json:"action"`
	Reason      string       `json:"reason,omitempty"`
	Card        *models.Card `json:"card,omitempty"`
	ColumnIndex int          `json:"columnIndex"`
	Game        *models.Game `json:"updatedGameState,omitempty"`
}

// Action tags emitted by ExecuteAITurn.
const (
	AIActionReveal             = "reveal"
	AIActionTakeColumn         = "take_column"
	AIActionSkipCooldown       = "skip_round_end_cooldown"
	AIActionSkipAllTook        = "skip_all_took_column"
	AIActionGameAlreadyEnded   = "game_already_ended"
	AIActionGameEndDetected    = "game_end_detected"
	AIActionRoundEndAfterTake  = "round_should_end_after_take"
	AIActionRoundEndForced     = "round_end_forced"
	AIActionRoundEndNoop       = "round_end_noop"
	AIActionInvalidTurn        = "invalid_turn"
	AIActionAbortedZombie      = "aborted_zombie"
	AIActionError              = "error"
)

// ExecuteAITurn drives one computer seat through a bounded sequence of
// actions. Guards short-circuit with a single-element record; a strategy or
// execution failure is caught here and converted into an error record so one
// failing seat never aborts the surrounding scheduling loop.
func (e *Engine) ExecuteAITurn(ctx context.Context, gameName, seatName string) (actions []AIAction, err error) {
	lock := e.turnLock(gameName)
	lock.Lock()
	defer lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(logrus.Fields{"game": gameName, "seat": seatName}).Errorf("ai turn panicked: %v", r)
			actions = append(actions, AIAction{Action: AIActionError, Reason: fmt.Sprint(r)})
			err = nil
		}
	}()

	g, err := e.store.FindByName(ctx, gameName)
	if err != nil {
		return nil, err
	}

	if g.LastRoundEndAt != nil && time.Since(*g.LastRoundEndAt) < roundEndCooldown {
		return []AIAction{{Action: AIActionSkipCooldown, Game: g}}, nil
	}
	if g.IsFinished {
		return []AIAction{{Action: AIActionGameAlreadyEnded, Game: g}}, nil
	}
	if g.AllSeatsTaken() && !ShouldEndGame(g) {
		return []AIAction{{Action: AIActionSkipAllTook, Game: g}}, nil
	}
	if ShouldEndGame(g) {
		if err := e.finalizeGame(ctx, g); err != nil {
			return nil, err
		}
		return []AIAction{{Action: AIActionGameEndDetected, Game: g}}, nil
	}
	if ShouldEndRound(g) {
		act, err := e.handleAIRoundEnd(ctx, g, seatName)
		if err != nil {
			return nil, err
		}
		return []AIAction{act}, nil
	}

	seat := g.AISeatByName(seatName)
	if seat == nil || g.CurrentSeat() != seatName {
		return []AIAction{{Action: AIActionInvalidTurn, Game: g}}, nil
	}

	for actionsTaken := 0; actionsTaken < aiMaxActionsPerTurn; actionsTaken++ {
		// From round 2 onward the first turn of a round permits exactly one
		// reveal before the turn auto-advances, whatever the AI would prefer.
		if g.IsFirstTurnOfRound && g.CurrentRound >= 2 {
			act, err := e.aiReveal(ctx, g, seat)
			if err != nil {
				return actions, err
			}
			return append(actions, act), nil
		}

		if !AnyColumnRevealable(g) {
			act, err := e.aiTake(ctx, g, seat)
			if err != nil {
				return actions, err
			}
			return append(actions, act), nil
		}

		decision := e.eval.DecideAction(g, seat, actionsTaken)
		if decision == ActionTakeColumn {
			act, err := e.aiTake(ctx, g, seat)
			if err != nil {
				return actions, err
			}
			return append(actions, act), nil
		}

		act, err := e.aiReveal(ctx, g, seat)
		if err != nil {
			return actions, err
		}
		actions = append(actions, act)
		if act.Action != AIActionReveal {
			return actions, nil
		}
		if act.Reason == "round_end" || act.Reason == "pass_turn" {
			return actions, nil
		}
		e.eval.sleep(aiRevealPacing)
	}

	// Action cap exhausted without a terminal outcome: force a take.
	act, err := e.aiTake(ctx, g, seat)
	if err != nil {
		return actions, err
	}
	return append(actions, act), nil
}

// handleAIRoundEnd covers an activation that lands on a closing round. The
// result is exhaustive: every path yields an explicit action record.
func (e *Engine) handleAIRoundEnd(ctx context.Context, g *models.Game, seatName string) (AIAction, error) {
	if !g.HasTakenColumn(seatName) && g.CurrentSeat() == seatName {
		seat := g.AISeatByName(seatName)
		if seat != nil {
			act, err := e.aiTake(ctx, g, seat)
			if err != nil {
				return AIAction{}, err
			}
			if act.Action == AIActionTakeColumn {
				act.Action = AIActionRoundEndAfterTake
			}
			return act, nil
		}
	}
	if g.AllSeatsTaken() || !AnyColumnRevealable(g) {
		if err := e.resolveRoundEnd(ctx, g); err != nil {
			return AIAction{}, err
		}
		return AIAction{Action: AIActionRoundEndForced, Game: g}, nil
	}
	return AIAction{Action: AIActionRoundEndNoop, Game: g}, nil
}

// aiReveal picks a destination column for the deck's front card and reveals
// it. The column choice is recomputed on every save attempt so a replay
// reacts to whatever a conflicting writer left behind. Assumes the per-game
// lock is held.
func (e *Engine) aiReveal(ctx context.Context, g *models.Game, seat *models.AISeat) (AIAction, error) {
	var out RevealOutcome
	var colIdx int
	blocked := false
	saved, err := e.applyAndSave(ctx, g.Name, saveAttempts, func(g *models.Game) bool {
		blocked = false
		if len(g.Deck) == 0 {
			blocked = true
			return false
		}
		colIdx = e.eval.ChooseColumnForReveal(g, g.Deck[0])
		if colIdx == -1 {
			blocked = true
			return false
		}
		out = RevealCard(g, seat.Name, colIdx)
		if !out.Success {
			blocked = true
			return false
		}
		if out.RoundEnded {
			now := time.Now()
			g.LastRoundEndAt = &now
		}
		return true
	})
	if err != nil {
		return AIAction{}, err
	}
	*g = *saved
	if blocked {
		return e.aiTake(ctx, g, seat)
	}

	payload := map[string]interface{}{
		"player":      seat.Name,
		"columnIndex": colIdx,
		"card":        out.Card,
	}
	e.emit(g, EventAICardRevealed, payload)
	e.logAction(g, seat.Name, EventAICardRevealed, payload)

	act := AIAction{Action: AIActionReveal, Card: out.Card, ColumnIndex: colIdx, Game: g}
	switch {
	case out.RoundEnded:
		act.Reason = "round_end"
		e.emit(g, EventRoundEndCardRevealed, map[string]interface{}{"player": seat.Name})
		e.logAction(g, seat.Name, EventRoundEndCardRevealed, nil)
	case out.MustPassTurn:
		act.Reason = "pass_turn"
	default:
		act.Reason = "continue_turn"
	}
	return act, nil
}

// aiTake claims the best available column for the seat, re-checking through a
// stored projection that the seat still exists before persisting. Assumes the
// per-game lock is held.
func (e *Engine) aiTake(ctx context.Context, g *models.Game, seat *models.AISeat) (AIAction, error) {
	// The seat may have been handed to a human while this turn was running.
	proj, projErr := e.store.FindProjectionByID(ctx, g.ID, []string{"players", "aiPlayers"})
	if projErr == nil && proj != nil && !proj.HasAISeat(seat.Name) {
		e.log.WithFields(logrus.Fields{"game": g.Name, "seat": seat.Name}).Warn("ai seat replaced mid-turn, aborting")
		return AIAction{Action: AIActionAbortedZombie, Game: g}, nil
	}

	var out TakeOutcome
	var colIdx int
	reason := ""
	saved, err := e.applyAndSave(ctx, g.Name, saveAttempts, func(g *models.Game) bool {
		reason = ""
		colIdx = e.eval.ChooseColumnToTake(g, seat)
		if colIdx == -1 {
			// Expert found nothing worth 30 points; fall back to the fullest
			// claimable column rather than stalling the turn.
			colIdx = fallbackTakeColumn(g)
		}
		if colIdx == -1 {
			reason = "no_claimable_column"
			return false
		}
		out = TakeColumn(g, seat.Name, colIdx)
		if !out.Success {
			reason = "take_rejected"
			return false
		}
		return true
	})
	if err != nil {
		return AIAction{}, err
	}
	*g = *saved
	if reason != "" {
		return AIAction{Action: AIActionRoundEndNoop, Reason: reason, Game: g}, nil
	}

	payload := map[string]interface{}{
		"player":      seat.Name,
		"columnIndex": colIdx,
		"cards":       out.TakenCards,
	}
	e.emit(g, EventColumnTaken, payload)
	e.logAction(g, seat.Name, EventColumnTaken, payload)

	act := AIAction{Action: AIActionTakeColumn, ColumnIndex: colIdx, Game: g}

	if ShouldEndGame(g) {
		if err := e.finalizeGame(ctx, g); err != nil {
			return act, err
		}
	} else if g.AllSeatsTaken() {
		if err := e.resolveRoundEnd(ctx, g); err != nil {
			return act, err
		}
	}
	return act, nil
}

// fallbackTakeColumn returns the claimable column holding the most cards, or
// -1 if nothing can be claimed.
func fallbackTakeColumn(g *models.Game) int {
	best, bestLen := -1, 0
	for i := range g.Columns {
		col := &g.Columns[i]
		if col.IsEmpty() {
			continue
		}
		if col.IsMarkerOnly() && !MarkerOnlyClaimable(g) {
			continue
		}
		if len(col.Cards) > bestLen {
			best, bestLen = i, len(col.Cards)
		}
	}
	return best
}

// internal/game/ai_test.go
package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chameleon/internal/models"
)

// newAITestGame seats one human and one computer player and hands the turn to
// the computer.
func newAITestGame() (*models.Game, *models.AISeat) {
	g := newTestGame("alice")
	g.AISeats = []models.AISeat{{
		Name:       "bot-1",
		Difficulty: models.DifficultyBasic,
		Strategy:   models.StrategyBalanced,
	}}
	g.Columns = append(g.Columns, models.Column{Cards: []models.Card{card(models.ColorBrownColumn)}})
	g.PlayerCollections.Set("bot-1", nil)
	g.WildCards.Set("bot-1", nil)
	g.SummaryCards.Set("bot-1", nil)
	g.CurrentPlayerIndex = 1
	return g, &g.AISeats[0]
}

func TestAITurnSkipsDuringRoundEndCooldown(t *testing.T) {
	g, _ := newAITestGame()
	now := time.Now()
	g.LastRoundEndAt = &now
	e := newTestEngine(newMemStore(g), &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionSkipCooldown, actions[0].Action)
}

func TestAITurnOnFinishedGame(t *testing.T) {
	g, _ := newAITestGame()
	g.IsFinished = true
	e := newTestEngine(newMemStore(g), &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionGameAlreadyEnded, actions[0].Action)
}

func TestAITurnRejectsWrongSeat(t *testing.T) {
	g, _ := newAITestGame()
	g.CurrentPlayerIndex = 0 // alice's turn
	g.Deck = []models.Card{card(models.ColorRed)}
	e := newTestEngine(newMemStore(g), &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionInvalidTurn, actions[0].Action)
}

func TestAITurnDetectsGameEnd(t *testing.T) {
	g, _ := newAITestGame()
	g.IsRoundCardRevealed = true
	g.MarkTakenColumn("alice")
	g.MarkTakenColumn("bot-1")
	store := newMemStore(g)
	e := newTestEngine(store, &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionGameEndDetected, actions[0].Action)
	assert.True(t, store.get(g.Name).IsFinished)
}

func TestAITurnSkipsWhenAllTookButRoundStillOpen(t *testing.T) {
	g, _ := newAITestGame()
	g.Deck = []models.Card{card(models.ColorRed)}
	g.MarkTakenColumn("alice")
	g.MarkTakenColumn("bot-1")
	e := newTestEngine(newMemStore(g), &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionSkipAllTook, actions[0].Action)
}

func TestAITurnFirstTurnOfLaterRoundRevealsOnce(t *testing.T) {
	g, _ := newAITestGame()
	g.CurrentRound = 2
	g.IsFirstTurnOfRound = true
	g.Deck = []models.Card{card(models.ColorRed), card(models.ColorBlue)}
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionReveal, actions[0].Action)
	assert.Equal(t, "pass_turn", actions[0].Reason)
	assert.Equal(t, "alice", store.get(g.Name).CurrentSeat())
	assert.True(t, notifier.saw(EventAICardRevealed))
}

func TestAITurnFullBoardForcesRoundEndTake(t *testing.T) {
	g, _ := newAITestGame()
	g.Deck = []models.Card{card(models.ColorRed)}
	for i := range g.Columns {
		g.Columns[i].Cards = append(g.Columns[i].Cards,
			card(models.ColorRed), card(models.ColorBlue), card(models.ColorGreen))
	}
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionRoundEndAfterTake, actions[0].Action)
	assert.True(t, store.get(g.Name).HasTakenColumn("bot-1"))
	assert.True(t, notifier.saw(EventColumnTaken))
}

func TestAITurnRoundEndTakesOutstandingColumn(t *testing.T) {
	g, _ := newAITestGame()
	// Deck exhausted forces the round to close; the bot has not taken yet.
	g.Deck = nil
	g.Columns[0].Cards = append(g.Columns[0].Cards, card(models.ColorRed))
	store := newMemStore(g)
	e := newTestEngine(store, &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionRoundEndAfterTake, actions[0].Action)
	assert.True(t, store.get(g.Name).HasTakenColumn("bot-1"))
}

// projOverrideStore serves a fixed projection, standing in for a seat list
// that changed in storage after the aggregate was loaded.
type projOverrideStore struct {
	*memStore
	proj *Projection
}

func (s *projOverrideStore) FindProjectionByID(ctx context.Context, id uuid.UUID, fields []string) (*Projection, error) {
	return s.proj, nil
}

func TestAITurnAbortsWhenSeatReplacedMidTurn(t *testing.T) {
	g, seat := newAITestGame()
	g.Deck = nil
	g.Columns[0].Cards = append(g.Columns[0].Cards, card(models.ColorRed))
	// The stored seat list no longer names the bot: a human took the seat over.
	store := &projOverrideStore{
		memStore: newMemStore(g),
		proj:     &Projection{Players: []string{"alice", seat.Name}},
	}
	e := newTestEngine(store, &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, seat.Name)

	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.Equal(t, AIActionAbortedZombie, actions[len(actions)-1].Action)
	assert.False(t, store.get(g.Name).HasTakenColumn(seat.Name))
}

func TestAITurnBoundedActionsEndInTake(t *testing.T) {
	g, _ := newAITestGame()
	g.Deck = cards(
		models.ColorRed, models.ColorBlue, models.ColorGreen,
		models.ColorYellow, models.ColorOrange, models.ColorPurple,
		models.ColorPink, models.ColorRed, models.ColorBlue,
	)
	store := newMemStore(g)
	e := newTestEngine(store, &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.LessOrEqual(t, len(actions), aiMaxActionsPerTurn+1)
	last := actions[len(actions)-1]
	assert.Contains(t, []string{AIActionTakeColumn, AIActionReveal}, last.Action)
	if last.Action == AIActionReveal {
		assert.Contains(t, []string{"pass_turn", "round_end"}, last.Reason)
	} else {
		assert.True(t, store.get(g.Name).HasTakenColumn("bot-1"))
	}
}

func TestAITurnDegenerateBoardYieldsNoop(t *testing.T) {
	g, _ := newAITestGame()
	g.Deck = []models.Card{card(models.ColorRed)}
	g.Columns = nil
	e := newTestEngine(newMemStore(g), &recordNotifier{})

	actions, err := e.ExecuteAITurn(context.Background(), g.Name, "bot-1")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, AIActionRoundEndNoop, actions[0].Action)
	assert.Equal(t, "no_claimable_column", actions[0].Reason)
}

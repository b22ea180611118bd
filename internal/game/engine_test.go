// internal/game/engine_test.go
package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chameleon/internal/models"
)

func TestEngineRevealCardPersistsAndEmits(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{card(models.ColorRed)}
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	out, err := e.RevealCard(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 1, store.get(g.Name).Version)
	assert.True(t, notifier.saw(EventCardRevealed))
	assert.False(t, notifier.saw(EventRoundEndCardRevealed))
}

func TestEngineRejectedRevealDoesNotPersist(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{card(models.ColorRed)}
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	out, err := e.RevealCard(context.Background(), g.Name, "bob", 0)

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Zero(t, store.saves)
	assert.Empty(t, notifier.events)
}

func TestEngineRevealEndCardSetsCooldownAndEmits(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{endCard()}
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	out, err := e.RevealCard(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	require.True(t, out.RoundEnded)
	require.NotNil(t, store.get(g.Name).LastRoundEndAt)
	assert.True(t, notifier.saw(EventRoundEndCardRevealed))
}

func TestEngineRetriesStaleSave(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{card(models.ColorRed)}
	store := newMemStore(g)
	store.failSaves = 1
	e := newTestEngine(store, &recordNotifier{})

	out, err := e.RevealCard(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, store.saves)
	stored := store.get(g.Name)
	assert.Empty(t, stored.Deck, "reveal applied exactly once despite the replay")
	assert.Len(t, stored.Columns[0].Cards, 2)
}

// conflictStore fails the first save and lands a concurrent writer's change
// on the stored aggregate, as if another process won the race.
type conflictStore struct {
	*memStore
	interfere  func(*models.Game)
	interfered bool
}

func (s *conflictStore) Save(ctx context.Context, g *models.Game) error {
	if !s.interfered {
		s.interfered = true
		stored := s.memStore.get(g.Name)
		s.interfere(stored)
		stored.Version++
		return ErrStaleVersion
	}
	return s.memStore.Save(ctx, g)
}

func TestEngineReplaysConflictKeepingConcurrentWrite(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{card(models.ColorRed)}
	base := newMemStore(g)
	store := &conflictStore{memStore: base, interfere: func(stored *models.Game) {
		stored.PlayerCollections.Append("bob", card(models.ColorBlue))
	}}
	e := newTestEngine(store, &recordNotifier{})

	out, err := e.RevealCard(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	require.True(t, out.Success)
	stored := base.get(g.Name)
	assert.Equal(t, []models.Card{card(models.ColorBlue)}, stored.PlayerCollections.Get("bob"),
		"the conflicting writer's cards survive the retry")
	assert.Empty(t, stored.Deck)
	assert.Equal(t, []models.Card{card(models.ColorBrownColumn), card(models.ColorRed)}, stored.Columns[0].Cards)
}

func TestEngineSurfacesPersistentConflict(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.Deck = []models.Card{card(models.ColorRed)}
	store := newMemStore(g)
	store.failSaves = 5
	e := newTestEngine(store, &recordNotifier{})

	_, err := e.RevealCard(context.Background(), g.Name, "alice", 0)
	assert.ErrorIs(t, err, ErrStaleVersion)
}

func TestEngineTakeColumnResolvesRoundWhenAllSeatsTook(t *testing.T) {
	g := newTestGame("alice", "bob")
	g.Columns[0].Cards = append(g.Columns[0].Cards, card(models.ColorRed))
	g.Columns[1].Cards = append(g.Columns[1].Cards, card(models.ColorBlue))
	g.Deck = []models.Card{card(models.ColorGreen)}
	g.MarkTakenColumn("bob")
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	out, err := e.TakeColumn(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	require.True(t, out.Success)
	assert.True(t, notifier.saw(EventColumnTaken))
	assert.True(t, notifier.saw(EventReassignmentComplete))
	stored := store.get(g.Name)
	assert.Equal(t, 2, stored.CurrentRound)
	assert.False(t, stored.IsFinished)
}

func TestEngineTakeColumnFinalizesGame(t *testing.T) {
	g := newTestGame("alice", "bob")
	g.IsRoundCardRevealed = true
	g.Columns[0].Cards = append(g.Columns[0].Cards, card(models.ColorRed))
	g.MarkTakenColumn("bob")
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	out, err := e.TakeColumn(context.Background(), g.Name, "alice", 0)

	require.NoError(t, err)
	require.True(t, out.Success)
	stored := store.get(g.Name)
	assert.True(t, stored.IsFinished)
	assert.NotNil(t, stored.FinalScores)
	assert.True(t, notifier.saw(EventGameFinalized))
}

func TestEngineReplaceHumanWithAI(t *testing.T) {
	g := newTestGame("alice", "bob", "carol")
	g.PlayerCollections.Set("bob", cards(models.ColorRed))
	g.CurrentPlayerIndex = 1 // bob's turn
	store := newMemStore(g)
	notifier := &recordNotifier{}
	e := newTestEngine(store, notifier)

	seat := models.AISeat{Name: "bot-1", Difficulty: models.DifficultyBasic, Strategy: models.StrategyBalanced}
	require.NoError(t, e.ReplaceHumanWithAI(context.Background(), g.Name, "bob", seat))

	stored := store.get(g.Name)
	assert.Equal(t, []string{"alice", "carol"}, stored.Players)
	assert.NotNil(t, stored.AISeatByName("bot-1"))
	assert.Equal(t, cards(models.ColorRed), stored.PlayerCollections.Get("bot-1"))
	assert.Equal(t, "bot-1", stored.CurrentSeat(), "turn follows the migrated seat")
	assert.True(t, notifier.saw(EventPlayerReplaced))
	require.Len(t, stored.ReplacedPlayers, 1)
	assert.Equal(t, "bob", stored.ReplacedPlayers[0].Old)
}

func TestEngineReplaceAIWithHuman(t *testing.T) {
	g := newTestGame("alice")
	g.AISeats = []models.AISeat{{Name: "bot-1", Difficulty: models.DifficultyBasic}}
	g.WildCards.Set("bot-1", cards(models.ColorWild))
	store := newMemStore(g)
	e := newTestEngine(store, &recordNotifier{})

	require.NoError(t, e.ReplaceAIWithHuman(context.Background(), g.Name, "bot-1", "dave"))

	stored := store.get(g.Name)
	assert.Empty(t, stored.AISeats)
	assert.Equal(t, []string{"alice", "dave"}, stored.Players)
	assert.Equal(t, cards(models.ColorWild), stored.WildCards.Get("dave"))
}

func TestEngineReplaceUnknownSeatFails(t *testing.T) {
	g := newTestGame("alice", "bob")
	store := newMemStore(g)
	e := newTestEngine(store, &recordNotifier{})

	err := e.ReplaceHumanWithAI(context.Background(), g.Name, "nobody", models.AISeat{Name: "bot-1"})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

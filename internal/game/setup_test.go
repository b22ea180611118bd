// internal/game/setup_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chameleon/internal/models"
)

func TestPrepareGameDealsThreePlayerLayout(t *testing.T) {
	g := models.NewGame("t1", []string{"alice", "bob", "carol"}, nil)
	PrepareGameWithRand(g, rand.New(rand.NewSource(11)))

	require.Len(t, g.Columns, 3)
	for i := range g.Columns {
		assert.Equal(t, []models.Card{card(models.ColorBrownColumn)}, g.Columns[i].Cards)
	}

	// 80 cards shuffled, one starting card per seat, plus the end card.
	assert.Len(t, g.Deck, referenceDeckSize-3+1)
	for i, seat := range g.SeatNames() {
		coll := g.PlayerCollections.Get(seat)
		require.Len(t, coll, 1)
		assert.Equal(t, i > 0, coll[0].IsCompensation, "only trailing seats get compensation")
		require.Len(t, g.SummaryCards.Get(seat), 1)
		assert.True(t, g.SummaryCards.Get(seat)[0].IsSummary())
	}

	assert.Equal(t, 1, g.CurrentRound)
	assert.True(t, g.IsFirstTurnOfRound)
	assert.Equal(t, "alice", g.CurrentSeat())
}

func TestPrepareGameHidesEndCardInLastFifteen(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		g := models.NewGame("t1", []string{"alice", "bob"}, nil)
		PrepareGameWithRand(g, rand.New(rand.NewSource(seed)))

		endIdx := -1
		for i, c := range g.Deck {
			if c.IsEndRound {
				require.Equal(t, -1, endIdx, "exactly one end card")
				endIdx = i
			}
		}
		require.NotEqual(t, -1, endIdx, "seed %d", seed)
		assert.GreaterOrEqual(t, endIdx, len(g.Deck)-15, "seed %d", seed)
	}
}

func TestPrepareGameTwoPlayerBoardUsesGreenColumns(t *testing.T) {
	g := models.NewGame("t1", []string{"alice", "bob"}, nil)
	PrepareGameWithRand(g, rand.New(rand.NewSource(3)))

	require.Len(t, g.Columns, 3)
	for i := range g.Columns {
		assert.Equal(t, []models.Card{card(models.GreenColumnColor(i))}, g.Columns[i].Cards)
	}
}

func TestPrepareGameDeckComposition(t *testing.T) {
	g := models.NewGame("t1", []string{"alice", "bob"}, nil)
	g.AISeats = []models.AISeat{{Name: "bot-1", Difficulty: models.DifficultyExpert}}
	PrepareGameWithRand(g, rand.New(rand.NewSource(5)))

	counts := make(map[string]int)
	for _, c := range g.Deck {
		counts[c.Color]++
	}
	for _, seat := range g.SeatNames() {
		for _, c := range g.PlayerCollections.Get(seat) {
			counts[c.Color]++
		}
	}

	for _, color := range models.ChameleonColors {
		assert.Equal(t, 9, counts[color], color)
	}
	assert.Equal(t, 7, counts[models.ColorWild])
	assert.Equal(t, 2, counts[models.ColorGoldenWild])
	assert.Equal(t, 8, counts[models.ColorCotton])
	assert.Equal(t, 1, counts[models.ColorEndRound])

	// The AI seat's summary card follows its configured difficulty.
	assert.Equal(t, models.SummaryColor(models.DifficultyExpert), g.SummaryCards.Get("bot-1")[0].Color)
	assert.Equal(t, models.SummaryColor(models.DifficultyBasic), g.SummaryCards.Get("alice")[0].Color)
}

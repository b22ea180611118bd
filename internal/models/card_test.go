// internal/models/card_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardClassification(t *testing.T) {
	assert.True(t, Card{Color: ColorRed}.IsChameleon())
	assert.False(t, Card{Color: ColorWild}.IsChameleon())
	assert.True(t, Card{Color: ColorWild}.IsWild())
	assert.True(t, Card{Color: ColorGoldenWild}.IsWild())
	assert.True(t, Card{Color: ColorCotton}.IsCotton())
	assert.True(t, Card{Color: ColorBrownColumn}.IsColumnMarker())
	assert.True(t, Card{Color: GreenColumnColor(1)}.IsColumnMarker())
	assert.True(t, Card{Color: GreenColumnColor(1)}.IsGreenColumnMarker())
	assert.False(t, Card{Color: ColorBrownColumn}.IsGreenColumnMarker())
}

func TestSummaryCards(t *testing.T) {
	basic := Card{Color: SummaryColor(DifficultyBasic)}
	expert := Card{Color: SummaryColor(DifficultyExpert)}

	assert.True(t, basic.IsSummary())
	assert.Equal(t, DifficultyBasic, basic.SummaryDifficulty())
	assert.Equal(t, DifficultyExpert, expert.SummaryDifficulty())
	assert.Equal(t, Difficulty(""), Card{Color: ColorRed}.SummaryDifficulty())
}

func TestColumnCapAndRoom(t *testing.T) {
	col := Column{Cards: []Card{{Color: ColorBrownColumn}, {Color: ColorRed}, {Color: ColorBlue}}}
	assert.Equal(t, 2, col.ChameleonCount())
	assert.Equal(t, 3, col.Cap())
	assert.True(t, col.HasRoom())

	col.Cards = append(col.Cards, Card{Color: ColorGreen})
	assert.False(t, col.HasRoom())

	// A golden wild raises the cap to four.
	gold := Column{Cards: []Card{{Color: ColorGoldenWild}, {Color: ColorRed}, {Color: ColorBlue}}}
	assert.Equal(t, 4, gold.Cap())
	assert.True(t, gold.HasRoom())
	gold.Cards = append(gold.Cards, Card{Color: ColorGreen})
	assert.False(t, gold.HasRoom())
}

func TestColumnMarkerPredicates(t *testing.T) {
	empty := Column{}
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.IsMarkerOnly())

	markerOnly := Column{Cards: []Card{{Color: ColorBrownColumn}}}
	assert.True(t, markerOnly.IsMarkerOnly())
	assert.True(t, markerOnly.HasMarker())

	mixed := Column{Cards: []Card{{Color: ColorBrownColumn}, {Color: ColorRed}}}
	assert.False(t, mixed.IsMarkerOnly())
	assert.True(t, mixed.HasMarker())
}

func TestColumnDistinctChameleonColors(t *testing.T) {
	col := Column{Cards: []Card{
		{Color: ColorRed}, {Color: ColorRed}, {Color: ColorBlue}, {Color: ColorWild},
	}}
	assert.Equal(t, 2, col.DistinctChameleonColors())

	end := Column{Cards: []Card{{Color: ColorEndRound, IsEndRound: true}}}
	assert.True(t, end.ContainsEndRound())
}

func TestGameSeatHelpers(t *testing.T) {
	g := NewGame("t1", []string{"alice", "bob"}, []AISeat{{Name: "bot-1", Difficulty: DifficultyBasic}})

	assert.Equal(t, []string{"alice", "bob", "bot-1"}, g.SeatNames())
	assert.Equal(t, 3, g.SeatCount())
	assert.Equal(t, "alice", g.CurrentSeat())
	assert.NotNil(t, g.AISeatByName("bot-1"))
	assert.Nil(t, g.AISeatByName("alice"))

	g.MarkTakenColumn("alice")
	g.MarkTakenColumn("alice")
	assert.Equal(t, []string{"alice"}, g.PlayersTakenColumn)
	assert.False(t, g.AllSeatsTaken())

	g.MarkTakenColumn("bob")
	g.MarkTakenColumn("bot-1")
	assert.True(t, g.AllSeatsTaken())
}

func TestEndRoundPendingConsumedOnce(t *testing.T) {
	g := NewGame("t1", []string{"alice", "bob"}, nil)
	g.PlayersEndRoundRevealed = []string{"alice"}

	assert.True(t, g.HasEndRoundPending("alice"))
	assert.True(t, g.ConsumeEndRoundPending("alice"))
	assert.False(t, g.HasEndRoundPending("alice"))
	assert.False(t, g.ConsumeEndRoundPending("alice"))
}

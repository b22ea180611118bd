// internal/game/setup.go
package game

import (
	"math/rand"
	"time"

	"chameleon/internal/models"
)

const cardsPerColor = 9

// PrepareGame populates an empty aggregate with a shuffled deck, marked
// columns, summary cards, and one starting card per seat. The engine itself
// never depends on this exact layout; tests and the create endpoint use it.
func PrepareGame(g *models.Game) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	PrepareGameWithRand(g, r)
}

// PrepareGameWithRand is PrepareGame with an injectable random source.
func PrepareGameWithRand(g *models.Game, r *rand.Rand) {
	deck := make([]models.Card, 0, referenceDeckSize)
	for _, color := range models.ChameleonColors {
		for i := 0; i < cardsPerColor; i++ {
			deck = append(deck, models.Card{Color: color})
		}
	}
	for i := 0; i < 7; i++ {
		deck = append(deck, models.Card{Color: models.ColorWild})
	}
	deck = append(deck, models.Card{Color: models.ColorGoldenWild})
	deck = append(deck, models.Card{Color: models.ColorGoldenWild})
	for i := 0; i < 8; i++ {
		deck = append(deck, models.Card{Color: models.ColorCotton})
	}
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	// Starting card for each seat, dealt before the end card goes in.
	for i, seat := range g.SeatNames() {
		card := deck[0]
		deck = deck[1:]
		card.IsCompensation = i > 0
		g.PlayerCollections.Set(seat, []models.Card{card})
		g.WildCards.Set(seat, nil)
		g.SummaryCards.Set(seat, []models.Card{{Color: models.SummaryColor(seatDifficulty(g, seat))}})
	}

	// The end-of-round card hides somewhere in the last 15 cards.
	window := 15
	if window > len(deck) {
		window = len(deck)
	}
	pos := len(deck) - 1
	if window > 0 {
		pos = len(deck) - window + r.Intn(window)
	}
	endCard := models.Card{Color: models.ColorEndRound, IsEndRound: true}
	deck = append(deck[:pos], append([]models.Card{endCard}, deck[pos:]...)...)
	g.Deck = deck

	// Board: one marked column per seat for 3+ players, three green-marked
	// columns for the two-player variant (one is removed after round 1).
	if g.SeatCount() >= 3 {
		g.Columns = make([]models.Column, g.SeatCount())
		for i := range g.Columns {
			g.Columns[i].Cards = []models.Card{{Color: models.ColorBrownColumn}}
		}
	} else {
		g.Columns = make([]models.Column, 3)
		for i := range g.Columns {
			g.Columns[i].Cards = []models.Card{{Color: models.GreenColumnColor(i)}}
		}
	}

	g.CurrentRound = 1
	g.CurrentPlayerIndex = 0
	g.IsFirstTurnOfRound = true
	g.Touch()
}

func seatDifficulty(g *models.Game, seat string) models.Difficulty {
	if ai := g.AISeatByName(seat); ai != nil {
		return ai.Difficulty
	}
	return models.DifficultyBasic
}

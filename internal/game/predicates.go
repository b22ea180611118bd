// internal/game/predicates.go
package game

import "chameleon/internal/models"

// ColumnRevealable reports whether a column can receive another revealed card.
func ColumnRevealable(c *models.Column) bool {
	return c.HasRoom()
}

// AnyColumnRevealable reports whether at least one reveal is possible: a card
// left to draw and a column with room for it.
func AnyColumnRevealable(g *models.Game) bool {
	if len(g.Deck) == 0 {
		return false
	}
	for i := range g.Columns {
		if ColumnRevealable(&g.Columns[i]) {
			return true
		}
	}
	return false
}

// MarkerOnlyClaimable reports whether a marker-only column may be taken:
// only when the whole board holds nothing but markers and the round is
// already closing (end card out or deck exhausted).
func MarkerOnlyClaimable(g *models.Game) bool {
	for i := range g.Columns {
		col := &g.Columns[i]
		if !col.IsEmpty() && !col.IsMarkerOnly() {
			return false
		}
	}
	return g.IsRoundCardRevealed || len(g.Deck) == 0
}

// ShouldEndRound reports whether the current round can no longer continue:
// every seat has claimed a column, the deck is exhausted, every column is
// full, or the board is reduced to marker residue with no reveal possible.
func ShouldEndRound(g *models.Game) bool {
	if g.SeatCount() == 0 {
		return false
	}
	if g.AllSeatsTaken() {
		return true
	}
	if len(g.Deck) == 0 {
		return true
	}
	if len(g.Columns) > 0 {
		full := true
		for i := range g.Columns {
			if g.Columns[i].ChameleonCount() < 3 {
				full = false
				break
			}
		}
		if full {
			return true
		}
	}
	if !AnyColumnRevealable(g) {
		for i := range g.Columns {
			if g.Columns[i].IsMarkerOnly() {
				return true
			}
		}
	}
	return false
}

// ShouldEndGame reports whether terminal conditions hold: the end card is out
// and every seat has claimed a column, or both deck and board are empty.
func ShouldEndGame(g *models.Game) bool {
	if g.IsRoundCardRevealed && g.AllSeatsTaken() {
		return true
	}
	if len(g.Deck) != 0 {
		return false
	}
	for i := range g.Columns {
		if !g.Columns[i].IsEmpty() {
			return false
		}
	}
	return true
}

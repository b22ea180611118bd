// internal/game/round_end.go
package game

import (
	"fmt"

	"chameleon/internal/models"
)

// AssignUnclaimedColumns hands every still-unclaimed, non-empty column to the
// seats that have not taken one yet, in column order, with the same
// wild/normal split as a manual take.
func AssignUnclaimedColumns(g *models.Game) {
	colIdx := 0
	for _, seat := range g.SeatNames() {
		if g.HasTakenColumn(seat) {
			continue
		}
		for colIdx < len(g.Columns) && g.Columns[colIdx].IsEmpty() {
			colIdx++
		}
		if colIdx >= len(g.Columns) {
			return
		}
		assignColumnTo(g, seat, colIdx)
	}
}

// assignColumnTo moves a column's cards into the seat's holdings, recording
// the claim exactly like a manual take so that marker redistribution sees
// auto-assigned columns as claimed. Assigning an empty column is a programmer
// error and panics.
func assignColumnTo(g *models.Game, seat string, columnIndex int) {
	col := &g.Columns[columnIndex]
	if col.IsEmpty() {
		panic(fmt.Sprintf("game %s: assigning empty column %d to %s", g.Name, columnIndex, seat))
	}
	taken := col.Cards
	col.Cards = nil
	for _, c := range taken {
		if c.IsWild() {
			g.WildCards.Append(seat, c)
		} else {
			g.PlayerCollections.Append(seat, c)
		}
	}
	g.MarkTakenColumn(seat)
	g.TakenColumnIndexes = append(g.TakenColumnIndexes, columnIndex)
}

// RedistributeMarkers prepares the marker layout for the next round,
// branching on player count.
func RedistributeMarkers(g *models.Game) {
	if g.SeatCount() >= 3 {
		redistributeBrownMarkers(g)
	} else {
		redistributeGreenMarkers(g)
	}
}

// redistributeBrownMarkers pools every brown marker from the board and all
// collections, pads the pool to one per column, and deals them back
// round-robin. Columns keep only their green residue.
func redistributeBrownMarkers(g *models.Game) {
	var pool []models.Card
	for i := range g.Columns {
		var residue []models.Card
		for _, c := range g.Columns[i].Cards {
			if c.Color == models.ColorBrownColumn {
				pool = append(pool, c)
			} else if c.IsGreenColumnMarker() {
				residue = append(residue, c)
			}
		}
		g.Columns[i].Cards = residue
	}
	g.PlayerCollections.Filter(func(c models.Card) bool {
		if c.Color == models.ColorBrownColumn {
			pool = append(pool, c)
			return false
		}
		return true
	})
	for len(pool) < len(g.Columns) {
		pool = append(pool, models.Card{Color: models.ColorBrownColumn})
	}
	for i, m := range pool {
		col := &g.Columns[i%len(g.Columns)]
		col.Cards = append(col.Cards, m)
	}
}

// redistributeGreenMarkers handles the two-player flow: recover the green
// markers from collections, drop the third column after round 1, clear the
// board, and pin the two canonical markers back onto columns 0 and 1.
func redistributeGreenMarkers(g *models.Game) {
	recovered := make(map[string]models.Card)
	g.PlayerCollections.Filter(func(c models.Card) bool {
		if c.IsGreenColumnMarker() {
			recovered[c.Color] = c
			return false
		}
		return true
	})

	if g.CurrentRound == 1 && len(g.Columns) == 3 {
		removeIdx := -1
		for i := range g.Columns {
			if !columnClaimedThisRound(g, i) {
				removeIdx = i
				break
			}
		}
		if removeIdx == -1 {
			removeIdx = 2
		}
		removedColor := models.GreenColumnColor(removeIdx)
		g.Columns = append(g.Columns[:removeIdx], g.Columns[removeIdx+1:]...)
		g.PlayerCollections.Filter(func(c models.Card) bool { return c.Color != removedColor })
		kept := g.Deck[:0:0]
		for _, c := range g.Deck {
			if c.Color != removedColor {
				kept = append(kept, c)
			}
		}
		g.Deck = kept
		delete(recovered, removedColor)
	}

	for i := range g.Columns {
		g.Columns[i].Cards = nil
	}
	for i := 0; i < len(g.Columns) && i < 2; i++ {
		color := models.GreenColumnColor(i)
		m, ok := recovered[color]
		if !ok {
			m = models.Card{Color: color}
		}
		g.Columns[i].Cards = append(g.Columns[i].Cards, m)
	}
	g.PlayerCollections.Filter(func(c models.Card) bool { return !c.IsGreenColumnMarker() })
}

func columnClaimedThisRound(g *models.Game, columnIndex int) bool {
	for _, idx := range g.TakenColumnIndexes {
		if idx == columnIndex {
			return true
		}
	}
	return false
}

// NextStartingSeat returns the index of the seat that opens the next round:
// the last seat to take a column this round, or the current seat if no one
// took one.
func NextStartingSeat(g *models.Game) int {
	if len(g.PlayersTakenColumn) == 0 {
		return g.CurrentPlayerIndex
	}
	last := g.PlayersTakenColumn[len(g.PlayersTakenColumn)-1]
	for i, seat := range g.SeatNames() {
		if seat == last {
			return i
		}
	}
	return g.CurrentPlayerIndex
}

// ResolveRoundEnd performs the full between-rounds transition on the
// aggregate: unclaimed-column assignment, marker redistribution, next-starter
// selection, and the round reset. Persistence and events belong to the
// caller.
func ResolveRoundEnd(g *models.Game) {
	AssignUnclaimedColumns(g)
	RedistributeMarkers(g)
	next := NextStartingSeat(g)

	g.PlayersTakenColumn = nil
	g.TakenColumnIndexes = nil
	g.PlayersEndRoundRevealed = nil
	g.IsFirstTurnOfRound = true
	g.IsRoundCardRevealed = false
	g.CurrentRound++
	g.CurrentPlayerIndex = next
	g.Touch()
}

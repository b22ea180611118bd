// internal/game/scoring.go
package game

import (
	"sort"

	"chameleon/internal/models"
)

// Points per set size, capped at 6 cards. Expert deliberately rewards
// mid-size sets over maxed sets.
var (
	basicPoints  = map[int]int{1: 1, 2: 3, 3: 6, 4: 10, 5: 15, 6: 21}
	expertPoints = map[int]int{1: 1, 2: 4, 3: 8, 4: 7, 5: 6, 6: 5}
)

// CalculatePlayerScore computes a seat's final score from its collection and
// wildcard holdings. It is a pure function: identical input always yields an
// identical result.
//
// Wildcards are distributed round-robin over the player's top three colors.
// This is a simple booster, not a true best-assignment search; the behavior
// is kept as is for compatibility with the scores players already know.
func CalculatePlayerScore(collection, wildCards []models.Card, difficulty models.Difficulty) int {
	counts := make(map[string]int)
	cotton := 0
	for _, c := range collection {
		switch {
		case c.IsChameleon():
			counts[c.Color]++
		case c.IsCotton():
			cotton++
		}
	}

	wilds := 0
	for _, c := range wildCards {
		if c.IsWild() {
			wilds++
		}
	}
	top := topColors(counts, 3)
	if len(top) > 0 {
		for i := 0; i < wilds; i++ {
			counts[top[i%len(top)]]++
		}
	}

	// Re-rank after wildcard assignment.
	ranked := make([]string, 0, len(counts))
	for _, color := range models.ChameleonColors {
		if counts[color] > 0 {
			ranked = append(ranked, color)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	table := basicPoints
	if difficulty == models.DifficultyExpert {
		table = expertPoints
	}

	colorPoints := 0
	negative := 0
	for i, color := range ranked {
		if i < 3 {
			n := counts[color]
			if n > 6 {
				n = 6
			}
			colorPoints += table[n]
		} else {
			negative += counts[color]
		}
	}

	total := colorPoints + 2*cotton - negative
	if total < 0 {
		total = 0
	}
	return total
}

// ScoringDifficulty selects a seat's points table: a held summary card wins,
// then an AI seat's configured difficulty, then Basic.
func ScoringDifficulty(g *models.Game, seatName string) models.Difficulty {
	for _, c := range g.SummaryCards.Get(seatName) {
		if d := c.SummaryDifficulty(); d == models.DifficultyBasic || d == models.DifficultyExpert {
			return d
		}
	}
	if ai := g.AISeatByName(seatName); ai != nil {
		return ai.Difficulty
	}
	return models.DifficultyBasic
}

// FinalScores discards marker residue, scores every seat, and returns the
// score map plus every seat tied at the maximum. Any internal failure
// degrades to an empty result so the game can still be marked finished.
func FinalScores(g *models.Game) (scores map[string]int, winners []string) {
	defer func() {
		if r := recover(); r != nil {
			scores = map[string]int{}
			winners = nil
		}
	}()

	for i := range g.Columns {
		kept := g.Columns[i].Cards[:0:0]
		for _, c := range g.Columns[i].Cards {
			if !c.IsColumnMarker() {
				kept = append(kept, c)
			}
		}
		g.Columns[i].Cards = kept
	}
	g.PlayerCollections.Filter(func(c models.Card) bool { return !c.IsColumnMarker() })

	scores = make(map[string]int, g.SeatCount())
	best := 0
	for _, seat := range g.SeatNames() {
		s := CalculatePlayerScore(g.PlayerCollections.Get(seat), g.WildCards.Get(seat), ScoringDifficulty(g, seat))
		scores[seat] = s
		if s > best {
			best = s
		}
	}
	for _, seat := range g.SeatNames() {
		if scores[seat] == best {
			winners = append(winners, seat)
		}
	}
	return scores, winners
}

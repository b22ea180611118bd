// internal/game/strategy.go
package game

import (
	"math/rand"
	"sort"
	"time"

	"chameleon/internal/models"
)

// AI decisions returned by the evaluator.
const (
	ActionReveal     = "reveal"
	ActionTakeColumn = "take_column"
)

// GamePhase is a coarse classification of match progress used to weight
// Expert decisions.
type GamePhase string

const (
	PhaseEarly   GamePhase = "early"
	PhaseMid     GamePhase = "mid"
	PhaseLate    GamePhase = "late"
	PhaseEndgame GamePhase = "endgame"
)

// referenceDeckSize is the nominal full deck size the phase heuristic is
// calibrated against.
const referenceDeckSize = 80

// DifficultyConfig tunes pacing and aggressiveness per difficulty.
type DifficultyConfig struct {
	MinDelay              time.Duration
	MaxDelay              time.Duration
	BaseRevealProbability int
	MaxRevealsBeforeTake  int
	PatienceFactor        float64
	RiskTolerance         float64
}

var difficultyConfigs = map[models.Difficulty]DifficultyConfig{
	models.DifficultyBasic: {
		MinDelay:              1000 * time.Millisecond,
		MaxDelay:              2000 * time.Millisecond,
		BaseRevealProbability: 70,
		MaxRevealsBeforeTake:  3,
		PatienceFactor:        0.7,
		RiskTolerance:         0.3,
	},
	models.DifficultyExpert: {
		MinDelay:              1500 * time.Millisecond,
		MaxDelay:              3000 * time.Millisecond,
		BaseRevealProbability: 60,
		MaxRevealsBeforeTake:  5,
		PatienceFactor:        0.4,
		RiskTolerance:         0.7,
	},
}

// ConfigFor returns the tuning table for a difficulty, defaulting to Basic
// for unknown values.
func ConfigFor(d models.Difficulty) DifficultyConfig {
	if cfg, ok := difficultyConfigs[d]; ok {
		return cfg
	}
	return difficultyConfigs[models.DifficultyBasic]
}

func strategyFactor(s models.Strategy) float64 {
	switch s {
	case models.StrategyAggressive:
		return 0.7
	case models.StrategyConservative:
		return 1.3
	default:
		return 1.0
	}
}

// Evaluator holds the randomness and pacing hooks for AI decisions. The sleep
// hook exists so tests can run the pacing contract without real delays.
type Evaluator struct {
	rng   *rand.Rand
	sleep func(time.Duration)
}

// NewEvaluator returns an evaluator with a time-seeded random source and real
// sleeping.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

// newTestEvaluator builds a deterministic evaluator that never sleeps.
func newTestEvaluator(seed int64) *Evaluator {
	return &Evaluator{
		rng:   rand.New(rand.NewSource(seed)),
		sleep: func(time.Duration) {},
	}
}

// ClassifyPhase derives the coarse game phase from deck-remaining fraction
// and round number. Endgame starts as soon as the round card is out or less
// than 10% of a reference deck remains.
func ClassifyPhase(g *models.Game) GamePhase {
	if g.IsRoundCardRevealed || len(g.Deck) < referenceDeckSize/10 {
		return PhaseEndgame
	}
	frac := float64(len(g.Deck)) / float64(referenceDeckSize)
	switch {
	case frac > 0.6 && g.CurrentRound <= 2:
		return PhaseEarly
	case frac > 0.3:
		return PhaseMid
	default:
		return PhaseLate
	}
}

// ColorCounts tallies the player's collection per scoring color.
func ColorCounts(g *models.Game, playerID string) map[string]int {
	counts := make(map[string]int)
	for _, c := range g.PlayerCollections.Get(playerID) {
		if c.IsChameleon() {
			counts[c.Color]++
		}
	}
	return counts
}

// SummaryTargets returns the colors a held summary card steers the player
// toward: the player's current top three colors by count. Without a summary
// card there are no targets.
func SummaryTargets(g *models.Game, playerID string) map[string]bool {
	if len(g.SummaryCards.Get(playerID)) == 0 {
		return nil
	}
	counts := ColorCounts(g, playerID)
	top := topColors(counts, 3)
	targets := make(map[string]bool, len(top))
	for _, c := range top {
		targets[c] = true
	}
	return targets
}

// topColors ranks colors by count descending, ties broken by canonical color
// order so the result is deterministic. Colors with zero count are excluded.
func topColors(counts map[string]int, n int) []string {
	ranked := make([]string, 0, len(counts))
	for _, color := range models.ChameleonColors {
		if counts[color] > 0 {
			ranked = append(ranked, color)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// EvaluateColumnForTaking scores how attractive a column is to claim for the
// given player. Never negative.
func EvaluateColumnForTaking(col *models.Column, counts map[string]int, targets map[string]bool, difficulty models.Difficulty, twoPlayer bool) int {
	score := 8 * len(col.Cards)

	inColumn := make(map[string]int)
	hasWild := false
	hasChameleon := false
	for _, c := range col.Cards {
		switch {
		case c.IsWild():
			score += 12
			hasWild = true
		case c.IsCotton():
			score += 8
		case c.IsChameleon():
			inColumn[c.Color]++
			hasChameleon = true
		}
	}
	score += 5 * len(inColumn)

	if difficulty == models.DifficultyExpert {
		for color, n := range inColumn {
			if have := counts[color]; have > 0 {
				gap := 6 - have
				if gap < 0 {
					gap = 0
				}
				score += gap * 3 * n
			}
		}
		for color := range inColumn {
			if targets[color] {
				score += 20
				break
			}
		}
	}

	if col.ContainsEndRound() {
		score -= 15
	}
	if hasWild && hasChameleon {
		score += 10
	}
	if twoPlayer {
		score = int(float64(score) * 1.2)
	}
	if score < 0 {
		score = 0
	}
	return score
}

// EvaluateColumnForReveal scores how good a column is as a destination for
// the candidate card about to be revealed.
func EvaluateColumnForReveal(col *models.Column, card models.Card) int {
	score := 15 * (3 - col.ChameleonCount())
	if col.DistinctChameleonColors() >= 2 {
		score += 10
	}
	for _, c := range col.Cards {
		if c.Color == card.Color {
			score -= 8
			break
		}
	}
	switch card.Color {
	case models.ColorWild:
		score += 12
	case models.ColorGoldenWild:
		score += 15
	case models.ColorCotton:
		score += 8
	}
	if card.IsEndRound {
		score -= 20
	}
	return score
}

// ChooseColumnForReveal picks the highest-scoring column with room for the
// candidate card, first maximum winning ties. Returns -1 if nothing is
// eligible.
func (e *Evaluator) ChooseColumnForReveal(g *models.Game, card models.Card) int {
	best, bestScore := -1, 0
	for i := range g.Columns {
		col := &g.Columns[i]
		if !ColumnRevealable(col) {
			continue
		}
		s := EvaluateColumnForReveal(col, card)
		if best == -1 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// ChooseColumnToTake picks the highest-scoring claimable column for the seat.
// Expert seats refuse a take entirely (-1) when even the best column scores
// under 30.
func (e *Evaluator) ChooseColumnToTake(g *models.Game, seat *models.AISeat) int {
	counts := ColorCounts(g, seat.Name)
	targets := SummaryTargets(g, seat.Name)
	twoPlayer := g.SeatCount() == 2

	best, bestScore := -1, 0
	for i := range g.Columns {
		col := &g.Columns[i]
		if col.IsEmpty() {
			continue
		}
		if col.IsMarkerOnly() && !MarkerOnlyClaimable(g) {
			continue
		}
		s := EvaluateColumnForTaking(col, counts, targets, seat.Difficulty, twoPlayer)
		if best == -1 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best != -1 && seat.Difficulty == models.DifficultyExpert && bestScore < 30 {
		return -1
	}
	return best
}

// DecideAction returns reveal or take_column for the seat, after a simulated
// thinking delay. The delay is a pacing contract for perceived realism, not
// backpressure.
func (e *Evaluator) DecideAction(g *models.Game, seat *models.AISeat, actionsTaken int) string {
	cfg := ConfigFor(seat.Difficulty)

	delay := cfg.MinDelay
	if span := cfg.MaxDelay - cfg.MinDelay; span > 0 {
		delay += time.Duration(e.rng.Int63n(int64(span) + 1))
	}
	if seat.Difficulty == models.DifficultyExpert {
		delay += time.Duration(e.rng.Int63n(int64(time.Second)))
	}
	e.sleep(delay)

	counts := ColorCounts(g, seat.Name)
	targets := SummaryTargets(g, seat.Name)
	phase := ClassifyPhase(g)
	twoPlayer := g.SeatCount() == 2

	bestScore := -1
	bestTargetScore := -1
	for i := range g.Columns {
		col := &g.Columns[i]
		if col.IsEmpty() {
			continue
		}
		if col.IsMarkerOnly() && !MarkerOnlyClaimable(g) {
			continue
		}
		s := EvaluateColumnForTaking(col, counts, targets, seat.Difficulty, twoPlayer)
		if s > bestScore {
			bestScore = s
		}
		for _, c := range col.Cards {
			if targets[c.Color] && s > bestTargetScore {
				bestTargetScore = s
				break
			}
		}
	}
	if bestScore < 0 {
		// Nothing claimable; keep revealing.
		return ActionReveal
	}

	if seat.Difficulty != models.DifficultyExpert {
		if actionsTaken >= cfg.MaxRevealsBeforeTake {
			return ActionTakeColumn
		}
		if bestScore > 50 && float64(actionsTaken) >= cfg.PatienceFactor*float64(cfg.MaxRevealsBeforeTake) {
			return ActionTakeColumn
		}
		revealProb := cfg.BaseRevealProbability - 20*actionsTaken
		if revealProb < 10 {
			revealProb = 10
		}
		if e.rng.Intn(100) < revealProb {
			return ActionReveal
		}
		return ActionTakeColumn
	}

	maxReveals := float64(cfg.MaxRevealsBeforeTake) * strategyFactor(seat.Strategy)
	if float64(actionsTaken) >= maxReveals {
		return ActionTakeColumn
	}
	if (phase == PhaseLate || phase == PhaseEndgame) && cfg.RiskTolerance > 0.5 && bestScore > 50 {
		return ActionTakeColumn
	}
	if bestTargetScore > 40 {
		return ActionTakeColumn
	}

	takeProb := clamp(bestScore/2, 0, 35)
	takeProb += clamp(int(float64(actionsTaken)/maxReveals*30), 0, 30)
	switch phase {
	case PhaseMid:
		takeProb += 8
	case PhaseLate:
		takeProb += 15
	case PhaseEndgame:
		takeProb += 25
	}
	switch seat.Strategy {
	case models.StrategyAggressive:
		takeProb += 12
	case models.StrategyBalanced:
		takeProb += 6
	}
	takeProb += clamp(int(cfg.RiskTolerance*15), 0, 15)
	if takeProb > 90 {
		takeProb = 90
	}

	if e.rng.Intn(100) < takeProb {
		return ActionTakeColumn
	}
	return ActionReveal
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty selects an AI seat's pacing and aggressiveness configuration.
type Difficulty string

const (
	DifficultyBasic  Difficulty = "basic"
	DifficultyExpert Difficulty = "expert"
)

// Strategy is the per-seat style modifier applied on top of Expert difficulty.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyAggressive   Strategy = "aggressive"
)

// AISeat describes one computer-controlled participant slot.
type AISeat struct {
	Name       string     `json:"name"`
	Difficulty Difficulty `json:"difficulty"`
	Strategy   Strategy   `json:"strategy"`
}

// Replacement records a seat swap (human leaving for an AI, or a human
// taking over an AI seat).
type Replacement struct {
	Old string    `json:"old"`
	New string    `json:"new"`
	At  time.Time `json:"at"`
}

// Game is the central mutable aggregate for one match. It is the single
// source of truth: engine components receive it by reference, mutate it
// directly, and the caller persists it. Version is the optimistic lock
// counter owned by the storage layer and is not part of the serialized state.
type Game struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Version      int       `json:"-"`
	JoinCodeHash string    `json:"joinCodeHash,omitempty"`

	Players []string `json:"players"`
	AISeats []AISeat `json:"aiPlayers"`

	Columns []Column `json:"columns"`
	Deck    []Card   `json:"deck"`

	PlayerCollections CardLedger `json:"playerCollections"`
	WildCards         CardLedger `json:"wildCards"`
	SummaryCards      CardLedger `json:"summaryCards"`

	CurrentPlayerIndex      int      `json:"currentPlayerIndex"`
	CurrentRound            int      `json:"currentRound"`
	PlayersTakenColumn      []string `json:"playersTakenColumn"`
	TakenColumnIndexes      []int    `json:"takenColumnIndexes,omitempty"`
	PlayersEndRoundRevealed []string `json:"playersEndRoundRevealed"`
	IsFirstTurnOfRound      bool     `json:"isFirstTurnOfRound"`
	IsRoundCardRevealed     bool     `json:"isRoundCardRevealed"`

	IsFinished  bool           `json:"isFinished"`
	FinalScores map[string]int `json:"finalScores,omitempty"`
	Winners     []string       `json:"winner,omitempty"`

	// RevealedEndCard parks the end-of-round card once drawn so that card
	// conservation holds across the reveal.
	RevealedEndCard *Card `json:"revealedEndCard,omitempty"`

	ReplacedPlayers []Replacement `json:"replacedPlayers,omitempty"`

	LastActivity time.Time `json:"lastActivity"`

	// LastRoundEndAt drives the short cooling-off window during which no AI
	// action is attempted after an end-of-round reveal.
	LastRoundEndAt *time.Time `json:"lastRoundEndAt,omitempty"`
}

// NewGame builds an empty aggregate for the named match. Columns and deck are
// populated later during preparation.
func NewGame(name string, players []string, aiSeats []AISeat) *Game {
	id, _ := uuid.NewRandom()
	return &Game{
		ID:                id,
		Name:              name,
		Players:           players,
		AISeats:           aiSeats,
		PlayerCollections: NewCardLedger(),
		WildCards:         NewCardLedger(),
		SummaryCards:      NewCardLedger(),
		CurrentRound:      1,
		LastActivity:      time.Now(),
	}
}

// SeatNames returns every participant id in turn order: humans first, then AI
// seats by name. CurrentPlayerIndex always indexes into this slice.
func (g *Game) SeatNames() []string {
	names := make([]string, 0, len(g.Players)+len(g.AISeats))
	names = append(names, g.Players...)
	for _, ai := range g.AISeats {
		names = append(names, ai.Name)
	}
	return names
}

// SeatCount returns the total number of participant slots.
func (g *Game) SeatCount() int {
	return len(g.Players) + len(g.AISeats)
}

// CurrentSeat returns the id of the seat whose turn it is, or "" if the index
// is out of range.
func (g *Game) CurrentSeat() string {
	seats := g.SeatNames()
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(seats) {
		return ""
	}
	return seats[g.CurrentPlayerIndex]
}

// AISeatByName returns the AI descriptor for the named seat, or nil if the
// seat is human or unknown.
func (g *Game) AISeatByName(name string) *AISeat {
	for i := range g.AISeats {
		if g.AISeats[i].Name == name {
			return &g.AISeats[i]
		}
	}
	return nil
}

// HasTakenColumn reports whether the seat already claimed a column this round.
func (g *Game) HasTakenColumn(name string) bool {
	for _, p := range g.PlayersTakenColumn {
		if p == name {
			return true
		}
	}
	return false
}

// MarkTakenColumn records the seat's claim, at most once per round.
func (g *Game) MarkTakenColumn(name string) {
	if !g.HasTakenColumn(name) {
		g.PlayersTakenColumn = append(g.PlayersTakenColumn, name)
	}
}

// AllSeatsTaken reports whether every participant has claimed a column this
// round.
func (g *Game) AllSeatsTaken() bool {
	return len(g.PlayersTakenColumn) >= g.SeatCount()
}

// HasEndRoundPending reports whether the seat still owes its one extra action
// after revealing the end-of-round card.
func (g *Game) HasEndRoundPending(name string) bool {
	for _, p := range g.PlayersEndRoundRevealed {
		if p == name {
			return true
		}
	}
	return false
}

// ConsumeEndRoundPending clears the seat's extra-action flag and reports
// whether it was set.
func (g *Game) ConsumeEndRoundPending(name string) bool {
	for i, p := range g.PlayersEndRoundRevealed {
		if p == name {
			g.PlayersEndRoundRevealed = append(g.PlayersEndRoundRevealed[:i], g.PlayersEndRoundRevealed[i+1:]...)
			return true
		}
	}
	return false
}

// Touch updates the last-activity timestamp.
func (g *Game) Touch() {
	g.LastActivity = time.Now()
}

// TotalCards counts every card the aggregate currently tracks: deck, columns,
// collections, wild holdings, summaries, and the parked end card.
func (g *Game) TotalCards() int {
	n := len(g.Deck)
	for i := range g.Columns {
		n += len(g.Columns[i].Cards)
	}
	n += g.PlayerCollections.TotalCards()
	n += g.WildCards.TotalCards()
	n += g.SummaryCards.TotalCards()
	if g.RevealedEndCard != nil {
		n++
	}
	return n
}

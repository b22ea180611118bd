// internal/game/turn.go
package game

import (
	"chameleon/internal/models"
)

// RevealOutcome reports the result of a card reveal. Illegal actions come
// back as Success=false with no mutation; the caller decides the messaging.
type RevealOutcome struct {
	Success                  bool         `json:"success"`
	Card                     *models.Card `json:"card,omitempty"`
	RoundEnded               bool         `json:"roundEnded,omitempty"`
	KeepTurn                 bool         `json:"keepTurn,omitempty"`
	MustPassTurn             bool         `json:"mustPassTurn,omitempty"`
	GoldenWildAdditionalCard *models.Card `json:"goldenWildAdditionalCard,omitempty"`
	GoldenWildEndRound       bool         `json:"goldenWildEndRound,omitempty"`
}

// TakeOutcome reports the result of a column take.
type TakeOutcome struct {
	Success     bool          `json:"success"`
	TakenCards  []models.Card `json:"takenCards,omitempty"`
	WildCards   []models.Card `json:"wildCards,omitempty"`
	NormalCards []models.Card `json:"normalCards,omitempty"`
}

// RevealCard pops the deck's front card onto the chosen column for the acting
// player. Preconditions are checked in order; the first failure returns an
// unsuccessful outcome without touching the aggregate.
//
// Revealing the end-of-round card parks it on the aggregate, flags the round
// as closing, and leaves the turn with the revealer for one more action. A
// golden wild chains exactly one extra draw into the same column.
func RevealCard(g *models.Game, playerID string, columnIndex int) RevealOutcome {
	if g.IsFinished || g.CurrentSeat() != playerID {
		return RevealOutcome{}
	}
	if g.HasTakenColumn(playerID) {
		return RevealOutcome{}
	}
	if columnIndex < 0 || columnIndex >= len(g.Columns) {
		return RevealOutcome{}
	}
	col := &g.Columns[columnIndex]
	if !col.HasRoom() {
		return RevealOutcome{}
	}
	if len(g.Deck) == 0 {
		return RevealOutcome{}
	}

	card := g.Deck[0]
	g.Deck = g.Deck[1:]
	g.Touch()

	if card.IsEndRound {
		parked := card
		g.RevealedEndCard = &parked
		g.IsRoundCardRevealed = true
		g.PlayersEndRoundRevealed = append(g.PlayersEndRoundRevealed, playerID)
		return RevealOutcome{Success: true, Card: &parked, RoundEnded: true, KeepTurn: true}
	}

	// A pending extra action (granted by revealing the end card) is consumed
	// by this reveal; the first action of a round also forces a pass.
	mustPass := g.ConsumeEndRoundPending(playerID) || g.IsFirstTurnOfRound

	col.Cards = append(col.Cards, card)
	revealed := card
	out := RevealOutcome{Success: true, Card: &revealed}

	if card.Color == models.ColorGoldenWild && len(g.Deck) > 0 && col.HasRoom() {
		extra := g.Deck[0]
		g.Deck = g.Deck[1:]
		if extra.IsEndRound {
			parked := extra
			g.RevealedEndCard = &parked
			g.IsRoundCardRevealed = true
			g.PlayersEndRoundRevealed = append(g.PlayersEndRoundRevealed, playerID)
			out.GoldenWildEndRound = true
			out.RoundEnded = true
			out.KeepTurn = true
		} else {
			col.Cards = append(col.Cards, extra)
			chained := extra
			out.GoldenWildAdditionalCard = &chained
		}
	}

	if mustPass && !out.RoundEnded {
		g.IsFirstTurnOfRound = false
		out.MustPassTurn = true
		AdvanceTurn(g)
	}
	return out
}

// TakeColumn removes every card from the chosen column into the acting
// player's holdings, splitting wilds from normal cards, and advances the turn.
func TakeColumn(g *models.Game, playerID string, columnIndex int) TakeOutcome {
	if g.IsFinished || g.CurrentSeat() != playerID {
		return TakeOutcome{}
	}
	if g.HasTakenColumn(playerID) {
		return TakeOutcome{}
	}
	if g.IsFirstTurnOfRound {
		return TakeOutcome{}
	}
	if columnIndex < 0 || columnIndex >= len(g.Columns) {
		return TakeOutcome{}
	}
	col := &g.Columns[columnIndex]
	if col.IsEmpty() {
		return TakeOutcome{}
	}
	// Once every seat has taken, the round-end resolver owns the board.
	if g.AllSeatsTaken() {
		return TakeOutcome{}
	}
	if col.IsMarkerOnly() && !MarkerOnlyClaimable(g) {
		return TakeOutcome{}
	}

	taken := col.Cards
	col.Cards = nil

	var wilds, normals []models.Card
	for _, c := range taken {
		if c.IsWild() {
			wilds = append(wilds, c)
		} else {
			normals = append(normals, c)
		}
	}
	g.WildCards.Append(playerID, wilds...)
	g.PlayerCollections.Append(playerID, normals...)
	g.MarkTakenColumn(playerID)
	g.TakenColumnIndexes = append(g.TakenColumnIndexes, columnIndex)
	g.Touch()

	AdvanceTurn(g)
	return TakeOutcome{Success: true, TakenCards: taken, WildCards: wilds, NormalCards: normals}
}

// AdvanceTurn rotates the current seat forward, skipping seats that already
// claimed a column, bounded at twice the seat count. Once the end card is out
// and every seat has taken, the rotation stops where it lands and round-end
// handling takes over. Index 0 is the fallback when no seat qualifies.
func AdvanceTurn(g *models.Game) {
	seats := g.SeatNames()
	n := len(seats)
	if n == 0 {
		return
	}
	next := g.CurrentPlayerIndex
	for i := 0; i < 2*n; i++ {
		next = (next + 1) % n
		if g.IsRoundCardRevealed && g.AllSeatsTaken() {
			g.CurrentPlayerIndex = next
			return
		}
		if !g.HasTakenColumn(seats[next]) {
			g.CurrentPlayerIndex = next
			return
		}
	}
	g.CurrentPlayerIndex = 0
}

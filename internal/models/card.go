// internal/models/card.go
package models

import (
	"fmt"
	"strings"
)

// Chameleon color tags. Exactly seven scoring colors exist; everything else
// (wilds, cotton, column markers, summary cards) is a special tag.
const (
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorPurple = "purple"
	ColorPink   = "pink"

	ColorWild       = "wild"
	ColorGoldenWild = "golden_wild"
	ColorCotton     = "cotton"

	ColorEndRound = "end_round"

	ColorBrownColumn  = "brown_column"
	greenColumnPrefix = "green_column_"
	summaryPrefix     = "summary_"
)

// ChameleonColors lists the seven scoring colors in canonical order.
var ChameleonColors = []string{
	ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorOrange, ColorPurple, ColorPink,
}

// Card is the immutable token all engine components operate on. Ownership
// moves between the deck, a column, and a player's collection; the fields
// never change after the card is dealt.
type Card struct {
	Color          string `json:"color"`
	IsEndRound     bool   `json:"isEndRound,omitempty"`
	IsCompensation bool   `json:"isCompensation,omitempty"`
}

// GreenColumnColor returns the per-column marker tag for column n, e.g.
// "green_column_0".
func GreenColumnColor(n int) string {
	return fmt.Sprintf("%s%d", greenColumnPrefix, n)
}

// SummaryColor returns the per-difficulty summary card tag, e.g. "summary_basic".
func SummaryColor(d Difficulty) string {
	return summaryPrefix + string(d)
}

// IsChameleon reports whether the card is one of the seven scoring colors.
func (c Card) IsChameleon() bool {
	for _, col := range ChameleonColors {
		if c.Color == col {
			return true
		}
	}
	return false
}

// IsWild reports whether the card is a wild or golden wild.
func (c Card) IsWild() bool {
	return c.Color == ColorWild || c.Color == ColorGoldenWild
}

// IsCotton reports whether the card is a cotton bonus card.
func (c Card) IsCotton() bool {
	return c.Color == ColorCotton
}

// IsColumnMarker reports whether the card identifies a column across rounds
// (green_column_<n> or brown_column) rather than scoring points.
func (c Card) IsColumnMarker() bool {
	return c.Color == ColorBrownColumn || strings.HasPrefix(c.Color, greenColumnPrefix)
}

// IsGreenColumnMarker reports whether the card is a two-player green marker.
func (c Card) IsGreenColumnMarker() bool {
	return strings.HasPrefix(c.Color, greenColumnPrefix)
}

// IsSummary reports whether the card is a per-difficulty summary card.
func (c Card) IsSummary() bool {
	return strings.HasPrefix(c.Color, summaryPrefix)
}

// SummaryDifficulty returns the difficulty a summary card belongs to, or ""
// if the card is not a summary card.
func (c Card) SummaryDifficulty() Difficulty {
	if !c.IsSummary() {
		return ""
	}
	return Difficulty(strings.TrimPrefix(c.Color, summaryPrefix))
}

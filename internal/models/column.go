// internal/models/column.go
package models

// Column is a shared claimable pool of cards. A column normally holds at most
// 3 non-marker cards; a golden wild raises the cap to 4.
type Column struct {
	Cards []Card `json:"cards"`
}

// ChameleonCount returns the number of cards that are not column markers.
// This is the count the slot cap applies to.
func (c *Column) ChameleonCount() int {
	n := 0
	for _, card := range c.Cards {
		if !card.IsColumnMarker() {
			n++
		}
	}
	return n
}

// HasGoldenWild reports whether the column contains a golden wild card.
func (c *Column) HasGoldenWild() bool {
	for _, card := range c.Cards {
		if card.Color == ColorGoldenWild {
			return true
		}
	}
	return false
}

// Cap returns the maximum number of non-marker cards the column may hold.
func (c *Column) Cap() int {
	if c.HasGoldenWild() {
		return 4
	}
	return 3
}

// HasRoom reports whether another non-marker card fits in the column.
func (c *Column) HasRoom() bool {
	return c.ChameleonCount() < c.Cap()
}

// IsEmpty reports whether the column holds no cards at all.
func (c *Column) IsEmpty() bool {
	return len(c.Cards) == 0
}

// IsMarkerOnly reports whether the column is non-empty and contains nothing
// but column markers. Such a column is normally not claimable.
func (c *Column) IsMarkerOnly() bool {
	if len(c.Cards) == 0 {
		return false
	}
	for _, card := range c.Cards {
		if !card.IsColumnMarker() {
			return false
		}
	}
	return true
}

// HasMarker reports whether the column contains at least one marker card.
func (c *Column) HasMarker() bool {
	for _, card := range c.Cards {
		if card.IsColumnMarker() {
			return true
		}
	}
	return false
}

// ContainsEndRound reports whether the end-of-round card sits in the column.
func (c *Column) ContainsEndRound() bool {
	for _, card := range c.Cards {
		if card.IsEndRound {
			return true
		}
	}
	return false
}

// DistinctChameleonColors returns the number of distinct scoring colors
// present in the column.
func (c *Column) DistinctChameleonColors() int {
	seen := map[string]bool{}
	for _, card := range c.Cards {
		if card.IsChameleon() {
			seen[card.Color] = true
		}
	}
	return len(seen)
}

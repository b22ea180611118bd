// internal/models/ledger.go
package models

import "encoding/json"

// CardLedger is an ordered-key mapping from player id to a sequence of cards.
// It replaces the storage layer's loose map-or-object representation with a
// single explicit container used uniformly for collections, wild cards, and
// summary cards. Key order is insertion order and survives JSON round-trips.
type CardLedger struct {
	keys  []string
	cards map[string][]Card
}

type ledgerEntry struct {
	Player string `json:"player"`
	Cards  []Card `json:"cards"`
}

// NewCardLedger returns an empty ledger.
func NewCardLedger() CardLedger {
	return CardLedger{cards: make(map[string][]Card)}
}

// Players returns the keys in insertion order.
func (l *CardLedger) Players() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Get returns the cards held under player, or nil if the key is absent.
func (l *CardLedger) Get(player string) []Card {
	if l.cards == nil {
		return nil
	}
	return l.cards[player]
}

// Has reports whether the player has an entry (possibly empty).
func (l *CardLedger) Has(player string) bool {
	if l.cards == nil {
		return false
	}
	_, ok := l.cards[player]
	return ok
}

// Set replaces the player's cards, creating the key if needed.
func (l *CardLedger) Set(player string, cards []Card) {
	if l.cards == nil {
		l.cards = make(map[string][]Card)
	}
	if _, ok := l.cards[player]; !ok {
		l.keys = append(l.keys, player)
	}
	l.cards[player] = cards
}

// Append adds cards to the player's sequence, creating the key if needed.
func (l *CardLedger) Append(player string, cards ...Card) {
	l.Set(player, append(l.Get(player), cards...))
}

// Remove deletes the player's entry entirely.
func (l *CardLedger) Remove(player string) {
	if l.cards == nil {
		return
	}
	if _, ok := l.cards[player]; !ok {
		return
	}
	delete(l.cards, player)
	for i, k := range l.keys {
		if k == player {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			break
		}
	}
}

// Rename moves the cards held under old to the key next, keeping the ledger
// position of the old key. Used when a seat is replaced mid-game.
func (l *CardLedger) Rename(old, next string) {
	if l.cards == nil {
		return
	}
	cards, ok := l.cards[old]
	if !ok {
		return
	}
	delete(l.cards, old)
	l.cards[next] = cards
	for i, k := range l.keys {
		if k == old {
			l.keys[i] = next
			break
		}
	}
}

// Filter keeps only the cards for which keep returns true, across every key.
func (l *CardLedger) Filter(keep func(Card) bool) {
	for _, k := range l.keys {
		kept := l.cards[k][:0:0]
		for _, c := range l.cards[k] {
			if keep(c) {
				kept = append(kept, c)
			}
		}
		l.cards[k] = kept
	}
}

// TotalCards returns the number of cards across all keys.
func (l *CardLedger) TotalCards() int {
	n := 0
	for _, cs := range l.cards {
		n += len(cs)
	}
	return n
}

// MarshalJSON encodes the ledger as an ordered array of {player, cards}
// entries so key order is preserved in storage.
func (l CardLedger) MarshalJSON() ([]byte, error) {
	entries := make([]ledgerEntry, 0, len(l.keys))
	for _, k := range l.keys {
		entries = append(entries, ledgerEntry{Player: k, Cards: l.cards[k]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the ordered-array form produced by MarshalJSON.
func (l *CardLedger) UnmarshalJSON(data []byte) error {
	var entries []ledgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.keys = nil
	l.cards = make(map[string][]Card, len(entries))
	for _, e := range entries {
		l.keys = append(l.keys, e.Player)
		l.cards[e.Player] = e.Cards
	}
	return nil
}

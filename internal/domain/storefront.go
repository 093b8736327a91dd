package domain

import "time"

// Selection is the highlighted catalog denomination. At most one value is
// selected; selecting again replaces it.
type Selection struct {
	Value int  `json:"value"`
	Set   bool `json:"set"`
}

// Select returns a selection of value (last write wins).
func (s Selection) Select(value int) Selection {
	return Selection{Value: value, Set: true}
}

// Selected returns the highlighted denomination, if any.
func (s Selection) Selected() (int, bool) {
	return s.Value, s.Set
}

// IsSelected reports whether value is the highlighted denomination.
func (s Selection) IsSelected(value int) bool {
	return s.Set && s.Value == value
}

// Storefront holds the state of a single visitor session.
// It is owned by the sequencer; readers receive copies.
type Storefront struct {
	SessionID string    `json:"session_id"`
	Cart      Cart      `json:"cart"`
	Selection Selection `json:"selection"`
	LastSeen  time.Time `json:"last_seen"`
	LastSeq   uint64    `json:"last_seq"`
}

// NewStorefront creates an empty session state.
func NewStorefront(sessionID string, ids IDSource) *Storefront {
	cart := NewCart()
	if ids != nil {
		cart = NewCartWithIDs(ids)
	}
	return &Storefront{
		SessionID: sessionID,
		Cart:      cart,
	}
}

package domain

import "context"

// CartManager is the cart contract the catalog forwards add-to-cart intents to.
type CartManager interface {
	Add(ctx context.Context, sessionID string, value int) (CartView, error)
	SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) (CartView, error)
	Remove(ctx context.Context, sessionID, lineID string) (CartView, error)
	View(sessionID string) CartView
}

// EventJournal persists sequenced events so state can be replayed.
type EventJournal interface {
	SaveEvent(ctx context.Context, entry *JournalEntry) error
	LoadEvents(ctx context.Context) ([]JournalEntry, error)
	DeleteSessions(ctx context.Context, sessionIDs []string) error
}

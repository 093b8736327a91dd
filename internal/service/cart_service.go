package service

import (
	"context"
	"fmt"

	"giftshop/internal/domain"
	"giftshop/internal/event"
)

// StateEngine is the part of the sequencer the services drive.
type StateEngine interface {
	Submit(ctx context.Context, ev event.Event) (domain.Storefront, error)
	Snapshot(sessionID string) (domain.Storefront, bool)
}

// CartService exposes the cart manager contract per session.
// All changes go through the engine; reads use snapshots.
type CartService struct {
	engine StateEngine
}

var _ domain.CartManager = (*CartService)(nil)

// NewCartService creates a new CartService instance
func NewCartService(engine StateEngine) *CartService {
	return &CartService{engine: engine}
}

// Add adds one unit of value to the session cart.
func (s *CartService) Add(ctx context.Context, sessionID string, value int) (domain.CartView, error) {
	state, err := s.engine.Submit(ctx, &event.AddToCartEvent{
		BaseEvent: event.BaseEvent{SessionID: sessionID},
		Value:     value,
	})
	if err != nil {
		return domain.CartView{}, err
	}
	return domain.NewCartView(state.Cart), nil
}

// SetQuantity overwrites a line quantity; quantity <= 0 removes the line.
// Quantities above domain.MaxQuantity are rejected with ErrInvalidQuantity.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) (domain.CartView, error) {
	if quantity > domain.MaxQuantity {
		return domain.CartView{}, fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidQuantity, quantity, domain.MaxQuantity)
	}
	state, err := s.engine.Submit(ctx, &event.SetQuantityEvent{
		BaseEvent: event.BaseEvent{SessionID: sessionID},
		LineID:    lineID,
		Quantity:  quantity,
	})
	if err != nil {
		return domain.CartView{}, err
	}
	return domain.NewCartView(state.Cart), nil
}

// Remove deletes a line. Unknown ids leave the cart unchanged.
func (s *CartService) Remove(ctx context.Context, sessionID, lineID string) (domain.CartView, error) {
	state, err := s.engine.Submit(ctx, &event.RemoveLineEvent{
		BaseEvent: event.BaseEvent{SessionID: sessionID},
		LineID:    lineID,
	})
	if err != nil {
		return domain.CartView{}, err
	}
	return domain.NewCartView(state.Cart), nil
}

// View returns the current cart of a session; unknown sessions are empty.
func (s *CartService) View(sessionID string) domain.CartView {
	state, ok := s.engine.Snapshot(sessionID)
	if !ok {
		return domain.NewCartView(domain.Cart{})
	}
	return domain.NewCartView(state.Cart)
}

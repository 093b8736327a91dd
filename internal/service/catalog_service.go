package service

import (
	"context"
	"fmt"

	"giftshop/internal/domain"
	"giftshop/internal/event"
)

// CatalogService serves the denomination list, the highlighted
// denomination and add-to-cart intents.
type CatalogService struct {
	catalog *domain.Catalog
	engine  StateEngine
	cart    domain.CartManager
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(catalog *domain.Catalog, engine StateEngine, cart domain.CartManager) *CatalogService {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	return &CatalogService{catalog: catalog, engine: engine, cart: cart}
}

// Entries returns the catalog in display order.
func (s *CatalogService) Entries() []domain.CatalogEntry {
	return s.catalog.Entries()
}

// Validate reports domain.ErrUnknownDenomination for values outside the catalog.
func (s *CatalogService) Validate(value int) error {
	if !s.catalog.Contains(value) {
		return fmt.Errorf("%w: %d", domain.ErrUnknownDenomination, value)
	}
	return nil
}

// SelectDenomination highlights value for the session. Last write wins.
func (s *CatalogService) SelectDenomination(ctx context.Context, sessionID string, value int) (domain.Selection, error) {
	state, err := s.engine.Submit(ctx, &event.SelectDenominationEvent{
		BaseEvent: event.BaseEvent{SessionID: sessionID},
		Value:     value,
	})
	if err != nil {
		return domain.Selection{}, err
	}
	return state.Selection, nil
}

// Selection returns the highlighted denomination of a session.
func (s *CatalogService) Selection(sessionID string) domain.Selection {
	state, _ := s.engine.Snapshot(sessionID)
	return state.Selection
}

// AddToCart forwards an add-to-cart intent to the cart manager.
func (s *CatalogService) AddToCart(ctx context.Context, sessionID string, value int) (domain.CartView, error) {
	return s.cart.Add(ctx, sessionID, value)
}

// CheckoutLabel returns the payment button text and whether it is enabled.
// The button stays disabled until a denomination is highlighted.
func CheckoutLabel(sel domain.Selection) (string, bool) {
	value, ok := sel.Selected()
	if !ok {
		return "Select a denomination", false
	}
	return fmt.Sprintf("Proceed to payment (%s)", domain.FormatUSD(domain.Price(value))), true
}

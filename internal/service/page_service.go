package service

import (
	"context"
	"sync"

	"giftshop/internal/domain"
	"giftshop/internal/event"
)

// CatalogItemView is a catalog card as rendered on the page.
type CatalogItemView struct {
	Value    int    `json:"value"`
	Display  string `json:"display"`
	Popular  bool   `json:"popular"`
	Selected bool   `json:"selected"`
	InCart   int    `json:"in_cart"`
}

// PageView is everything the storefront page template needs.
type PageView struct {
	Content         *domain.Content
	HeroImage       string
	Catalog         []CatalogItemView
	Cart            domain.CartView
	Selection       domain.Selection
	CheckoutLabel   string
	CheckoutEnabled bool
	MaxQuantity     int
}

// PageService assembles the storefront page for a session.
type PageService struct {
	catalog *domain.Catalog
	engine  StateEngine
	content *domain.Content

	mu        sync.RWMutex
	heroImage string
}

// NewPageService creates a new PageService instance
func NewPageService(catalog *domain.Catalog, engine StateEngine, content *domain.Content) *PageService {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	if content == nil {
		content = &domain.Content{}
	}
	return &PageService{
		catalog:   catalog,
		engine:    engine,
		content:   content,
		heroImage: content.Hero.Image,
	}
}

// SetHeroImage replaces the hero image URL, e.g. once a resized copy is ready.
func (s *PageService) SetHeroImage(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroImage = url
}

// HeroImage returns the hero image URL currently in use.
func (s *PageService) HeroImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heroImage
}

// Content returns the static marketing copy.
func (s *PageService) Content() *domain.Content {
	return s.content
}

// Build touches the session and renders its page model.
func (s *PageService) Build(ctx context.Context, sessionID string) (PageView, error) {
	state, err := s.engine.Submit(ctx, &event.TouchEvent{
		BaseEvent: event.BaseEvent{SessionID: sessionID},
	})
	if err != nil {
		return PageView{}, err
	}
	return s.render(state), nil
}

func (s *PageService) render(state domain.Storefront) PageView {
	entries := s.catalog.Entries()
	items := make([]CatalogItemView, 0, len(entries))
	for _, e := range entries {
		item := CatalogItemView{
			Value:    e.Value,
			Display:  domain.FormatUSD(domain.Price(e.Value)),
			Popular:  e.Popular,
			Selected: state.Selection.IsSelected(e.Value),
		}
		if line, ok := state.Cart.LineFor(e.Value); ok {
			item.InCart = line.Quantity
		}
		items = append(items, item)
	}

	label, enabled := CheckoutLabel(state.Selection)
	return PageView{
		Content:         s.content,
		HeroImage:       s.HeroImage(),
		Catalog:         items,
		Cart:            domain.NewCartView(state.Cart),
		Selection:       state.Selection,
		CheckoutLabel:   label,
		CheckoutEnabled: enabled,
		MaxQuantity:     domain.MaxQuantity,
	}
}

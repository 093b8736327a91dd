package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"giftshop/internal/domain"
	"giftshop/internal/engine"
)

func newEngine(t *testing.T) *engine.Sequencer {
	t.Helper()
	n := 0
	seq := engine.NewSequencer(engine.Options{
		IDs: func() string {
			n++
			return fmt.Sprintf("line-%d", n)
		},
		DumpFile: t.TempDir() + "/dump.json",
	})
	ctx, cancel := context.WithCancel(context.Background())
	go seq.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-seq.Done()
	})
	return seq
}

func TestCartService_AddUpdateRemove(t *testing.T) {
	carts := NewCartService(newEngine(t))
	ctx := context.Background()

	view, err := carts.Add(ctx, "s1", 25)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	carts.Add(ctx, "s1", 50)
	view, _ = carts.Add(ctx, "s1", 25)

	if view.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", view.TotalItems)
	}
	if view.TotalText != "$100" {
		t.Errorf("expected $100, got %s", view.TotalText)
	}
	if len(view.Lines) != 2 || view.Lines[0].Value != 25 || view.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", view.Lines)
	}

	id := view.Lines[0].ID
	view, _ = carts.SetQuantity(ctx, "s1", id, 5)
	if view.Lines[0].Quantity != 5 || view.Lines[0].TotalText != "$125" {
		t.Errorf("unexpected line after update: %+v", view.Lines[0])
	}

	view, _ = carts.SetQuantity(ctx, "s1", id, 0)
	if len(view.Lines) != 1 || view.Lines[0].Value != 50 {
		t.Errorf("quantity 0 should remove the line: %+v", view.Lines)
	}

	view, _ = carts.Remove(ctx, "s1", view.Lines[0].ID)
	if !view.IsEmpty() || view.TotalItems != 0 {
		t.Errorf("cart should be empty: %+v", view)
	}
	if !view.TotalPrice.IsZero() {
		t.Errorf("empty cart total should be 0, got %s", view.TotalPrice)
	}
}

func TestCartService_ViewUnknownSession(t *testing.T) {
	carts := NewCartService(newEngine(t))

	view := carts.View("nobody")
	if !view.IsEmpty() || view.TotalText != "$0" {
		t.Errorf("unknown session should have an empty cart, got %+v", view)
	}
}

func TestCartService_QuantityLimit(t *testing.T) {
	carts := NewCartService(newEngine(t))
	ctx := context.Background()

	view, _ := carts.Add(ctx, "s1", 25)
	id := view.Lines[0].ID

	if _, err := carts.SetQuantity(ctx, "s1", id, math.MaxInt); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if got := carts.View("s1"); got.TotalItems != 1 {
		t.Errorf("rejected update must not change the cart: %+v", got)
	}

	carts.SetQuantity(ctx, "s1", id, domain.MaxQuantity)
	view, err := carts.Add(ctx, "s1", 25)
	if err != nil {
		t.Fatalf("Add at the cap failed: %v", err)
	}
	if view.TotalItems != domain.MaxQuantity {
		t.Errorf("expected %d items, got %d", domain.MaxQuantity, view.TotalItems)
	}
}

func TestCartService_StoppedEngine(t *testing.T) {
	seq := engine.NewSequencer(engine.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go seq.Run(ctx)
	cancel()
	<-seq.Done()

	_, err := NewCartService(seq).Add(context.Background(), "s1", 25)
	if !errors.Is(err, domain.ErrSequencerStopped) {
		t.Errorf("expected ErrSequencerStopped, got %v", err)
	}
}

func TestCatalogService_Entries(t *testing.T) {
	seq := newEngine(t)
	catalog := NewCatalogService(nil, seq, NewCartService(seq))

	entries := catalog.Entries()
	want := []int{25, 50, 100, 200, 500}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, v := range want {
		if entries[i].Value != v {
			t.Errorf("entry %d: expected %d, got %d", i, v, entries[i].Value)
		}
	}
}

func TestCatalogService_Validate(t *testing.T) {
	catalog := NewCatalogService(nil, nil, nil)

	if err := catalog.Validate(100); err != nil {
		t.Errorf("100 should be valid: %v", err)
	}
	if err := catalog.Validate(30); !errors.Is(err, domain.ErrUnknownDenomination) {
		t.Errorf("expected ErrUnknownDenomination, got %v", err)
	}
}

func TestCatalogService_SelectLastWriteWins(t *testing.T) {
	seq := newEngine(t)
	catalog := NewCatalogService(nil, seq, NewCartService(seq))
	ctx := context.Background()

	catalog.SelectDenomination(ctx, "s1", 25)
	sel, err := catalog.SelectDenomination(ctx, "s1", 200)
	if err != nil {
		t.Fatalf("SelectDenomination failed: %v", err)
	}
	if !sel.IsSelected(200) || sel.IsSelected(25) {
		t.Errorf("expected only 200 selected, got %+v", sel)
	}
	if got := catalog.Selection("s1"); !got.IsSelected(200) {
		t.Errorf("snapshot selection mismatch: %+v", got)
	}
	if got := catalog.Selection("other"); got.Set {
		t.Errorf("other session should have no selection: %+v", got)
	}
}

func TestCatalogService_AddToCartForwards(t *testing.T) {
	seq := newEngine(t)
	carts := NewCartService(seq)
	catalog := NewCatalogService(nil, seq, carts)
	ctx := context.Background()

	catalog.AddToCart(ctx, "s1", 500)
	view, err := catalog.AddToCart(ctx, "s1", 500)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if view.TotalItems != 2 || view.TotalText != "$1000" {
		t.Errorf("unexpected view: %+v", view)
	}
	if carts.View("s1").TotalItems != 2 {
		t.Error("cart manager should see the forwarded adds")
	}
}

func TestCheckoutLabel(t *testing.T) {
	label, enabled := CheckoutLabel(domain.Selection{})
	if enabled {
		t.Error("checkout should be disabled without a selection")
	}
	if label == "" {
		t.Error("label should not be empty")
	}

	label, enabled = CheckoutLabel(domain.Selection{}.Select(50))
	if !enabled || label != "Proceed to payment ($50)" {
		t.Errorf("unexpected label %q (enabled=%v)", label, enabled)
	}
}

func TestPageService_Build(t *testing.T) {
	seq := newEngine(t)
	carts := NewCartService(seq)
	catalog := NewCatalogService(nil, seq, carts)
	content := &domain.Content{Brand: "Gift", Hero: domain.Hero{Image: "/img/hero.jpg"}}
	pages := NewPageService(nil, seq, content)
	ctx := context.Background()

	carts.Add(ctx, "s1", 100)
	carts.Add(ctx, "s1", 100)
	catalog.SelectDenomination(ctx, "s1", 50)

	page, err := pages.Build(ctx, "s1")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if page.HeroImage != "/img/hero.jpg" {
		t.Errorf("unexpected hero image %s", page.HeroImage)
	}
	if len(page.Catalog) != 5 {
		t.Fatalf("expected 5 catalog items, got %d", len(page.Catalog))
	}

	byValue := make(map[int]CatalogItemView)
	for _, item := range page.Catalog {
		byValue[item.Value] = item
	}
	if !byValue[50].Selected || byValue[100].Selected {
		t.Error("only 50 should be selected")
	}
	if !byValue[50].Popular || !byValue[100].Popular || byValue[25].Popular {
		t.Error("popular flags mismatch")
	}
	if byValue[100].InCart != 2 || byValue[25].InCart != 0 {
		t.Errorf("in-cart counts mismatch: %+v", byValue)
	}
	if byValue[500].Display != "$500" {
		t.Errorf("unexpected display %s", byValue[500].Display)
	}
	if page.Cart.TotalText != "$200" {
		t.Errorf("expected $200, got %s", page.Cart.TotalText)
	}
	if !page.CheckoutEnabled || page.CheckoutLabel != "Proceed to payment ($50)" {
		t.Errorf("unexpected checkout %q/%v", page.CheckoutLabel, page.CheckoutEnabled)
	}

	pages.SetHeroImage("/assets/hero-1200.jpg")
	page, _ = pages.Build(ctx, "s2")
	if page.HeroImage != "/assets/hero-1200.jpg" {
		t.Errorf("hero image not replaced: %s", page.HeroImage)
	}
	if page.CheckoutEnabled || !page.Cart.IsEmpty() {
		t.Error("fresh session should have no selection and an empty cart")
	}
}

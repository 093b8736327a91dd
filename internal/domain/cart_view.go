package domain

import "github.com/shopspring/decimal"

// CartLineView is a display-ready cart line.
type CartLineView struct {
	ID        string          `json:"id"`
	Value     int             `json:"value"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Display   string          `json:"display"`         // "$25"
	TotalText string          `json:"line_total_text"` // "$50"
}

// CartView is the serialisable projection of a Cart.
type CartView struct {
	Lines      []CartLineView  `json:"lines"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TotalText  string          `json:"total_price_text"`
}

// NewCartView projects a cart for rendering and the JSON API.
func NewCartView(c Cart) CartView {
	lines := c.Lines()
	view := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	for _, l := range lines {
		total := l.LineTotal()
		view.Lines = append(view.Lines, CartLineView{
			ID:        l.ID,
			Value:     l.Value,
			Quantity:  l.Quantity,
			LineTotal: total,
			Display:   FormatUSD(Price(l.Value)),
			TotalText: FormatUSD(total),
		})
	}
	view.TotalText = FormatUSD(view.TotalPrice)
	return view
}

// IsEmpty reports whether the view has no lines.
func (v CartView) IsEmpty() bool {
	return len(v.Lines) == 0
}

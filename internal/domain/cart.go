package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one distinct denomination in the cart.
type CartLine struct {
	ID       string `json:"id"`
	Value    int    `json:"value"`
	Quantity int    `json:"quantity"`
}

// LineTotal returns value × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return Price(l.Value).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// MaxQuantity is the largest quantity a single line can hold.
const MaxQuantity = 999

// IDSource generates line identifiers.
type IDSource func() string

// Cart is an immutable cart state. Every operation returns a new Cart and
// leaves the receiver untouched, so a Cart value can be shared freely
// between goroutines once built.
//
// Lines are keyed by denomination, which makes "one line per
// denomination" structural; order keeps insertion order for display.
type Cart struct {
	order []int            // denominations in insertion order
	lines map[int]CartLine // denomination -> line
	ids   map[string]int   // line id -> denomination
	newID IDSource
}

// NewCart returns an empty cart with uuid line ids.
func NewCart() Cart {
	return NewCartWithIDs(uuid.NewString)
}

// NewCartWithIDs returns an empty cart using src for new line ids.
func NewCartWithIDs(src IDSource) Cart {
	return Cart{newID: src}
}

// Add increments the line for value, or appends a new line with quantity 1.
// A line already at MaxQuantity stays there.
func (c Cart) Add(value int) Cart {
	return c.AddWithID(value, "")
}

// AddWithID is Add with a caller-chosen id for a newly created line.
// The id is ignored when a line for value already exists. An empty id
// (or one already in use) is replaced by a generated one.
func (c Cart) AddWithID(value int, id string) Cart {
	next := c.clone()
	if line, ok := next.lines[value]; ok {
		if line.Quantity < MaxQuantity {
			line.Quantity++
		}
		next.lines[value] = line
		return next
	}

	if _, taken := next.ids[id]; id == "" || taken {
		id = next.generateID()
	}
	next.lines[value] = CartLine{ID: id, Value: value, Quantity: 1}
	next.ids[id] = value
	next.order = append(next.order, value)
	return next
}

// SetQuantity overwrites the quantity of line id, capped at MaxQuantity.
// A non-positive quantity removes the line. An unknown id leaves the cart
// unchanged.
func (c Cart) SetQuantity(id string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(id)
	}
	value, ok := c.ids[id]
	if !ok {
		return c
	}
	next := c.clone()
	line := next.lines[value]
	line.Quantity = min(quantity, MaxQuantity)
	next.lines[value] = line
	return next
}

// Remove deletes line id. An unknown id leaves the cart unchanged.
func (c Cart) Remove(id string) Cart {
	value, ok := c.ids[id]
	if !ok {
		return c
	}
	next := c.clone()
	delete(next.lines, value)
	delete(next.ids, id)
	next.order = slices.DeleteFunc(next.order, func(v int) bool { return v == value })
	return next
}

// TotalPrice returns the sum of value × quantity over all lines.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalItems returns the sum of quantities over all lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Lines returns the lines in insertion order.
func (c Cart) Lines() []CartLine {
	out := make([]CartLine, 0, len(c.order))
	for _, v := range c.order {
		out = append(out, c.lines[v])
	}
	return out
}

// Line returns the line with the given id.
func (c Cart) Line(id string) (CartLine, bool) {
	value, ok := c.ids[id]
	if !ok {
		return CartLine{}, false
	}
	return c.lines[value], true
}

// LineFor returns the line holding a denomination.
func (c Cart) LineFor(value int) (CartLine, bool) {
	line, ok := c.lines[value]
	return line, ok
}

// Has reports whether a line with id exists.
func (c Cart) Has(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// Len returns the number of distinct denominations.
func (c Cart) Len() int {
	return len(c.order)
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// VerifyInvariant panics if the internal indexes disagree or a line
// quantity is outside [1, MaxQuantity].
func (c Cart) VerifyInvariant() {
	if len(c.order) != len(c.lines) || len(c.lines) != len(c.ids) {
		panic(fmt.Sprintf("CART_INVARIANT_INDEX_SIZE: order=%d lines=%d ids=%d",
			len(c.order), len(c.lines), len(c.ids)))
	}

	seen := make(map[int]struct{}, len(c.order))
	for _, v := range c.order {
		if _, dup := seen[v]; dup {
			panic(fmt.Sprintf("CART_INVARIANT_DUPLICATE_DENOMINATION: %d", v))
		}
		seen[v] = struct{}{}

		line, ok := c.lines[v]
		if !ok || line.Value != v {
			panic(fmt.Sprintf("CART_INVARIANT_MISSING_LINE: %d", v))
		}
		if line.Quantity <= 0 || line.Quantity > MaxQuantity {
			panic(fmt.Sprintf("CART_INVARIANT_QUANTITY_RANGE: %s = %d", line.ID, line.Quantity))
		}
		if c.ids[line.ID] != v {
			panic(fmt.Sprintf("CART_INVARIANT_ID_DRIFT: %s", line.ID))
		}
	}
}

// MarshalJSON encodes the cart as its ordered lines.
func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines []CartLine `json:"lines"`
	}{Lines: c.Lines()})
}

func (c Cart) clone() Cart {
	next := Cart{
		order: make([]int, len(c.order), len(c.order)+1),
		lines: make(map[int]CartLine, len(c.lines)+1),
		ids:   make(map[string]int, len(c.ids)+1),
		newID: c.newID,
	}
	copy(next.order, c.order)
	maps.Copy(next.lines, c.lines)
	maps.Copy(next.ids, c.ids)
	return next
}

func (c Cart) generateID() string {
	gen := c.newID
	if gen == nil {
		gen = uuid.NewString
	}
	for {
		id := gen()
		if _, taken := c.ids[id]; id != "" && !taken {
			return id
		}
	}
}

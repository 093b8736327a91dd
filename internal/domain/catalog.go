package domain

// CatalogEntry is a purchasable gift card denomination (USD).
type CatalogEntry struct {
	Value   int  `json:"value"`
	Popular bool `json:"popular"`
}

// defaultEntries is the fixed storefront catalog.
var defaultEntries = [...]CatalogEntry{
	{Value: 25, Popular: false},
	{Value: 50, Popular: true},
	{Value: 100, Popular: true},
	{Value: 200, Popular: false},
	{Value: 500, Popular: false},
}

// Catalog is the closed set of denominations offered by the store.
// It is immutable after construction.
type Catalog struct {
	entries []CatalogEntry
	values  map[int]struct{}
}

// DefaultCatalog returns the storefront catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultEntries[:])
}

// NewCatalog builds a catalog from entries. Duplicate values keep the first entry.
func NewCatalog(entries []CatalogEntry) *Catalog {
	c := &Catalog{
		entries: make([]CatalogEntry, 0, len(entries)),
		values:  make(map[int]struct{}, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.values[e.Value]; dup {
			continue
		}
		c.values[e.Value] = struct{}{}
		c.entries = append(c.entries, e)
	}
	return c
}

// Entries returns a copy of the catalog in display order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether value is an offered denomination.
func (c *Catalog) Contains(value int) bool {
	_, ok := c.values[value]
	return ok
}

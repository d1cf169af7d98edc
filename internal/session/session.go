// Package session holds the per-session view state the voice engine
// classifies against: the products on screen, the active page and the
// signed-in user.
package session

import (
	"slices"
	"strings"
	"sync"
)

// Page names the view the shopper is currently looking at.
type Page string

const (
	PageHome     Page = "home"
	PageProducts Page = "products"
	PageProduct  Page = "product"
	PageCart     Page = "cart"
	PageCheckout Page = "checkout"
	PageOrders   Page = "orders"
	PageLogin    Page = "login"
)

// Product is the summary projection of a catalog product. The engine never
// depends on any other catalog field.
type Product struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Price    float64  `json:"price" yaml:"price"`
	Rating   float64  `json:"rating" yaml:"rating"`
	Category string   `json:"category" yaml:"category"`
	Sizes    []string `json:"sizes,omitempty" yaml:"sizes"`
	Colors   []string `json:"colors,omitempty" yaml:"colors"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords"`
}

// Snapshot is an immutable copy of a Context taken at one instant.
type Snapshot struct {
	Products    []Product
	Category    string
	SearchQuery string
	Page        Page
	OnCheckout  bool
	UserID      string
}

// Authenticated reports whether a user is signed in.
func (s Snapshot) Authenticated() bool { return s.UserID != "" }

// Context is the mutable session state. Products keep display order, which
// ordinal references ("the second one") depend on.
type Context struct {
	mu          sync.RWMutex
	products    []Product
	category    string
	searchQuery string
	page        Page
	onCheckout  bool
	userID      string
}

// New returns an empty context on the home page.
func New() *Context {
	return &Context{page: PageHome}
}

// SetProducts replaces the working set along with the listing that produced it.
func (c *Context) SetProducts(products []Product, category, searchQuery string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = slices.Clone(products)
	c.category = category
	c.searchQuery = searchQuery
}

// SetPage records the active view and whether it is part of checkout.
func (c *Context) SetPage(page Page, onCheckout bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.onCheckout = onCheckout
}

// SetUser records the signed-in user. An empty id signs the user out.
func (c *Context) SetUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// Snapshot copies the current state.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Products:    slices.Clone(c.products),
		Category:    c.category,
		SearchQuery: c.searchQuery,
		Page:        c.page,
		OnCheckout:  c.onCheckout,
		UserID:      c.userID,
	}
}

// At returns the product at a zero-based position; -1 addresses the last one.
func (s Snapshot) At(position int) (Product, bool) {
	if position < 0 {
		position = len(s.Products) + position
	}
	if position < 0 || position >= len(s.Products) {
		return Product{}, false
	}
	return s.Products[position], true
}

// BestRated returns the highest-rated product; ties go to the earliest one
// in display order.
func (s Snapshot) BestRated() (Product, bool) {
	best := -1
	for i, p := range s.Products {
		if best < 0 || p.Rating > s.Products[best].Rating {
			best = i
		}
	}
	if best < 0 {
		return Product{}, false
	}
	return s.Products[best], true
}

// FindByName returns the first product whose name contains the spoken name,
// or whose keyword list holds it. Matching is case-insensitive.
func (s Snapshot) FindByName(name string) (Product, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Product{}, false
	}
	for _, p := range s.Products {
		if MatchesName(p, name) {
			return p, true
		}
	}
	return Product{}, false
}

// Filter returns the first product accepted by keep.
func (s Snapshot) Filter(keep func(Product) bool) (Product, bool) {
	for _, p := range s.Products {
		if keep(p) {
			return p, true
		}
	}
	return Product{}, false
}

// MatchesName reports whether p answers to the lower-cased spoken name: the
// name is part of the product name, or equals one of its keywords.
func MatchesName(p Product, name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(strings.ToLower(p.Name), name) {
		return true
	}
	for _, kw := range p.Keywords {
		if strings.EqualFold(strings.TrimSpace(kw), name) {
			return true
		}
	}
	return false
}

// Package catalog provides the product lookup the resolver falls back to
// when a spoken product name is not on screen.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nadzzz/storevoice/internal/session"
)

// ErrNotFound is returned when no catalog product answers to a name.
var ErrNotFound = errors.New("product not found")

// Catalog looks products up by spoken name.
type Catalog interface {
	Lookup(ctx context.Context, name string) (session.Product, error)
}

// Static is an in-memory catalog, typically loaded from a YAML file.
type Static struct {
	products []session.Product
}

// NewStatic returns a catalog over products, searched in the given order.
func NewStatic(products []session.Product) *Static {
	return &Static{products: products}
}

// LoadFile reads a YAML document of the form:
//
//	products:
//	  - id: p1
//	    name: Trail Runner
//	    category: shoes
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var doc struct {
		Products []session.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return NewStatic(doc.Products), nil
}

// Products returns the catalog contents in order.
func (s *Static) Products() []session.Product {
	out := make([]session.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Lookup returns the first product matching name by substring or keyword.
func (s *Static) Lookup(ctx context.Context, name string) (session.Product, error) {
	if err := ctx.Err(); err != nil {
		return session.Product{}, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		for _, p := range s.products {
			if session.MatchesName(p, name) {
				return p, nil
			}
		}
	}
	return session.Product{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Filter returns the products in category, or all of them when category is empty.
func (s *Static) Filter(category, query string) []session.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []session.Product
	for _, p := range s.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !session.MatchesName(p, query) && !strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

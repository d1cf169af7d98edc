// Package resolve turns the symbolic product references of a classified
// utterance ("the first one", "the best rated", a product name) into
// concrete products from the session's working set.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/session"
)

// Resolver fills in product targets for add-to-cart results.
type Resolver struct {
	catalog catalog.Catalog // nil disables the external lookup
}

// New creates a resolver. c is consulted once when a spoken product name is
// not in the working set; it may be nil.
func New(c catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve attaches the referenced product to r and writes the spoken
// confirmation. Unresolvable references leave the product empty and turn the
// response into a clarification; nothing is mutated beyond r.
func (rv *Resolver) Resolve(ctx context.Context, snap session.Snapshot, r *intent.Result) {
	switch r.Kind {
	case intent.AddToCartPosition:
		rv.byPosition(snap, r)
	case intent.AddToCartRating:
		rv.byRating(snap, r)
	case intent.AddToCartName:
		rv.byName(ctx, snap, r)
	case intent.AddToCartCategory, intent.AddToCartSize, intent.AddToCartColor:
		rv.byAttributes(snap, r)
	}
}

func (rv *Resolver) byPosition(snap session.Snapshot, r *intent.Result) {
	if r.Params.Position == nil {
		r.Kind = intent.AddToCartGeneric
		clearTarget(r, "Which product would you like to add?")
		return
	}
	p, ok := snap.At(*r.Params.Position)
	switch {
	case ok:
		added(r, p, "")
	case len(snap.Products) == 0:
		clearTarget(r, emptyShelf)
	default:
		clearTarget(r, fmt.Sprintf("There %s only %d %s on this page.",
			plural(len(snap.Products), "is", "are"), len(snap.Products), plural(len(snap.Products), "product", "products")))
	}
}

func (rv *Resolver) byRating(snap session.Snapshot, r *intent.Result) {
	p, ok := snap.BestRated()
	if !ok {
		clearTarget(r, emptyShelf)
		return
	}
	added(r, p, ", the best rated item,")
}

// byName matches the working set first, then makes at most one catalog
// lookup, then falls back to any category, size or color words in the name.
func (rv *Resolver) byName(ctx context.Context, snap session.Snapshot, r *intent.Result) {
	name := r.Params.ProductName
	if p, ok := snap.FindByName(name); ok {
		added(r, p, "")
		return
	}
	if r.Params.ProductID != "" {
		// Already resolved upstream against the catalog.
		return
	}
	if rv.catalog != nil {
		p, err := rv.catalog.Lookup(ctx, name)
		if err == nil {
			added(r, p, "")
			return
		}
		slog.Debug("catalog lookup missed", "name", name, "error", err)
	}
	// "add a red shirt to my cart": neither the page nor the catalog knows
	// the name, but its attribute words still narrow the page.
	if attrs, kind, ok := intent.Attributes(name); ok {
		r.Kind = kind
		r.Params = attrs
		rv.byAttributes(snap, r)
		return
	}
	r.Kind = intent.Error
	clearTarget(r, fmt.Sprintf("Sorry, I couldn't find %s.", name))
	r.Params.ProductName = name
}

func (rv *Resolver) byAttributes(snap session.Snapshot, r *intent.Result) {
	want := r.Params
	p, ok := snap.Filter(func(p session.Product) bool {
		if want.Category != "" && !strings.EqualFold(p.Category, want.Category) {
			return false
		}
		if want.Size != "" && !hasLabel(p.Sizes, want.Size, intent.SameSize) {
			return false
		}
		if want.Color != "" && !hasLabel(p.Colors, want.Color, intent.SameColor) {
			return false
		}
		return true
	})
	if !ok {
		clearTarget(r, fmt.Sprintf("I couldn't find %s on this page.", describe(want)))
		return
	}
	added(r, p, "")
}

const emptyShelf = "There are no products on this page yet. Try saying 'show me shoes'."

func added(r *intent.Result, p session.Product, aside string) {
	r.Params.ProductID = p.ID
	r.Params.ProductName = p.Name
	r.Response = fmt.Sprintf("Added %s%s to your cart.", p.Name, aside)
}

func clearTarget(r *intent.Result, response string) {
	r.Params.ProductID = ""
	r.Params.ProductName = ""
	r.Response = response
}

func hasLabel(labels []string, spoken string, same func(spoken, label string) bool) bool {
	for _, l := range labels {
		if same(spoken, l) {
			return true
		}
	}
	return false
}

func describe(p intent.Params) string {
	noun := p.Category
	switch {
	case noun == "" && p.Color != "":
		noun = "anything " + p.Color
	case noun == "":
		noun = "anything"
	case p.Color != "":
		noun = p.Color + " " + noun
	}
	if p.Size != "" {
		noun += " in size " + p.Size
	}
	return noun
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

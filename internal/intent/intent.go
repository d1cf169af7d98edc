// Package intent classifies normalized shopper utterances into shopping
// intents.
//
// Classification is an ordered table of rules evaluated with early exit:
// earlier rules win when an utterance is ambiguous across categories. The
// same table backs the in-process classifier and the remote classification
// endpoint, so both paths agree on every utterance.
package intent

import (
	"regexp"
	"strings"
)

// Kind is the canonical action an utterance maps to.
type Kind string

const (
	AuthRequired      Kind = "auth_required"
	PlaceOrder        Kind = "place_order"
	CardSelected      Kind = "card_selected"
	AddressSelected   Kind = "address_selected"
	AddToCartPosition Kind = "add_to_cart_position"
	AddToCartRating   Kind = "add_to_cart_rating"
	AddToCartName     Kind = "add_to_cart_name"
	AddToCartCategory Kind = "add_to_cart_category"
	AddToCartSize     Kind = "add_to_cart_size"
	AddToCartColor    Kind = "add_to_cart_color"
	AddToCartGeneric  Kind = "add_to_cart_generic"
	GotoCheckout      Kind = "goto_checkout"
	ViewCart          Kind = "view_cart"
	GoHome            Kind = "go_home"
	BrowseProducts    Kind = "browse_products"
	Help              Kind = "help"
	Greeting          Kind = "greeting"
	Unknown           Kind = "unknown"
	Error             Kind = "error"
)

var kinds = map[Kind]bool{
	AuthRequired: true, PlaceOrder: true, CardSelected: true, AddressSelected: true,
	AddToCartPosition: true, AddToCartRating: true, AddToCartName: true, AddToCartCategory: true,
	AddToCartSize: true, AddToCartColor: true, AddToCartGeneric: true, GotoCheckout: true,
	ViewCart: true, GoHome: true, BrowseProducts: true, Help: true, Greeting: true,
	Unknown: true, Error: true,
}

// Valid reports whether k is one of the known intents.
func (k Kind) Valid() bool { return kinds[k] }

// AddsToCart reports whether k is one of the add_to_cart variants.
func (k Kind) AddsToCart() bool { return strings.HasPrefix(string(k), "add_to_cart_") }

// Params is the optional payload extracted alongside an intent.
type Params struct {
	// Position is the zero-based index into the working set; -1 is the last element.
	Position          *int   `json:"position,omitempty"`
	ProductID         string `json:"productId,omitempty"`
	ProductName       string `json:"productName,omitempty"`
	Category          string `json:"category,omitempty"`
	Size              string `json:"size,omitempty"`
	Color             string `json:"color,omitempty"`
	Query             string `json:"query,omitempty"`
	CardIdentifier    string `json:"cardIdentifier,omitempty"`
	AddressIdentifier string `json:"addressIdentifier,omitempty"`
}

// Result is a classified utterance.
type Result struct {
	Kind     Kind   `json:"intent"`
	Params   Params `json:"params"`
	Response string `json:"response"`
}

// Resolved reports whether the result names a concrete target. Add-to-cart
// results are resolved once a product id is attached; other kinds always are.
func (r Result) Resolved() bool {
	if r.Kind.AddsToCart() {
		return r.Params.ProductID != ""
	}
	return true
}

// Failure is the result returned when classification itself broke down.
func Failure() Result {
	return Result{Kind: Error, Response: "Sorry, something went wrong. Please try again."}
}

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	trailingRe = regexp.MustCompile(`[.!?,;]+$`)
)

// Normalize trims, lower-cases and collapses whitespace in an utterance.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "’", "'")
	text = spaceRe.ReplaceAllString(text, " ")
	text = trailingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func intPtr(n int) *int { return &n }

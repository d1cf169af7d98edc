package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/session"
)

func products() []session.Product {
	return []session.Product{
		{ID: "p1", Name: "Trail Runner", Rating: 4.2, Category: "shoes", Sizes: []string{"9", "10"}, Colors: []string{"Red", "Black"}},
		{ID: "p2", Name: "Studio Headphones", Rating: 4.8, Category: "electronics", Colors: []string{"White"}, Keywords: []string{"headset"}},
		{ID: "p3", Name: "Linen Shirt", Rating: 4.8, Category: "clothing", Sizes: []string{"M", "L"}, Colors: []string{"Blue"}},
	}
}

func signedIn() session.Snapshot {
	return session.Snapshot{Products: products(), Page: session.PageProducts, UserID: "u1"}
}

func classify(t *testing.T, text string, snap session.Snapshot) intent.Result {
	t.Helper()
	return intent.NewCascade().Classify(intent.Input{Text: intent.Normalize(text), Snapshot: snap})
}

func position(n int) *int { return &n }

func TestCascade_Classify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		kind   intent.Kind
		params intent.Params
	}{
		{"first product", "add the first product", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"first one", "add first one", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"1st item", "Add the 1st item.", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"first to cart", "add the first product to my cart", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"second", "add the second one", intent.AddToCartPosition, intent.Params{Position: position(1)}},
		{"numbered", "add item three", intent.AddToCartPosition, intent.Params{Position: position(2)}},
		{"last", "add the last one", intent.AddToCartPosition, intent.Params{Position: position(-1)}},
		{"best rated", "add the best rated item", intent.AddToCartRating, intent.Params{}},
		{"top rated", "buy the top-rated one", intent.AddToCartRating, intent.Params{}},
		{"by name", "add studio headphones to my cart", intent.AddToCartName, intent.Params{ProductName: "studio headphones"}},
		{"by keyword", "put the headset in my basket", intent.AddToCartName, intent.Params{ProductName: "headset"}},
		{"unknown name", "add garden hose to cart", intent.AddToCartName, intent.Params{ProductName: "garden hose"}},
		{"name with category word", "add headphones to my cart", intent.AddToCartName, intent.Params{ProductName: "headphones"}},
		{"name with color word", "add a red shirt to my cart", intent.AddToCartName, intent.Params{ProductName: "red shirt"}},
		{"attributes only", "add a large blue one to my basket", intent.AddToCartSize, intent.Params{Size: "L", Color: "blue"}},
		{"bare one", "add one to my cart", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"buy one", "buy one", intent.AddToCartPosition, intent.Params{Position: position(0)}},
		{"this one", "add this one", intent.AddToCartGeneric, intent.Params{}},
		{"by color", "add the red one to cart", intent.AddToCartColor, intent.Params{Color: "red"}},
		{"by size", "add a large one", intent.AddToCartSize, intent.Params{Size: "L"}},
		{"by category", "add some shoes", intent.AddToCartCategory, intent.Params{Category: "shoes"}},
		{"generic", "add to cart", intent.AddToCartGeneric, intent.Params{}},
		{"place order", "place order", intent.PlaceOrder, intent.Params{}},
		{"place order wins over add", "add the first product and place my order", intent.PlaceOrder, intent.Params{}},
		{"pay now", "pay now", intent.PlaceOrder, intent.Params{}},
		{"card digit", "use card 2", intent.CardSelected, intent.Params{CardIdentifier: "2"}},
		{"card word", "select card one", intent.CardSelected, intent.Params{CardIdentifier: "1"}},
		{"card ordinal", "choose the second card", intent.CardSelected, intent.Params{CardIdentifier: "2"}},
		{"card ending", "pay with the card ending in 4242", intent.CardSelected, intent.Params{CardIdentifier: "4242"}},
		{"address", "use address 1", intent.AddressSelected, intent.Params{AddressIdentifier: "1"}},
		{"details", "select details two", intent.AddressSelected, intent.Params{AddressIdentifier: "2"}},
		{"address ordinal", "ship to the third address", intent.AddressSelected, intent.Params{AddressIdentifier: "3"}},
		{"whats in cart", "what's in my cart", intent.ViewCart, intent.Params{}},
		{"show cart", "show my cart", intent.ViewCart, intent.Params{}},
		{"check cart", "check my cart please", intent.ViewCart, intent.Params{}},
		{"go to cart", "take me to my basket", intent.ViewCart, intent.Params{}},
		{"checkout", "proceed to checkout", intent.GotoCheckout, intent.Params{}},
		{"home", "go home", intent.GoHome, intent.Params{}},
		{"all products", "show me all products", intent.BrowseProducts, intent.Params{}},
		{"browse shoes", "show me some shoes", intent.BrowseProducts, intent.Params{Category: "shoes"}},
		{"browse laptops", "i'm looking for a laptop", intent.BrowseProducts, intent.Params{Category: "electronics"}},
		{"search", "search for garden gnomes", intent.BrowseProducts, intent.Params{Query: "garden gnomes"}},
		{"help", "help", intent.Help, intent.Params{}},
		{"what can i say", "what can I say?", intent.Help, intent.Params{}},
		{"greeting", "Hello there", intent.Greeting, intent.Params{}},
		{"unknown", "the weather is nice", intent.Unknown, intent.Params{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := classify(t, tt.text, signedIn())
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.params, r.Params)
		})
	}
}

func TestCascade_CartViewingNeverAdds(t *testing.T) {
	for _, text := range []string{
		"what's in my cart",
		"what is in the cart",
		"show my cart",
		"view cart",
		"see my shopping cart",
		"open the basket",
		"check my cart",
		"go to my cart",
	} {
		r := classify(t, text, signedIn())
		assert.Equal(t, intent.ViewCart, r.Kind, text)
		assert.False(t, r.Kind.AddsToCart(), text)
	}
}

func TestCascade_AuthGate(t *testing.T) {
	anon := session.Snapshot{Products: products(), Page: session.PageProducts}

	for _, text := range []string{
		"add the first product to my cart",
		"buy the best rated item",
		"place order",
		"show my cart",
	} {
		r := classify(t, text, anon)
		assert.Equal(t, intent.AuthRequired, r.Kind, text)
		assert.Equal(t, intent.Params{}, r.Params, text)
	}

	// Vocabulary outside the gate still classifies normally.
	assert.Equal(t, intent.BrowseProducts, classify(t, "show me shoes", anon).Kind)
	assert.Equal(t, intent.GoHome, classify(t, "go home", anon).Kind)
}

func TestCascade_ContextSensitiveHelp(t *testing.T) {
	checkout := signedIn()
	checkout.Page = session.PageCheckout
	checkout.OnCheckout = true

	cart := signedIn()
	cart.Page = session.PageCart

	assert.Contains(t, classify(t, "help", checkout).Response, "place order")
	assert.Contains(t, classify(t, "help", cart).Response, "'checkout'")
	assert.Contains(t, classify(t, "help", signedIn()).Response, "show me shoes")

	unknown := classify(t, "blah blah", checkout)
	assert.Equal(t, intent.Unknown, unknown.Kind)
	assert.Contains(t, unknown.Response, "use card 1")
}

func TestCascade_Trace(t *testing.T) {
	_, rule := intent.NewCascade().Trace(intent.Input{Text: "place order", Snapshot: signedIn()})
	assert.Equal(t, "place-order", rule)
}

func TestCascade_CustomRules(t *testing.T) {
	c := intent.NewCascade(intent.Rule{
		Name: "always-greet",
		Match: func(intent.Input) (intent.Result, bool) {
			return intent.Result{Kind: intent.Greeting}, true
		},
	})
	require.Len(t, c.Rules(), 1)
	assert.Equal(t, intent.Greeting, c.Classify(intent.Input{Text: "place order"}).Kind)
}

func TestDefaultRules_Order(t *testing.T) {
	var names []string
	for _, r := range intent.DefaultRules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"auth-gate", "place-order", "select-card", "select-address", "add-to-cart",
		"checkout", "navigate", "browse", "help", "greeting", "fallback",
	}, names)
}

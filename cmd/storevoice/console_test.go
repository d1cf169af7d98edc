package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/engine"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/session"
)

func testCatalog() *catalog.Static {
	return catalog.NewStatic([]session.Product{
		{ID: "s1", Name: "Trail Runner", Category: "shoes", Rating: 4.2},
		{ID: "s2", Name: "Court Classic", Category: "shoes", Rating: 4.7},
		{ID: "e1", Name: "Studio Headphones", Category: "electronics", Rating: 4.8},
	})
}

func TestConsole_ShoppingFlow(t *testing.T) {
	e := engine.New(engine.Options{SessionID: "console"})
	var out bytes.Buffer
	c := newConsole(e, testCatalog(), &out)

	script := strings.Join([]string{
		"add the first one",
		":login demo",
		"show me shoes",
		"add the best rated one",
		"view my cart",
		"checkout",
		"place my order",
		":history",
		":quit",
		"never read",
	}, "\n")
	require.NoError(t, c.run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, "[auth_required]")
	assert.Contains(t, text, "-> 2 products")
	assert.Contains(t, text, "cart += Court Classic")
	assert.Contains(t, text, "-> cart (1 items)")
	assert.Contains(t, text, "-> order placed (1 items)")
	assert.NotContains(t, text, "never read")

	entries := e.History().Recent(0)
	require.Len(t, entries, 6)
	assert.Equal(t, intent.PlaceOrder, entries[0].Intent)
	assert.Equal(t, session.PageOrders, e.Session().Snapshot().Page)
}

func TestConsole_OrderFailureIsSpoken(t *testing.T) {
	e := engine.New(engine.Options{})
	var out bytes.Buffer
	c := newConsole(e, testCatalog(), &out)
	c.login("demo")

	require.NoError(t, c.run(context.Background(), strings.NewReader("place my order\n")))
	assert.Contains(t, out.String(), "(submitOrder: failed)")
	assert.Contains(t, out.String(), "couldn't complete")
}

func TestWebhooks_CanonicalNames(t *testing.T) {
	hooks, err := webhooks(map[string]config.CapabilityConfig{
		"addtocart":   {Endpoint: "http://shop/cart", Token: "t"},
		"submitorder": {Endpoint: "http://shop/order"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://shop/cart", hooks["addToCart"].Endpoint)
	assert.Equal(t, "t", hooks["addToCart"].Token)
	assert.Contains(t, hooks, "submitOrder")

	_, err = webhooks(map[string]config.CapabilityConfig{"refund": {Endpoint: "x"}})
	assert.Error(t, err)
}

func TestNewClassifier(t *testing.T) {
	assert.Equal(t, "local", newClassifier(config.ClassifierConfig{Backend: "local"}).Name())
	c := newClassifier(config.ClassifierConfig{Backend: "remote", Remote: config.RemoteClassifierConfig{Endpoint: "http://localhost:1/classify"}})
	assert.Equal(t, "remote>local", c.Name())
}

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/storevoice/internal/session"
)

func TestContext_Defaults(t *testing.T) {
	snap := session.New().Snapshot()
	assert.Equal(t, session.PageHome, snap.Page)
	assert.Empty(t, snap.Products)
	assert.False(t, snap.OnCheckout)
	assert.False(t, snap.Authenticated())
}

func TestContext_SetProducts(t *testing.T) {
	c := session.New()
	products := []session.Product{{ID: "p1", Name: "Trail Runner"}, {ID: "p2", Name: "City Sneaker"}}
	c.SetProducts(products, "shoes", "running")

	// Mutating the caller's slice must not leak into the session.
	products[0].Name = "changed"

	snap := c.Snapshot()
	assert.Equal(t, "Trail Runner", snap.Products[0].Name)
	assert.Equal(t, "shoes", snap.Category)
	assert.Equal(t, "running", snap.SearchQuery)
}

func TestContext_SnapshotIsIsolated(t *testing.T) {
	c := session.New()
	c.SetProducts([]session.Product{{ID: "p1"}}, "", "")

	snap := c.Snapshot()
	c.SetProducts([]session.Product{{ID: "p9"}, {ID: "p8"}}, "", "")

	assert.Len(t, snap.Products, 1)
	assert.Equal(t, "p1", snap.Products[0].ID)
}

func TestContext_PageAndUser(t *testing.T) {
	c := session.New()
	c.SetPage(session.PageCheckout, true)
	c.SetUser("u-42")

	snap := c.Snapshot()
	assert.Equal(t, session.PageCheckout, snap.Page)
	assert.True(t, snap.OnCheckout)
	assert.True(t, snap.Authenticated())

	c.SetUser("")
	assert.False(t, c.Snapshot().Authenticated())
}

func TestMatchesName(t *testing.T) {
	hat := session.Product{ID: "h1", Name: "Hat", Keywords: []string{"beanie"}}
	tests := []struct {
		name string
		want bool
	}{
		{"hat", true},
		{"ha", true},
		{"beanie", true},
		{"hatchback cover", false},
		{"red hat", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, session.MatchesName(hat, tt.name), tt.name)
	}

	snap := session.Snapshot{Products: []session.Product{hat}}
	_, ok := snap.FindByName("Hatchback Cover")
	assert.False(t, ok)
}

package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadzzz/storevoice/internal/intent"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"one", 1, true},
		{"first", 1, true},
		{"1st", 1, true},
		{"1", 1, true},
		{"#2", 2, true},
		{"Third", 3, true},
		{"tenth", 10, true},
		{"12", 12, true},
		{"0", 0, false},
		{"visa", 0, false},
	}
	for _, tt := range tests {
		got, ok := intent.Number(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "1", intent.Identifier("first"))
	assert.Equal(t, "2", intent.Identifier("two"))
	assert.Equal(t, "visa", intent.Identifier("visa"))
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"add the first product", 0, true},
		{"the 2nd one", 1, true},
		{"the last one", -1, true},
		{"number four", 3, true},
		{"item #5", 4, true},
		{"add one to my cart", 0, true},
		{"buy one", 0, true},
		{"get the one in my basket", 0, true},
		{"add the last one", -1, true},
		{"add one red shirt", 0, false},
		{"add this one", 0, false},
		{"the red one", 0, false},
		{"no thanks", 0, false},
	}
	for _, tt := range tests {
		got, ok := intent.Ordinal(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "what's in my cart", intent.Normalize("  What’s   in my CART?  "))
	assert.Equal(t, "place order", intent.Normalize("Place order!"))
	assert.Empty(t, intent.Normalize("   "))
}

func TestInferAttributes(t *testing.T) {
	c, ok := intent.InferCategory("i need new sneakers")
	assert.True(t, ok)
	assert.Equal(t, "shoes", c)

	s, ok := intent.InferSize("add size nine")
	assert.True(t, ok)
	assert.Equal(t, "9", s)

	s, ok = intent.InferSize("the extra large one")
	assert.True(t, ok)
	assert.Equal(t, "XL", s)

	col, ok := intent.InferColor("the grey hoodie")
	assert.True(t, ok)
	assert.Equal(t, "gray", col)

	assert.True(t, intent.SameSize("L", "large"))
	assert.True(t, intent.SameSize("9", "9"))
	assert.True(t, intent.SameColor("red", "Dark Red"))
	assert.False(t, intent.SameColor("red", "Blue"))
}

func TestKind(t *testing.T) {
	assert.True(t, intent.AddToCartColor.AddsToCart())
	assert.False(t, intent.ViewCart.AddsToCart())
	assert.True(t, intent.Kind("greeting").Valid())
	assert.False(t, intent.Kind("dance").Valid())
}

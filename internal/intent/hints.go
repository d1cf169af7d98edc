package intent

import "github.com/nadzzz/storevoice/internal/session"

const (
	checkoutHint = "You can say 'use address 1', 'use card 1', or 'place order'."
	cartHint     = "You can say 'checkout' to continue, or 'go home' to keep shopping."
	genericHint  = "You can say 'show me shoes', 'add the first one', 'view my cart', or 'checkout'."
)

// Hint returns the suggestion that fits what the shopper is looking at.
func Hint(s session.Snapshot) string {
	switch {
	case s.OnCheckout:
		return checkoutHint
	case s.Page == session.PageCart:
		return cartHint
	default:
		return genericHint
	}
}

package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nadzzz/storevoice/internal/session"
)

// Input is what a rule sees: the normalized utterance and the session
// snapshot taken when classification started.
type Input struct {
	Text     string
	Snapshot session.Snapshot
}

// Rule is one entry of the classification table. Match reports whether the
// rule claims the utterance and, if so, the classified result.
type Rule struct {
	Name  string
	Match func(in Input) (Result, bool)
}

var (
	authVocabRe  = regexp.MustCompile(`\b(add|cart|order|buy)\b`)
	placeOrderRe = regexp.MustCompile(`\b(place|confirm|complete|submit|finish|finali[sz]e)\s+(my\s+|the\s+)?order\b|\bpay\s+now\b|\bmake\s+(the\s+)?payment\b|\bcomplete\s+(my\s+|the\s+)?purchase\b`)

	selectVerb    = `\b(?:use|select|choose|pick|pay\s+with|go\s+with|ship\s+to|deliver\s+to|send\s+it\s+to)\s+(?:the\s+|my\s+)?`
	cardEndingRe  = regexp.MustCompile(`\bcard\s+ending\s+(?:in|with)\s+(\d+)`)
	cardNumberRe  = regexp.MustCompile(selectVerb + `card\s+(?:number\s+)?([\w#]+)`)
	cardOrdinalRe = regexp.MustCompile(selectVerb + `([\w#]+)\s+card\b`)
	addrNumberRe  = regexp.MustCompile(selectVerb + `(?:address|details)\s+(?:number\s+)?([\w#]+)`)
	addrOrdinalRe = regexp.MustCompile(selectVerb + `([\w#]+)\s+(?:address|details)\b`)

	cartViewRe    = regexp.MustCompile(`\b(view|show|see|check|open|display)\s+(me\s+)?(my\s+|the\s+)?(shopping\s+)?(cart|basket)\b|\bwhat(\s*'s|s|\s+is)\s+in\s+(my\s+|the\s+)?(shopping\s+)?(cart|basket)\b|\b(go|take\s+me|bring\s+me)\s+to\s+(my\s+|the\s+)?(shopping\s+)?(cart|basket)\b`)
	addTriggerRe  = regexp.MustCompile(`\b(add|buy|purchase)\b|\b(put|get|grab|throw)\b.*\b(cart|basket)\b`)
	addNameRe     = regexp.MustCompile(`\b(?:add|buy|purchase|get|put)\s+(?:the\s+|a\s+|an\s+|some\s+)?(.+?)\s+(?:to|in|into)\s+(?:my\s+|the\s+|your\s+)?(?:shopping\s+)?(?:cart|basket)\b`)
	superlativeRe = regexp.MustCompile(`\b(best|highest[\s-]rated|top[\s-]rated|best[\s-]rated|highest\s+rating|most\s+popular)\b`)
	genericNameRe = regexp.MustCompile(`^(it|this|that|this one|that one|one|them|these|those|something|anything|(the\s+)?(products?|items?|things?))$`)

	checkoutRe = regexp.MustCompile(`\b(checkout|check\s+out|proceed\s+to\s+(checkout|payment|pay)|go\s+to\s+(the\s+)?(checkout|payment)|ready\s+to\s+pay)\b`)
	homeRe     = regexp.MustCompile(`\b(go\s+(back\s+)?(to\s+(the\s+)?)?home|home\s*page|main\s+page|take\s+me\s+home|start\s+over|back\s+to\s+(the\s+)?start)\b|^home$`)
	cartWordRe = regexp.MustCompile(`\b(cart|basket)\b`)
	catalogRe  = regexp.MustCompile(`\b(all|every)\s+products?\b|\bproduct\s+(catalog|list|page)\b|\b(show|browse|see|view|list)\s+(me\s+)?(the\s+)?products\b|\bcatalog\b`)
	searchRe   = regexp.MustCompile(`\b(?:search\s+for|search|find\s+me|find|look(?:ing)?\s+for|show\s+me|do\s+you\s+have|i\s+(?:want|need))\s+(?:some\s+|a\s+|an\s+|the\s+|any\s+)?(.+)$`)
	helpRe     = regexp.MustCompile(`\b(help|what\s+can\s+(i|you)\s+(say|do)|how\s+does\s+this\s+work|what\s+are\s+(my\s+)?(options|commands)|commands)\b`)
	greetingRe = regexp.MustCompile(`^(hi|hello|hey|hiya|howdy|greetings|good\s+(morning|afternoon|evening))\b`)
)

// DefaultRules is the classification table in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "auth-gate", Match: matchAuthGate},
		{Name: "place-order", Match: matchPlaceOrder},
		{Name: "select-card", Match: matchCard},
		{Name: "select-address", Match: matchAddress},
		{Name: "add-to-cart", Match: matchAddToCart},
		{Name: "checkout", Match: matchCheckout},
		{Name: "navigate", Match: matchNavigation},
		{Name: "browse", Match: matchBrowse},
		{Name: "help", Match: matchHelp},
		{Name: "greeting", Match: matchGreeting},
		{Name: "fallback", Match: matchFallback},
	}
}

func matchAuthGate(in Input) (Result, bool) {
	if in.Snapshot.Authenticated() || !authVocabRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{
		Kind:     AuthRequired,
		Response: "Please sign in to add items to your cart or place an order.",
	}, true
}

func matchPlaceOrder(in Input) (Result, bool) {
	if !placeOrderRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Kind: PlaceOrder, Response: "Placing your order now."}, true
}

func matchCard(in Input) (Result, bool) {
	id, ok := selection(in.Text, cardEndingRe, cardNumberRe, cardOrdinalRe)
	if !ok {
		return Result{}, false
	}
	if id == "" {
		return Result{Kind: CardSelected, Response: "Which card would you like to use? You can say 'use card 1'."}, true
	}
	return Result{
		Kind:     CardSelected,
		Params:   Params{CardIdentifier: id},
		Response: fmt.Sprintf("Using card %s.", id),
	}, true
}

func matchAddress(in Input) (Result, bool) {
	id, ok := selection(in.Text, addrNumberRe, addrOrdinalRe)
	if !ok {
		return Result{}, false
	}
	if id == "" {
		return Result{Kind: AddressSelected, Response: "Which address should I use? You can say 'use address 1'."}, true
	}
	return Result{
		Kind:     AddressSelected,
		Params:   Params{AddressIdentifier: id},
		Response: fmt.Sprintf("Using address %s.", id),
	}, true
}

// selection runs the patterns in order and normalizes the captured
// identifier. A match on a filler word ("use my card") yields an empty id.
func selection(text string, patterns ...*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch m[1] {
		case "my", "the", "a", "this", "that", "a different", "another":
			return "", true
		}
		return Identifier(m[1]), true
	}
	return "", false
}

func matchAddToCart(in Input) (Result, bool) {
	// Viewing phrases share the word "cart" with adding; they must never add.
	if cartViewRe.MatchString(in.Text) || !addTriggerRe.MatchString(in.Text) {
		return Result{}, false
	}

	if m := addNameRe.FindStringSubmatch(in.Text); m != nil {
		if r, ok := addByName(strings.TrimSpace(m[1])); ok {
			return r, true
		}
	}

	if pos, ok := Ordinal(in.Text); ok {
		return Result{Kind: AddToCartPosition, Params: Params{Position: intPtr(pos)}}, true
	}

	if superlativeRe.MatchString(in.Text) {
		return Result{Kind: AddToCartRating}, true
	}

	if r, ok := addByAttribute(in.Text); ok {
		return r, true
	}

	return Result{
		Kind:     AddToCartGeneric,
		Response: "Which product would you like to add? You can say 'add the first one' or 'add the best rated item'.",
	}, true
}

// addByName claims an explicit "add <name> to cart" phrase unless the name
// is an ordinal, superlative or generic reference, or says nothing beyond a
// color or size ("the red one"). Names that merely contain attribute words
// ("headphones", "red shirt") stay names; resolution falls back to their
// attributes only after the page and the catalog both miss.
func addByName(name string) (Result, bool) {
	if name == "" || genericNameRe.MatchString(name) || superlativeRe.MatchString(name) {
		return Result{}, false
	}
	if _, ok := Ordinal(name); ok {
		return Result{}, false
	}
	if attributeOnly(name) {
		return Result{}, false
	}
	return Result{Kind: AddToCartName, Params: Params{ProductName: name}}, true
}

var attributeFillerRe = regexp.MustCompile(`\b(the|a|an|some|one|ones|item|items|product|products|thing|things|and|in|size)\b`)

// attributeOnly reports whether name is made of color and size words plus
// fillers. Category words count as a name.
func attributeOnly(name string) bool {
	rest := sizeValueRe.ReplaceAllString(name, " ")
	rest = sizeWordRe.ReplaceAllString(rest, " ")
	rest = colorRe.ReplaceAllString(rest, " ")
	if rest == name {
		return false
	}
	return strings.TrimSpace(attributeFillerRe.ReplaceAllString(rest, " ")) == ""
}

func addByAttribute(text string) (Result, bool) {
	p, kind, ok := Attributes(text)
	if !ok {
		return Result{}, false
	}
	return Result{Kind: kind, Params: p}, true
}

// Attributes extracts category, size and color references. The intent kind
// follows the first one found in that order.
func Attributes(text string) (Params, Kind, bool) {
	var (
		p    Params
		kind Kind
	)
	if c, ok := InferCategory(text); ok {
		p.Category = c
		kind = AddToCartCategory
	}
	if s, ok := InferSize(text); ok {
		p.Size = s
		if kind == "" {
			kind = AddToCartSize
		}
	}
	if c, ok := InferColor(text); ok {
		p.Color = c
		if kind == "" {
			kind = AddToCartColor
		}
	}
	return p, kind, kind != ""
}

func matchCheckout(in Input) (Result, bool) {
	if !checkoutRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Kind: GotoCheckout, Response: "Taking you to checkout."}, true
}

func matchNavigation(in Input) (Result, bool) {
	switch {
	case homeRe.MatchString(in.Text):
		return Result{Kind: GoHome, Response: "Taking you to the home page."}, true
	case cartViewRe.MatchString(in.Text), cartWordRe.MatchString(in.Text):
		return Result{Kind: ViewCart, Response: "Here's your cart."}, true
	case catalogRe.MatchString(in.Text):
		return Result{Kind: BrowseProducts, Response: "Here are all our products."}, true
	}
	return Result{}, false
}

func matchBrowse(in Input) (Result, bool) {
	if c, ok := InferCategory(in.Text); ok {
		return Result{
			Kind:     BrowseProducts,
			Params:   Params{Category: c},
			Response: fmt.Sprintf("Showing %s.", c),
		}, true
	}
	m := searchRe.FindStringSubmatch(in.Text)
	if m == nil || helpRe.MatchString(m[1]) {
		return Result{}, false
	}
	q := strings.TrimSpace(m[1])
	return Result{
		Kind:     BrowseProducts,
		Params:   Params{Query: q},
		Response: fmt.Sprintf("Searching for %s.", q),
	}, true
}

func matchHelp(in Input) (Result, bool) {
	if !helpRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Kind: Help, Response: Hint(in.Snapshot)}, true
}

func matchGreeting(in Input) (Result, bool) {
	if !greetingRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Kind: Greeting, Response: "Hello! What would you like to shop for today?"}, true
}

func matchFallback(in Input) (Result, bool) {
	return Result{
		Kind:     Unknown,
		Response: "Sorry, I didn't catch that. " + Hint(in.Snapshot),
	}, true
}

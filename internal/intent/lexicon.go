package intent

import (
	"regexp"
	"strings"
)

type lexeme struct {
	re    *regexp.Regexp
	value string
}

// categoryLexicon maps spoken keywords to catalog categories, in priority order.
var categoryLexicon = []lexeme{
	{regexp.MustCompile(`\b(shoes?|sneakers?|boots?|sandals?|heels|trainers|footwear)\b`), "shoes"},
	{regexp.MustCompile(`\b(phones?|smartphones?|laptops?|computers?|tablets?|headphones?|earbuds|electronics?|gadgets?|tvs?|cameras?)\b`), "electronics"},
	{regexp.MustCompile(`\b(shirts?|t-shirts?|tees?|dress(es)?|jackets?|jeans|pants|trousers|hoodies?|sweaters?|clothes|clothing|apparel)\b`), "clothing"},
	{regexp.MustCompile(`\b(watch(es)?|bags?|backpacks?|wallets?|belts?|sunglasses|jewelry|accessories|accessory)\b`), "accessories"},
	{regexp.MustCompile(`\b(books?|novels?)\b`), "books"},
}

var colorRe = regexp.MustCompile(`\b(red|blue|green|black|white|yellow|pink|purple|orange|brown|grey|gray|silver|gold|navy|beige)\b`)

var (
	sizeWordRe  = regexp.MustCompile(`\b(extra small|extra large|small|medium|large|xxl|xl|xs)\b`)
	sizeValueRe = regexp.MustCompile(`\bsize\s+(\w+)\b`)
)

var sizeAliases = map[string]string{
	"extra small": "XS", "xs": "XS",
	"small": "S", "medium": "M", "large": "L",
	"extra large": "XL", "xl": "XL", "xxl": "XXL",
}

// InferCategory maps keywords in text to a catalog category.
func InferCategory(text string) (string, bool) {
	for _, l := range categoryLexicon {
		if l.re.MatchString(text) {
			return l.value, true
		}
	}
	return "", false
}

// InferColor finds a color reference in text.
func InferColor(text string) (string, bool) {
	if m := colorRe.FindString(text); m != "" {
		if m == "grey" {
			m = "gray"
		}
		return m, true
	}
	return "", false
}

// InferSize finds a size reference ("size 9", "large") in text. Named sizes
// are returned in their label form (S, M, L, XL).
func InferSize(text string) (string, bool) {
	if m := sizeValueRe.FindStringSubmatch(text); m != nil {
		if alias, ok := sizeAliases[m[1]]; ok {
			return alias, true
		}
		return strings.ToUpper(Identifier(m[1])), true
	}
	if m := sizeWordRe.FindString(text); m != "" {
		return sizeAliases[m], true
	}
	return "", false
}

// SameSize compares a spoken size with a catalog size label.
func SameSize(spoken, label string) bool {
	label = strings.TrimSpace(label)
	if strings.EqualFold(spoken, label) {
		return true
	}
	if alias, ok := sizeAliases[strings.ToLower(label)]; ok {
		return strings.EqualFold(spoken, alias)
	}
	return false
}

// SameColor compares a spoken color with a catalog color label.
func SameColor(spoken, label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "grey" {
		label = "gray"
	}
	return spoken == label || strings.Contains(label, spoken)
}

package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var numberWords = map[string]int{
	"one": 1, "first": 1, "1st": 1,
	"two": 2, "second": 2, "2nd": 2,
	"three": 3, "third": 3, "3rd": 3,
	"four": 4, "fourth": 4, "4th": 4,
	"five": 5, "fifth": 5, "5th": 5,
	"six": 6, "sixth": 6, "6th": 6,
	"seven": 7, "seventh": 7, "7th": 7,
	"eight": 8, "eighth": 8, "8th": 8,
	"nine": 9, "ninth": 9, "9th": 9,
	"ten": 10, "tenth": 10, "10th": 10,
}

// Number parses a spoken cardinal, ordinal or digit string into a one-based
// number. "one", "first", "1st", "1" and "#1" all yield 1.
func Number(word string) (int, bool) {
	word = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(word)), "#")
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	if n, err := strconv.Atoi(word); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}

// Identifier normalizes a spoken card or address reference. Numbers become
// their digit form; anything else (a card brand, an address label) is kept.
func Identifier(word string) string {
	if n, ok := Number(word); ok {
		return strconv.Itoa(n)
	}
	return strings.TrimSpace(word)
}

var (
	ordinalRe  = regexp.MustCompile(`\b(first|1st|second|2nd|third|3rd|fourth|4th|fifth|5th|sixth|6th|seventh|7th|eighth|8th|ninth|9th|tenth|10th|last)\b`)
	numberedRe = regexp.MustCompile(`(?:\b(?:number|item|product|no)\s+|#)(\w+)\b`)
	// "add one", "buy one to my cart". Not "add one red shirt".
	bareOneRe = regexp.MustCompile(`\b(?:add|buy|purchase|get|grab)\s+(?:the\s+)?one(?:\s+(?:to|in|into|please)\b|$)`)
)

// Ordinal finds an ordinal product reference and returns its zero-based
// index. "last" yields -1, meaning the final element of the working set.
// A bare "one" right after an add verb means the first product.
func Ordinal(text string) (int, bool) {
	if m := ordinalRe.FindStringSubmatch(text); m != nil {
		if m[1] == "last" {
			return -1, true
		}
		n, _ := Number(m[1])
		return n - 1, true
	}
	if m := numberedRe.FindStringSubmatch(text); m != nil {
		if n, ok := Number(m[1]); ok {
			return n - 1, true
		}
	}
	if bareOneRe.MatchString(text) {
		return 0, true
	}
	return 0, false
}

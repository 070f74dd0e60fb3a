package search

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into runs of letters, digits and
// underscores. Tokens shorter than two characters are dropped.
func Tokenize(text string) []string {
	f := func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c) && c != '_'
	}
	fields := strings.FieldsFunc(text, f)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) < 2 {
			continue
		}
		tokens = append(tokens, strings.ToLower(field))
	}
	return tokens
}

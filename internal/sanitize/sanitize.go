// Package sanitize holds the pure text transforms applied to recipe fields
// before they are shown to a reader.
package sanitize

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// emptyListMarkers are serialisations of an empty list found in the source tables.
var emptyListMarkers = map[string]bool{
	"character(0)": true,
	"c()":          true,
	"[]":           true,
	"NA":           true,
}

var pyQuoteSep = regexp.MustCompile(`['"]\s*,\s*['"]`)

// CleanListField unwraps a serialised list such as `c("a", "b")` or
// `['a', 'b']` into "a, b". It only strips punctuation and never interprets
// the content. The second result is false when the value looked like a list
// encoding but was malformed; in that case the raw input is returned unchanged.
func CleanListField(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || emptyListMarkers[s] {
		return "", true
	}

	switch {
	case strings.HasPrefix(s, "c("):
		if !strings.HasSuffix(s, ")") || strings.Count(s, `"`)%2 != 0 {
			return raw, false
		}
		s = s[2 : len(s)-1]
	case strings.HasPrefix(s, "["):
		if !strings.HasSuffix(s, "]") {
			return raw, false
		}
		s = s[1 : len(s)-1]
		s = pyQuoteSep.ReplaceAllString(s, ", ")
		s = strings.Trim(strings.TrimSpace(s), `'"`)
	default:
		// Plain text, nothing to unwrap.
		return collapseSpace(strings.ReplaceAll(s, `"`, "")), true
	}

	s = strings.ReplaceAll(s, `"`, "")
	return collapseSpace(s), true
}

// StripMarkup removes HTML tags and decodes entities, returning the visible
// text with whitespace collapsed. Script and style bodies are dropped.
func StripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return collapseSpace(raw)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	skip := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() != io.EOF {
				return collapseSpace(raw)
			}
			return collapseSpace(b.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skip++
				}
			case "br", "p", "li", "div":
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "li", "div":
				b.WriteByte(' ')
			}

		case html.TextToken:
			if skip == 0 {
				b.WriteString(tokenizer.Token().Data)
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

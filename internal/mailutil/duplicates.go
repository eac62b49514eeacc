package mailutil

import (
	"html"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

const lineBreak = "<br>"

// FindDuplicates returns every name of two or more characters that occurs
// more than once in names, HTML-escaped and each followed by a line break.
// Matching is case-sensitive. Returns an empty string if there are none.
func FindDuplicates(names []string) string {
	return joinEscaped(duplicateNames(names))
}

// duplicateNames returns the repeated names in order of first detection.
func duplicateNames(names []string) []string {
	var dups []string
	seen := make(map[string]struct{})

	for i, name := range names {
		if utf8.RuneCountInString(name) < 2 {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		for _, later := range names[i+1:] {
			if later == name {
				seen[name] = struct{}{}
				dups = append(dups, name)
				break
			}
		}
	}

	return dups
}

// displayName strips markup from s, decodes entities and escapes the
// result for inclusion in an HTML report.
func displayName(s string) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return html.EscapeString(b.String())
		case xhtml.TextToken:
			b.Write(z.Text())
		}
	}
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

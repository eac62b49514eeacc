package mailutil

import (
	"context"
	"html"
	"slices"
	"strings"
)

// delimiterReplacer turns the encodings a recipient list may arrive in
// into plain comma-separated addresses. Input is lowercased first, so the
// keys are lowercase.
var delimiterReplacer = strings.NewReplacer(
	"%40", "@",
	"%20", ",",
	"+", ",",
	" ", ",",
	"%2c", ",",
)

// FilterResult is the outcome of sanitizing a recipient list.
type FilterResult struct {
	// Invalid holds addresses that failed validation.
	Invalid []string
	// Duplicates holds addresses listed more than once, and the sender's
	// own address if it was listed as a recipient.
	Duplicates []string
	// Accepted holds the addresses that may be mailed, in input order.
	Accepted []string

	// listDuplicates counts the leading Duplicates entries that were
	// repeated in the list itself. They are reported escaped but verbatim.
	listDuplicates int
}

// HasProblems reports whether any address was rejected or repeated.
func (r *FilterResult) HasProblems() bool {
	return len(r.Invalid) > 0 || len(r.Duplicates) > 0
}

// Report renders the invalid and duplicate addresses as an HTML fragment
// for display next to the recipient field.
func (r *FilterResult) Report() string {
	n := min(r.listDuplicates, len(r.Duplicates))
	invalid := joinDisplay(r.Invalid)
	duplicate := joinEscaped(r.Duplicates[:n]) + joinDisplay(r.Duplicates[n:])

	switch {
	case invalid != "" && duplicate == "":
		return invalid
	case invalid != "":
		return invalid + lineBreak + lineBreak + "Duplicate:" + lineBreak + duplicate
	case duplicate != "":
		return " " + duplicate
	}
	return ""
}

// Legacy encodes the result in the historical single-string form: the
// report, a tab, then the comma-joined accepted list. Callers split on the
// first tab. Without problems only the accepted list is returned.
func (r *FilterResult) Legacy() string {
	saved := strings.Join(r.Accepted, ",")
	if !r.HasProblems() {
		return saved
	}
	return r.Report() + "\t" + saved
}

func joinDisplay(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(displayName(name))
		b.WriteString(lineBreak)
	}
	return b.String()
}

func joinEscaped(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(html.EscapeString(name))
		b.WriteString(lineBreak)
	}
	return b.String()
}

// FilterEmailInput sanitizes the raw recipient list original. Addresses may
// be separated by commas, spaces, plus signs or their URL encodings. to is
// the sender's address: it is never accepted as a recipient.
func (v *Validator) FilterEmailInput(ctx context.Context, to, original string, opt ValidateOption) *FilterResult {
	self := normalizeList(to)
	exploded := strings.Split(normalizeList(original), ",")

	dups := duplicateNames(exploded)
	result := &FilterResult{
		Duplicates:     dups,
		listDuplicates: len(dups),
	}

	for _, name := range unique(exploded) {
		if name == "" {
			continue
		}

		if !v.IsValidEmailDomain(ctx, name, opt) {
			result.Invalid = append(result.Invalid, name)
			continue
		}

		if name == self {
			if !slices.Contains(result.Duplicates, name) {
				result.Duplicates = append(result.Duplicates, name)
			}
			continue
		}

		result.Accepted = append(result.Accepted, name)
	}

	if result.HasProblems() {
		v.log.Debug().
			Int("invalid", len(result.Invalid)).
			Int("duplicates", len(result.Duplicates)).
			Int("accepted", len(result.Accepted)).
			Msg("recipient list filtered")
	}

	return result
}

// FilterUserEmails splits a comma or space separated list, keeps the
// syntactically valid addresses and drops repeats. Invalid entries are
// discarded silently.
func (v *Validator) FilterUserEmails(ctx context.Context, original string) []string {
	data := strings.Split(strings.ToLower(strings.ReplaceAll(original, " ", ",")), ",")

	var valid []string
	for _, address := range data {
		if v.IsValidEmailDomain(ctx, address, ValidateSyntax) {
			valid = append(valid, address)
		}
	}

	return unique(valid)
}

func normalizeList(s string) string {
	return delimiterReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

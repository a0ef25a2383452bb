// Package suggest inspects a table and proposes generic cleaning steps.
package suggest

import (
	"strings"
	"unicode"

	"datacleanr/internal/table"
)

// Suggestion tags for the generic cleaning steps
const (
	RemoveDuplicates = "remove_duplicates"
	HarmonizeColumns = "harmonize_columns"
	HandleMissing    = "handle_missing"
	TrimWhitespace   = "trim_whitespace"
	StandardizeDates = "standardize_dates"
)

// dateKeywords mark a column as holding dates or times
var dateKeywords = []string{"date", "time"}

// Suggest returns the generic cleaning steps that apply to t, in a fixed
// order
func Suggest(t *table.Table) []string {
	suggestions := make([]string, 0, 5)

	if table.DuplicateCount(t) > 0 {
		suggestions = append(suggestions, RemoveDuplicates)
	}
	if hasUnharmonizedName(t) {
		suggestions = append(suggestions, HarmonizeColumns)
	}
	if hasNull(t) {
		suggestions = append(suggestions, HandleMissing)
	}
	if HasUntrimmedText(t) {
		suggestions = append(suggestions, TrimWhitespace)
	}
	for _, c := range t.Columns {
		if table.NameMatches(c.Name, dateKeywords...) {
			suggestions = append(suggestions, StandardizeDates)
			break
		}
	}
	return suggestions
}

func hasUnharmonizedName(t *table.Table) bool {
	for _, c := range t.Columns {
		if strings.ContainsRune(c.Name, ' ') {
			return true
		}
		for _, r := range c.Name {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return false
}

func hasNull(t *table.Table) bool {
	for _, c := range t.Columns {
		if c.NullCount() > 0 {
			return true
		}
	}
	return false
}

// HasUntrimmedText reports whether any text cell has surrounding whitespace
func HasUntrimmedText(t *table.Table) bool {
	for _, c := range t.Columns {
		if c.Kind != table.KindText {
			continue
		}
		if Untrimmed(c) {
			return true
		}
	}
	return false
}

// Untrimmed reports whether a string cell of c has surrounding whitespace
func Untrimmed(c *table.Column) bool {
	for _, v := range c.Values {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != s {
			return true
		}
	}
	return false
}

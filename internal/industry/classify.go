// Package industry guesses the business domain of a table from its column
// names and filename, and maps each domain to its cleaning operations.
package industry

import (
	"math"
	"strings"
)

// MaxFeatures bounds the matched keywords reported for a classification
const MaxFeatures = 5

// Classification is the outcome of scoring a table against a rule set
type Classification struct {
	Key        string
	Industry   string
	Confidence float64
	Features   []string
	Scores     map[string]int
}

// IsGeneral reports whether no category matched
func (c Classification) IsGeneral() bool {
	return c.Key == ""
}

// Classify scores every category against the column names and filename.
// The top score wins, ties going to the earlier category. Confidence is
// the winner's share of all points, rounded to two decimals.
func (rs *RuleSet) Classify(filename string, columns []string) Classification {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}

	scores := make(map[string]int, len(rs.Categories))
	matched := make(map[string][]string, len(rs.Categories))
	for _, cat := range rs.Categories {
		for _, kw := range cat.Keywords {
			if anyContains(lowered, kw) {
				matched[cat.Key] = append(matched[cat.Key], kw)
			}
		}
		scores[cat.Key] = cat.Weight * len(matched[cat.Key])
	}

	name := strings.ToLower(filename)
	for _, b := range rs.Boosts {
		if b.applies(name, lowered) {
			scores[b.Category] += b.Points
		}
	}

	total := 0
	winner := rs.Categories[0]
	for _, cat := range rs.Categories {
		total += scores[cat.Key]
		if scores[cat.Key] > scores[winner.Key] {
			winner = cat
		}
	}

	result := Classification{Industry: GeneralLabel, Features: []string{}, Scores: scores}
	if total == 0 || scores[winner.Key] == 0 {
		return result
	}

	result.Key = winner.Key
	result.Industry = winner.Label
	result.Confidence = math.Round(float64(scores[winner.Key])/float64(total)*100) / 100
	features := matched[winner.Key]
	if len(features) > MaxFeatures {
		features = features[:MaxFeatures]
	}
	result.Features = append(result.Features, features...)
	return result
}

func (b Boost) applies(filename string, columns []string) bool {
	for _, s := range b.FilenameContains {
		if filename != "" && strings.Contains(filename, s) {
			return true
		}
	}
	if len(b.ColumnKeywords) > 0 && b.MinColumnMatches > 0 {
		n := 0
		for _, col := range columns {
			for _, kw := range b.ColumnKeywords {
				if strings.Contains(col, kw) {
					n++
					break
				}
			}
		}
		return n >= b.MinColumnMatches
	}
	return false
}

func anyContains(columns []string, keyword string) bool {
	for _, col := range columns {
		if strings.Contains(col, keyword) {
			return true
		}
	}
	return false
}

// Suggestions returns the industry's own suggestion tags and description.
// General has no tags.
func (rs *RuleSet) Suggestions(c Classification) ([]string, string) {
	if c.IsGeneral() {
		return []string{}, GeneralDescription
	}
	cat, ok := rs.Category(c.Key)
	if !ok {
		return []string{}, GeneralDescription
	}
	return append([]string{}, cat.Suggestions...), cat.Description
}

// Merge returns the de-duplicated union of the lists, keeping first
// occurrence order
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

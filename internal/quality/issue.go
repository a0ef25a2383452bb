package quality

import "sort"

// Severity ranks how urgent an issue is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists every severity from most to least urgent
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Rank orders severities, critical first. Unknown severities sort last.
func (s Severity) Rank() int {
	for i, sev := range Severities {
		if sev == s {
			return i
		}
	}
	return len(Severities)
}

// Issue types reported by the analyzer
const (
	TypeDuplicateRows           = "duplicate_rows"
	TypeMissingValues           = "missing_values"
	TypeMissingValuesColumn     = "missing_values_column"
	TypeDataTypeInconsistency   = "data_type_inconsistency"
	TypeColumnNaming            = "column_naming"
	TypeSingleValueColumns      = "single_value_columns"
	TypeOutliers                = "outliers"
	TypeWhitespaceIssues        = "whitespace_issues"
	TypeDateFormatInconsistency = "date_format_inconsistency"
	TypeEmptyDataset            = "empty_dataset"
	TypeLargeDataset            = "large_dataset"
)

// Issue is one finding of the analyzer. ID is assigned when the report is
// built and stays valid for as long as the report is kept.
type Issue struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Column         string   `json:"column,omitempty"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// SortBySeverity orders issues critical first, keeping discovery order
// among equals
func SortBySeverity(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
}

// CountBySeverity tallies issues per severity
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, is := range issues {
		counts[is.Severity]++
	}
	return counts
}

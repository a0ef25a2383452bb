// Package quality analyzes a table for data quality issues and applies
// fixes for the issues a client selects.
package quality

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"datacleanr/internal/table"
)

const (
	// LargeDatasetRows is the row count above which a table is reported
	// as large
	LargeDatasetRows = 100000

	// dateSampleSize is how many cells of a date column are test parsed
	dateSampleSize = 100
)

var (
	dateKeywords     = []string{"date", "time"}
	nameSpecialChars = " -./\\()"
)

// Analyzer runs the quality checks
type Analyzer struct {
	newID func() string
}

// NewAnalyzer returns an analyzer that assigns random UUIDs to issues
func NewAnalyzer() *Analyzer {
	return &Analyzer{newID: uuid.NewString}
}

// Analyze runs the checks with a default analyzer
func Analyze(t *table.Table) []Issue {
	return NewAnalyzer().Analyze(t)
}

// Analyze runs every check and returns the issues sorted by severity
func (a *Analyzer) Analyze(t *table.Table) []Issue {
	var issues []Issue
	add := func(is Issue) {
		is.ID = a.newID()
		issues = append(issues, is)
	}

	checkDuplicates(t, add)
	checkMissing(t, add)
	checkMixedTypes(t, add)
	checkColumnNames(t, add)
	checkSingleValue(t, add)
	checkOutliers(t, add)
	checkWhitespace(t, add)
	checkDateFormats(t, add)
	checkSize(t, add)

	if issues == nil {
		issues = []Issue{}
	}
	SortBySeverity(issues)
	return issues
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func checkDuplicates(t *table.Table, add func(Issue)) {
	if n := table.DuplicateCount(t); n > 0 {
		add(Issue{
			Type:           TypeDuplicateRows,
			Severity:       SeverityMedium,
			Description:    fmt.Sprintf("Found %d duplicate rows", n),
			Recommendation: "Remove duplicates to ensure data integrity",
		})
	}
}

func checkMissing(t *table.Table, add func(Issue)) {
	total := 0
	for _, c := range t.Columns {
		total += c.NullCount()
	}
	if total == 0 {
		return
	}

	pct := percent(total, t.Size())
	sev := SeverityLow
	switch {
	case pct > 10:
		sev = SeverityHigh
	case pct > 5:
		sev = SeverityMedium
	}
	add(Issue{
		Type:           TypeMissingValues,
		Severity:       sev,
		Description:    fmt.Sprintf("Missing values detected: %d out of %d (%.2f%%)", total, t.Size(), pct),
		Recommendation: "Handle missing values using appropriate strategy (drop, fill with mean/median, etc.)",
	})

	for _, c := range t.Columns {
		n := c.NullCount()
		if n == 0 {
			continue
		}
		colPct := percent(n, t.NumRows())
		sev := SeverityLow
		switch {
		case colPct > 30:
			sev = SeverityHigh
		case colPct > 10:
			sev = SeverityMedium
		}
		add(Issue{
			Type:           TypeMissingValuesColumn,
			Severity:       sev,
			Column:         c.Name,
			Description:    fmt.Sprintf("Column '%s' has %d missing values (%.2f%%)", c.Name, n, colPct),
			Recommendation: fmt.Sprintf("Consider handling missing values in '%s' specifically", c.Name),
		})
	}
}

func checkMixedTypes(t *table.Table, add func(Issue)) {
	for _, c := range t.Columns {
		if c.Kind != table.KindText {
			continue
		}
		values := c.NonNull()
		if len(values) == 0 {
			continue
		}
		numeric := 0
		for _, v := range values {
			if _, ok := table.ToFloat(v); ok {
				numeric++
			}
		}
		if float64(numeric) > float64(len(values))*0.8 && numeric < len(values) {
			add(Issue{
				Type:           TypeDataTypeInconsistency,
				Severity:       SeverityMedium,
				Column:         c.Name,
				Description:    fmt.Sprintf("Column '%s' contains mixed data types (mostly numeric but stored as strings)", c.Name),
				Recommendation: fmt.Sprintf("Convert '%s' to numeric data type for better analysis", c.Name),
			})
		}
	}
}

func checkColumnNames(t *table.Table, add func(Issue)) {
	var bad []string
	for _, c := range t.Columns {
		if strings.ContainsAny(c.Name, nameSpecialChars) {
			bad = append(bad, c.Name)
		}
	}
	if len(bad) > 0 {
		add(Issue{
			Type:           TypeColumnNaming,
			Severity:       SeverityLow,
			Description:    "Columns with special characters detected: " + strings.Join(bad, ", "),
			Recommendation: "Standardize column names to use only alphanumeric characters and underscores",
		})
	}
}

func checkSingleValue(t *table.Table, add func(Issue)) {
	var single []string
	for _, c := range t.Columns {
		if c.NullCount() < len(c.Values) && c.DistinctCount() <= 1 {
			single = append(single, c.Name)
		}
	}
	if len(single) > 0 {
		add(Issue{
			Type:           TypeSingleValueColumns,
			Severity:       SeverityLow,
			Description:    "Columns with only one unique value: " + strings.Join(single, ", "),
			Recommendation: "Consider removing columns with only one value as they provide no analytical value",
		})
	}
}

// OutlierCount counts the numeric cells of c outside its Tukey fence
func OutlierCount(c *table.Column) (int, table.Fence) {
	fence, ok := table.TukeyFence(c)
	if !ok {
		return 0, fence
	}
	n := 0
	for _, v := range c.Values {
		if f, ok := table.ToFloat(v); ok && fence.Outside(f) {
			n++
		}
	}
	return n, fence
}

func checkOutliers(t *table.Table, add func(Issue)) {
	for _, c := range t.Columns {
		if !c.Kind.IsNumeric() {
			continue
		}
		n, _ := OutlierCount(c)
		if n == 0 {
			continue
		}
		pct := percent(n, t.NumRows())
		sev := SeverityMedium
		if pct > 5 {
			sev = SeverityHigh
		}
		add(Issue{
			Type:           TypeOutliers,
			Severity:       sev,
			Column:         c.Name,
			Description:    fmt.Sprintf("Column '%s' contains %d outliers (%.2f%%)", c.Name, n, pct),
			Recommendation: fmt.Sprintf("Investigate outliers in '%s' using visualization or statistical methods", c.Name),
		})
	}
}

func checkWhitespace(t *table.Table, add func(Issue)) {
	for _, c := range t.Columns {
		if c.Kind != table.KindText {
			continue
		}
		for _, v := range c.Values {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != s {
				add(Issue{
					Type:           TypeWhitespaceIssues,
					Severity:       SeverityLow,
					Column:         c.Name,
					Description:    fmt.Sprintf("Column '%s' contains leading/trailing whitespace", c.Name),
					Recommendation: fmt.Sprintf("Trim whitespace in '%s' for consistency", c.Name),
				})
				break
			}
		}
	}
}

func checkDateFormats(t *table.Table, add func(Issue)) {
	for _, c := range t.ColumnsMatching(dateKeywords...) {
		if c.Kind != table.KindText {
			continue
		}
		sample := c.Values
		if len(sample) > dateSampleSize {
			sample = sample[:dateSampleSize]
		}
		for _, v := range sample {
			if v == nil {
				continue
			}
			if _, ok := table.ParseDate(v); !ok {
				add(Issue{
					Type:           TypeDateFormatInconsistency,
					Severity:       SeverityMedium,
					Column:         c.Name,
					Description:    fmt.Sprintf("Column '%s' has inconsistent date formats", c.Name),
					Recommendation: fmt.Sprintf("Standardize date formats in '%s'", c.Name),
				})
				break
			}
		}
	}
}

func checkSize(t *table.Table, add func(Issue)) {
	switch rows := t.NumRows(); {
	case rows == 0:
		add(Issue{
			Type:           TypeEmptyDataset,
			Severity:       SeverityCritical,
			Description:    "Dataset is empty",
			Recommendation: "Upload a non-empty dataset",
		})
	case rows > LargeDatasetRows:
		add(Issue{
			Type:           TypeLargeDataset,
			Severity:       SeverityInfo,
			Description:    fmt.Sprintf("Large dataset detected (%d rows)", rows),
			Recommendation: "Processing may take longer for large datasets",
		})
	}
}

package quality

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"datacleanr/internal/cleaning"
	"datacleanr/internal/table"
)

// legacySelectorPrefix marks positional selectors of the form issue-<index>
const legacySelectorPrefix = "issue-"

// FixResult reports what happened to one selected issue
type FixResult struct {
	IssueID string              `json:"issue_id"`
	Type    string              `json:"type,omitempty"`
	Status  cleaning.StepStatus `json:"status"`
	Message string              `json:"message,omitempty"`
}

// fixFunc repairs one issue in place and describes what it did. A table
// replacing t is returned when rows change.
type fixFunc func(t *table.Table, is Issue) (*table.Table, string, error)

// errSkip marks an issue that the handler could not act on
type errSkip struct{ reason string }

func (e errSkip) Error() string { return e.reason }

// Fixer applies fixes for selected issues
type Fixer struct {
	logger   *slog.Logger
	handlers map[string]fixFunc
}

// NewFixer creates a fixer with the built-in handlers
func NewFixer(logger *slog.Logger) *Fixer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fixer{
		logger: logger.With(slog.String("component", "issue_fixer")),
		handlers: map[string]fixFunc{
			TypeDuplicateRows:           fixDuplicates,
			TypeMissingValues:           fixMissing,
			TypeMissingValuesColumn:     fixMissingColumn,
			TypeOutliers:                fixOutliers,
			TypeWhitespaceIssues:        fixWhitespace,
			TypeDateFormatInconsistency: fixDates,
		},
	}
}

// Handles reports whether an issue type has a fix
func (f *Fixer) Handles(issueType string) bool {
	_, ok := f.handlers[issueType]
	return ok
}

// Resolve finds the issue a selector refers to: an issue ID, or the
// positional issue-<index> form
func Resolve(issues []Issue, selector string) (Issue, bool) {
	for _, is := range issues {
		if is.ID != "" && is.ID == selector {
			return is, true
		}
	}
	if strings.HasPrefix(selector, legacySelectorPrefix) {
		idx, err := strconv.Atoi(strings.TrimPrefix(selector, legacySelectorPrefix))
		if err == nil && idx >= 0 && idx < len(issues) {
			return issues[idx], true
		}
	}
	return Issue{}, false
}

// Fix applies the handler of every selected issue in selection order and
// returns the fixed copy. The input table is not modified. One result is
// returned per distinct selector.
func (f *Fixer) Fix(ctx context.Context, t *table.Table, issues []Issue, selected []string) (*table.Table, []FixResult) {
	current := t.Clone()
	results := make([]FixResult, 0, len(selected))
	seen := make(map[string]bool, len(selected))

	for _, sel := range selected {
		if seen[sel] {
			continue
		}
		seen[sel] = true

		is, ok := Resolve(issues, sel)
		if !ok {
			results = append(results, FixResult{IssueID: sel, Status: cleaning.StatusSkipped, Message: "issue not found in the analysis report"})
			continue
		}
		res := FixResult{IssueID: sel, Type: is.Type}

		handler, ok := f.handlers[is.Type]
		if !ok {
			res.Status = cleaning.StatusSkipped
			res.Message = "no automatic fix for this issue type"
			results = append(results, res)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Status = cleaning.StatusFailed
			res.Message = err.Error()
			results = append(results, res)
			continue
		}

		next, msg, err := f.apply(handler, current, is)
		switch e := err.(type) {
		case nil:
			current = next
			res.Status = cleaning.StatusSuccess
			res.Message = msg
		case errSkip:
			res.Status = cleaning.StatusSkipped
			res.Message = e.reason
		default:
			res.Status = cleaning.StatusFailed
			res.Message = err.Error()
			f.logger.WarnContext(ctx, "issue fix failed",
				slog.String("issue_id", sel),
				slog.String("type", is.Type),
				slog.String("error", err.Error()))
		}
		results = append(results, res)
	}
	return current, results
}

func (f *Fixer) apply(handler fixFunc, t *table.Table, is Issue) (next *table.Table, msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, msg, err = nil, "", fmt.Errorf("fix for %s panicked: %v", is.Type, r)
		}
	}()
	return handler(t.Clone(), is)
}

func targetColumn(t *table.Table, is Issue) (*table.Column, error) {
	if is.Column == "" {
		return nil, errSkip{"issue does not name a column"}
	}
	c, ok := t.Column(is.Column)
	if !ok {
		return nil, errSkip{fmt.Sprintf("column '%s' no longer exists", is.Column)}
	}
	return c, nil
}

func fixDuplicates(t *table.Table, _ Issue) (*table.Table, string, error) {
	before := t.NumRows()
	t = table.DropDuplicates(t)
	return t, fmt.Sprintf("removed %d duplicate rows", before-t.NumRows()), nil
}

// fillColumn fills numeric columns with the mean and others with the mode
func fillColumn(c *table.Column) int {
	if c.Kind.IsNumeric() {
		return cleaning.FillMean(c)
	}
	return cleaning.FillMode(c)
}

func fixMissing(t *table.Table, _ Issue) (*table.Table, string, error) {
	filled := 0
	for _, c := range t.Columns {
		filled += fillColumn(c)
	}
	return t, fmt.Sprintf("filled %d missing values", filled), nil
}

func fixMissingColumn(t *table.Table, is Issue) (*table.Table, string, error) {
	c, err := targetColumn(t, is)
	if err != nil {
		return nil, "", err
	}
	n := fillColumn(c)
	return t, fmt.Sprintf("filled %d missing values in '%s'", n, c.Name), nil
}

func fixOutliers(t *table.Table, is Issue) (*table.Table, string, error) {
	c, err := targetColumn(t, is)
	if err != nil {
		return nil, "", err
	}
	if !c.Kind.IsNumeric() {
		return nil, "", errSkip{fmt.Sprintf("column '%s' is not numeric", c.Name)}
	}
	n, fence := OutlierCount(c)
	if n == 0 {
		return t, fmt.Sprintf("no outliers left in '%s'", c.Name), nil
	}
	for i, v := range c.Values {
		f, ok := table.ToFloat(v)
		if !ok {
			continue
		}
		switch {
		case f < fence.Lower:
			c.Values[i] = fence.Lower
		case f > fence.Upper:
			c.Values[i] = fence.Upper
		}
	}
	table.Retype(c)
	return t, fmt.Sprintf("clipped %d outliers in '%s' to [%g, %g]", n, c.Name, fence.Lower, fence.Upper), nil
}

func fixWhitespace(t *table.Table, is Issue) (*table.Table, string, error) {
	if is.Column == "" {
		n := 0
		for _, c := range t.Columns {
			n += cleaning.TrimColumn(c)
		}
		return t, fmt.Sprintf("trimmed %d cells", n), nil
	}
	c, err := targetColumn(t, is)
	if err != nil {
		return nil, "", err
	}
	n := cleaning.TrimColumn(c)
	return t, fmt.Sprintf("trimmed %d cells in '%s'", n, c.Name), nil
}

func fixDates(t *table.Table, is Issue) (*table.Table, string, error) {
	c, err := targetColumn(t, is)
	if err != nil {
		return nil, "", err
	}
	failed := cleaning.StandardizeDateColumn(c)
	return t, fmt.Sprintf("standardized dates in '%s', %d unparseable values set to null", c.Name, failed), nil
}

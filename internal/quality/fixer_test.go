package quality

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/cleaning"
	"datacleanr/internal/table"
)

func newTestFixer() *Fixer {
	return NewFixer(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func find(t *testing.T, issues []Issue, issueType string) Issue {
	t.Helper()
	for _, is := range issues {
		if is.Type == issueType {
			return is
		}
	}
	t.Fatalf("no %s issue in report", issueType)
	return Issue{}
}

func TestFix_ByID(t *testing.T) {
	in := load(t, "name,score\n ann ,1\nbob,\nbob,\ncy,3\n")
	issues := Analyze(in)
	dup := find(t, issues, TypeDuplicateRows)
	ws := find(t, issues, TypeWhitespaceIssues)

	out, results := newTestFixer().Fix(context.Background(), in, issues, []string{dup.ID, ws.ID, "missing-id"})

	require.Len(t, results, 3)
	assert.Equal(t, cleaning.StatusSuccess, results[0].Status)
	assert.Equal(t, TypeDuplicateRows, results[0].Type)
	assert.Equal(t, cleaning.StatusSuccess, results[1].Status)
	assert.Equal(t, cleaning.StatusSkipped, results[2].Status)
	assert.Equal(t, "missing-id", results[2].IssueID)

	assert.Equal(t, 3, out.NumRows())
	name, _ := out.Column("name")
	assert.Equal(t, "ann", name.Values[0])
	assert.Equal(t, 4, in.NumRows(), "input must not be modified")
}

func TestFix_LegacySelectors(t *testing.T) {
	in := load(t, "v\n1\n2\n3\n4\n5\n100\n")
	issues := Analyze(in)
	require.Equal(t, TypeOutliers, issues[0].Type)

	out, results := newTestFixer().Fix(context.Background(), in, issues, []string{"issue-0", "issue-7", "issue-x"})

	require.Len(t, results, 3)
	assert.Equal(t, cleaning.StatusSuccess, results[0].Status)
	assert.Equal(t, cleaning.StatusSkipped, results[1].Status)
	assert.Equal(t, cleaning.StatusSkipped, results[2].Status)

	v, _ := out.Column("v")
	assert.Equal(t, 8.5, v.Values[5], "outlier clipped to the upper fence")
	assert.Equal(t, 1.0, v.Values[0])
}

func TestFix_MissingValues(t *testing.T) {
	in := load(t, "n,label\n1,a\n,a\n3,\n")
	issues := Analyze(in)

	out, results := newTestFixer().Fix(context.Background(), in, issues, []string{find(t, issues, TypeMissingValues).ID})
	require.Len(t, results, 1)
	assert.Equal(t, cleaning.StatusSuccess, results[0].Status)

	n, _ := out.Column("n")
	assert.Equal(t, []any{1.0, 2.0, 3.0}, n.Values)
	label, _ := out.Column("label")
	assert.Equal(t, []any{"a", "a", "a"}, label.Values)

	col := find(t, issues, TypeMissingValuesColumn)
	out, _ = newTestFixer().Fix(context.Background(), in, issues, []string{col.ID})
	target, _ := out.Column(col.Column)
	assert.Zero(t, target.NullCount())
}

func TestFix_UnhandledAndStaleIssues(t *testing.T) {
	in := load(t, "Bad Name,order_date\n1,2024-01-01\n2,soon\n")
	issues := Analyze(in)
	naming := find(t, issues, TypeColumnNaming)
	dates := find(t, issues, TypeDateFormatInconsistency)

	out, results := newTestFixer().Fix(context.Background(), in, issues, []string{naming.ID, dates.ID, dates.ID})
	require.Len(t, results, 2, "repeated selectors are applied once")
	assert.Equal(t, cleaning.StatusSkipped, results[0].Status)
	assert.Equal(t, cleaning.StatusSuccess, results[1].Status)
	d, _ := out.Column("order_date")
	assert.Equal(t, []any{"2024-01-01", nil}, d.Values)

	renamed := table.New("other")
	require.NoError(t, renamed.AppendRow("x"))
	_, results = newTestFixer().Fix(context.Background(), renamed, issues, []string{dates.ID})
	assert.Equal(t, cleaning.StatusSkipped, results[0].Status)
	assert.Contains(t, results[0].Message, "no longer exists")
}

func TestResolve(t *testing.T) {
	issues := []Issue{{ID: "a", Type: TypeOutliers}, {ID: "b", Type: TypeDuplicateRows}}

	is, ok := Resolve(issues, "b")
	require.True(t, ok)
	assert.Equal(t, TypeDuplicateRows, is.Type)

	is, ok = Resolve(issues, "issue-0")
	require.True(t, ok)
	assert.Equal(t, "a", is.ID)

	_, ok = Resolve(issues, "issue--1")
	assert.False(t, ok)
	_, ok = Resolve(nil, "a")
	assert.False(t, ok)
}

func TestFixer_Handles(t *testing.T) {
	f := newTestFixer()
	assert.True(t, f.Handles(TypeOutliers))
	assert.False(t, f.Handles(TypeColumnNaming))
}

package quality

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/table"
)

func load(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Load("input.csv", []byte(csv))
	require.NoError(t, err)
	return tbl
}

func types(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Type
	}
	return out
}

func TestAnalyze_EmptyTable(t *testing.T) {
	issues := Analyze(load(t, "id,amount\n"))

	require.Len(t, issues, 1)
	assert.Equal(t, TypeEmptyDataset, issues[0].Type)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.NotEmpty(t, issues[0].ID)
}

func TestAnalyze_CleanTable(t *testing.T) {
	issues := Analyze(load(t, "id,amount\n1,10\n2,11\n3,12\n"))
	assert.Empty(t, issues)
	assert.NotNil(t, issues)
}

func TestAnalyze_Outliers(t *testing.T) {
	issues := Analyze(load(t, "v\n1\n2\n3\n4\n5\n100\n"))

	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, TypeOutliers, is.Type)
	assert.Equal(t, "v", is.Column)
	assert.Equal(t, SeverityHigh, is.Severity, "1 of 6 rows is above 5%")
	assert.Equal(t, "Column 'v' contains 1 outliers (16.67%)", is.Description)
}

func TestAnalyze_Missing(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b\n")
	for i := 0; i < 10; i++ {
		if i < 4 {
			b.WriteString(strconv.Itoa(i) + ",\n")
		} else {
			b.WriteString(strconv.Itoa(i) + ",x" + strconv.Itoa(i) + "\n")
		}
	}
	issues := Analyze(load(t, b.String()))

	require.Len(t, issues, 2)
	assert.Equal(t, TypeMissingValues, issues[0].Type)
	assert.Equal(t, SeverityHigh, issues[0].Severity)
	assert.Equal(t, "Missing values detected: 4 out of 20 (20.00%)", issues[0].Description)
	assert.Equal(t, TypeMissingValuesColumn, issues[1].Type)
	assert.Equal(t, SeverityHigh, issues[1].Severity)
	assert.Equal(t, "b", issues[1].Column)
}

func TestAnalyze_SortedBySeverity(t *testing.T) {
	csv := "First Name,order_date,const,code\n" +
		" ann,2024-01-01,1,10\n" +
		"bob,yesterday,1,11\n" +
		"bob,yesterday,1,11\n" +
		"cy,2024-01-03,1,x12\n" +
		"di,2024-01-04,1,13\n" +
		"ed,2024-01-05,1,14\n" +
		"fay,2024-01-06,1,15\n"
	issues := Analyze(load(t, csv))

	got := types(issues)
	assert.Equal(t, []string{
		TypeDuplicateRows,
		TypeDataTypeInconsistency,
		TypeDateFormatInconsistency,
		TypeColumnNaming,
		TypeSingleValueColumns,
		TypeWhitespaceIssues,
	}, got)

	for i := 1; i < len(issues); i++ {
		assert.LessOrEqual(t, issues[i-1].Severity.Rank(), issues[i].Severity.Rank())
	}

	ids := map[string]bool{}
	for _, is := range issues {
		assert.False(t, ids[is.ID], "issue ids are unique")
		ids[is.ID] = true
	}
}

func TestAnalyze_LargeDataset(t *testing.T) {
	c := &table.Column{Name: "id", Kind: table.KindInteger, Values: make([]any, LargeDatasetRows+1)}
	for i := range c.Values {
		c.Values[i] = int64(i)
	}
	issues := Analyze(&table.Table{Columns: []*table.Column{c}})

	require.Len(t, issues, 1)
	assert.Equal(t, TypeLargeDataset, issues[0].Type)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 0, SeverityCritical.Rank())
	assert.Equal(t, 4, SeverityInfo.Rank())
	assert.Equal(t, 5, Severity("bogus").Rank())
}

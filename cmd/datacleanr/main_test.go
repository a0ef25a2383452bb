package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleanr/internal/quality"
	"datacleanr/internal/shared/testutil"
	"datacleanr/internal/table"
	"datacleanr/pkg/contracts"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeFile(t, "orders.csv", testutil.MessyCSV)

	out, err := runCmd(t, "analyze", "--json", path)
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "orders.csv", report.Filename)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, []string{"Customer Name", "Age", "Order Date", "Amount"}, report.Columns)
	assert.Equal(t, "Retail/E-commerce", report.Industry)
	assert.Contains(t, report.Suggestions, "remove_duplicates")
	assert.Contains(t, report.Suggestions, "deduplicate_customers")

	types := make([]string, 0, len(report.Issues))
	for _, is := range report.Issues {
		types = append(types, is.Type)
	}
	assert.Contains(t, types, quality.TypeDuplicateRows)
	assert.Contains(t, types, quality.TypeWhitespaceIssues)
}

func TestAnalyzeText(t *testing.T) {
	path := writeFile(t, "orders.csv", testutil.MessyCSV)

	out, err := runCmd(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "orders.csv: 4 rows, 4 columns")
	assert.Contains(t, out, "Retail/E-commerce")
	assert.Contains(t, out, "remove_duplicates")
}

func TestAnalyzeRulesFile(t *testing.T) {
	rules := writeFile(t, "rules.yaml", `
categories:
  - key: people
    label: People
    keywords: [customer, age]
    weight: 1
    suggestions: [anonymize_data]
    description: Personal records.
`)
	path := writeFile(t, "orders.csv", testutil.MessyCSV)

	out, err := runCmd(t, "analyze", "--json", "--rules", rules, path)
	require.NoError(t, err)

	var report analyzeReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "People", report.Industry)
	assert.Contains(t, report.Suggestions, "anonymize_data")
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{
			name: "missing argument",
			args: func(t *testing.T) []string { return []string{"analyze"} },
		},
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}
			},
		},
		{
			name: "unsupported format",
			args: func(t *testing.T) []string {
				return []string{"analyze", writeFile(t, "notes.txt", "a,b\n1,2\n")}
			},
		},
		{
			name: "missing rules file",
			args: func(t *testing.T) []string {
				return []string{"analyze", "--rules", "/does/not/exist.yaml", writeFile(t, "a.csv", "a\n1\n")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args(t)...)
			assert.Error(t, err)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())

	out, err = runCmd(t, "version", "--json")
	require.NoError(t, err)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, contracts.Version, info.Version)
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
}

func TestCleanSuggestedSteps(t *testing.T) {
	path := writeFile(t, "orders.csv", testutil.MessyCSV)

	out, err := runCmd(t, "clean", path)
	require.NoError(t, err)
	assert.Contains(t, out, "remove_duplicates")
	assert.Contains(t, out, "4 rows, 4 columns -> 3 rows")

	cleanedPath := filepath.Join(filepath.Dir(path), "cleaned_orders.csv")
	data, err := os.ReadFile(cleanedPath)
	require.NoError(t, err)
	cleaned, err := table.Load("cleaned_orders.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 3, cleaned.NumRows())
	assert.Contains(t, cleaned.Names(), "customer_name", "harmonize_columns was suggested")
}

func TestCleanExplicitSteps(t *testing.T) {
	path := writeFile(t, "orders.csv", testutil.MessyCSV)
	output := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := runCmd(t, "clean", "--steps", "trim_whitespace", "--missing", "fill_zero", "--format", "xlsx", "-o", output, path)
	require.NoError(t, err)
	assert.Contains(t, out, "trim_whitespace")
	assert.Contains(t, out, "handle_missing")
	assert.NotContains(t, out, "remove_duplicates")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	cleaned, err := table.Load("out.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 4, cleaned.NumRows())
	assert.Equal(t, []string{"Customer Name", "Age", "Order Date", "Amount"}, cleaned.Names())
}

func TestCleanErrors(t *testing.T) {
	path := writeFile(t, "orders.csv", testutil.MessyCSV)

	_, err := runCmd(t, "clean", "--format", "parquet", path)
	assert.Error(t, err)

	_, err = runCmd(t, "clean", "--missing", "guess", path)
	assert.Error(t, err)
}

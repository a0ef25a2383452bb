package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datacleanr/internal/industry"
	"datacleanr/internal/quality"
	"datacleanr/internal/suggest"
	"datacleanr/internal/table"
)

// analyzeReport is the --json output of the analyze command
type analyzeReport struct {
	Filename    string                   `json:"filename"`
	Rows        int                      `json:"rows"`
	Columns     []string                 `json:"columns"`
	Industry    string                   `json:"industry"`
	Confidence  float64                  `json:"confidence"`
	Features    []string                 `json:"features"`
	Description string                   `json:"description"`
	Suggestions []string                 `json:"suggestions"`
	Issues      []quality.Issue          `json:"issues"`
	Summary     map[quality.Severity]int `json:"summary"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		asJSON    bool
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Report quality issues and cleaning suggestions for a file",
		Long: `Analyze loads a CSV, TSV or Excel file, runs the quality checks and
classifies its industry, without starting the server or storing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := industry.DefaultRuleSet()
			if rulesFile != "" {
				loaded, err := industry.LoadRuleSet(rulesFile)
				if err != nil {
					return err
				}
				rules = loaded
			}

			report, err := analyzeFile(args[0], rules)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file overriding the built-in industry rules")
	return cmd
}

func analyzeFile(path string, rules *industry.RuleSet) (*analyzeReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	t, err := table.Load(name, data)
	if err != nil {
		return nil, err
	}

	issues := quality.Analyze(t)
	class := rules.Classify(name, t.Names())
	tags, description := rules.Suggestions(class)

	report := &analyzeReport{
		Filename:    name,
		Rows:        t.NumRows(),
		Columns:     t.Names(),
		Industry:    class.Industry,
		Confidence:  class.Confidence,
		Features:    class.Features,
		Description: description,
		Suggestions: industry.Merge(suggest.Suggest(t), tags),
		Issues:      issues,
		Summary:     quality.CountBySeverity(issues),
	}
	if report.Issues == nil {
		report.Issues = []quality.Issue{}
	}
	if report.Features == nil {
		report.Features = []string{}
	}
	return report, nil
}

func severityStyle(s quality.Severity) string {
	label := strings.ToUpper(string(s))
	switch s {
	case quality.SeverityCritical, quality.SeverityHigh:
		return errorStyle.Render(label)
	case quality.SeverityMedium:
		return warningStyle.Render(label)
	default:
		return infoStyle.Render(label)
	}
}

func printReport(w io.Writer, r *analyzeReport) {
	fmt.Fprintln(w, sectionStyle.Render("File"))
	fmt.Fprintf(w, "  %s: %d rows, %d columns\n", r.Filename, r.Rows, len(r.Columns))
	fmt.Fprintf(w, "  columns: %s\n\n", strings.Join(r.Columns, ", "))

	fmt.Fprintln(w, sectionStyle.Render("Industry"))
	fmt.Fprintf(w, "  %s (confidence %.2f)\n", r.Industry, r.Confidence)
	if len(r.Features) > 0 {
		fmt.Fprintf(w, "  matched: %s\n", strings.Join(r.Features, ", "))
	}
	fmt.Fprintf(w, "  %s\n\n", r.Description)

	fmt.Fprintln(w, sectionStyle.Render("Issues"))
	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "  "+successStyle.Render("No quality issues found"))
	}
	for _, is := range r.Issues {
		fmt.Fprintf(w, "  [%s] %s\n", severityStyle(is.Severity), is.Description)
		if is.Recommendation != "" {
			fmt.Fprintf(w, "      -> %s\n", is.Recommendation)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, sectionStyle.Render("Suggestions"))
	if len(r.Suggestions) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

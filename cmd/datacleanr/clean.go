package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datacleanr/internal/cleaning"
	"datacleanr/internal/exporter"
	"datacleanr/internal/industry"
	"datacleanr/internal/suggest"
	"datacleanr/internal/table"
)

func newCleanCmd() *cobra.Command {
	var (
		output    string
		format    string
		steps     []string
		missing   string
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Clean a file offline and write the result",
		Long: `Clean runs the cleaning pipeline on a local file. Without --steps it
applies every suggested step, generic and industry specific, the same
tags the analyze command prints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			rules := industry.DefaultRuleSet()
			if rulesFile != "" {
				if rules, err = industry.LoadRuleSet(rulesFile); err != nil {
					return err
				}
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			name := filepath.Base(args[0])
			t, err := table.Load(name, data)
			if err != nil {
				return err
			}

			if len(steps) == 0 {
				tags, _ := rules.Suggestions(rules.Classify(name, t.Names()))
				steps = industry.Merge(suggest.Suggest(t), tags)
			}
			opts := cleaning.FromTags(steps)
			if missing != "" {
				opts.HandleMissing = cleaning.MissingStrategy(missing)
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			cleaned, report := cleaning.NewEngine(nil).Clean(context.Background(), t, opts)

			if output == "" {
				base := strings.TrimSuffix(name, filepath.Ext(name))
				output = filepath.Join(filepath.Dir(args[0]), fmt.Sprintf("cleaned_%s.%s", base, f))
			}
			if err := writeTable(output, f, cleaned); err != nil {
				return err
			}

			printCleanReport(cmd.OutOrStdout(), report, t, cleaned, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default cleaned_<name>.<format> next to the input)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringSliceVar(&steps, "steps", nil, "Comma separated steps to run instead of the suggested ones")
	cmd.Flags().StringVar(&missing, "missing", "", "Missing value strategy: none, drop, fill_mean or fill_zero")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file overriding the built-in industry rules")
	return cmd
}

func writeTable(path string, f exporter.Format, t *table.Table) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	write := exporter.WriteCSV
	if f == exporter.FormatXLSX {
		write = exporter.WriteXLSX
	}
	if err := write(out, t); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func printCleanReport(w io.Writer, report cleaning.Report, before, after *table.Table, output string) {
	fmt.Fprintln(w, sectionStyle.Render("Steps"))
	if len(report) == 0 {
		fmt.Fprintln(w, "  none requested")
	}
	for _, r := range report {
		var status string
		switch r.Status {
		case cleaning.StatusSuccess:
			status = successStyle.Render(string(r.Status))
		case cleaning.StatusSkipped:
			status = warningStyle.Render(string(r.Status))
		default:
			status = errorStyle.Render(string(r.Status))
		}
		fmt.Fprintf(w, "  %-26s %s", r.Step, status)
		if r.Message != "" {
			fmt.Fprintf(w, "  %s", r.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d rows, %d columns -> %d rows, %d columns\n",
		before.NumRows(), before.NumCols(), after.NumRows(), after.NumCols())
	fmt.Fprintln(w, infoStyle.Render("wrote "+output))
}

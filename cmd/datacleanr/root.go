package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"datacleanr/pkg/contracts"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Underline(true)
)

// newRootCmd builds the command tree. Running the bare command starts the server.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "datacleanr",
		Short: "Upload, analyze and clean tabular data files",
		Long: `DataCleanr is an HTTP service for cleaning CSV, TSV and Excel files.

Running datacleanr without a subcommand starts the API server, configured
from the environment, an optional .env file and config.yaml.

Quick Start:
  datacleanr                       # start the server
  datacleanr analyze orders.csv    # report quality issues for a file
  datacleanr version               # print build information`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newCleanCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

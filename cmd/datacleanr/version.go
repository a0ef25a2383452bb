package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"datacleanr/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := contracts.GetVersionInfo()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintln(out, successStyle.Render(contracts.GetVersionString()))
			fmt.Fprintf(out, "  stage:   %s\n", info.Stage)
			fmt.Fprintf(out, "  api:     %s\n", info.APIVersion)
			fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
			fmt.Fprintf(out, "  commit:  %s\n", info.GitCommit)
			fmt.Fprintf(out, "  runtime: %s %s/%s\n", info.GoVersion, info.OS, info.Architecture)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}

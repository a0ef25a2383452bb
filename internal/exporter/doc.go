// Package exporter writes cleaned tables to the scratch directory so they
// can be downloaded later.
//
// Every clean produces two files per session, overwritten on each call:
//
//	<session id>_cleaned.csv
//	<session id>_cleaned.xlsx
//
// Example usage:
//
//	exp, err := exporter.New("/tmp/datacleanr", logger)
//	result := exp.Export(ctx, sessionID, cleaned)
//	if result.HasErrors() {
//		// files that failed are missing, the others are usable
//	}
//	path, err := exp.Path(sessionID, exporter.FormatCSV)
package exporter

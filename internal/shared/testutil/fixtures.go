package testutil

import (
	"testing"

	"datacleanr/internal/table"
)

// MessyCSV has one duplicate row, nulls, padded text, a mixed-case header
// and a date column.
const MessyCSV = "Customer Name,Age,Order Date,Amount\n" +
	" Alice ,30,2024-01-05,10.5\n" +
	"Bob,,01/06/2024,20\n" +
	" Alice ,30,2024-01-05,10.5\n" +
	"Carol,41,not a date,\n"

// LoadCSV parses text as an uploaded CSV and fails the test on error
func LoadCSV(t *testing.T, text string) *table.Table {
	t.Helper()
	tbl, err := table.Load("fixture.csv", []byte(text))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return tbl
}

package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"datacleanr/internal/table"
)

// WriteCSV writes the header and every row of t as CSV. Nulls are empty
// fields.
func WriteCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			record[j] = table.FormatValue(c.Values[i])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

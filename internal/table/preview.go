package table

import (
	"math"
	"time"
)

// PreviewRows is how many rows previews carry
const PreviewRows = 20

// Preview renders the first n rows as JSON-ready records keyed by column
// name. Nulls become nil and timestamps ISO strings.
func Preview(t *Table, n int) []map[string]any {
	rows := t.NumRows()
	if n < rows {
		rows = n
	}
	out := make([]map[string]any, rows)
	for i := 0; i < rows; i++ {
		rec := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			rec[c.Name] = jsonCell(c.Values[i])
		}
		out[i] = rec
	}
	return out
}

func jsonCell(v any) any {
	switch x := v.(type) {
	case time.Time:
		return FormatTimestamp(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return v
}

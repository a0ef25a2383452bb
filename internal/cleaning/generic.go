package cleaning

import (
	"regexp"
	"strings"

	"datacleanr/internal/table"
)

// DateKeywords mark columns holding dates, including the Spanish "fecha"
var DateKeywords = []string{"date", "time", "fecha"}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func removeDuplicates(t *table.Table, _ Options) (*table.Table, outcome, error) {
	before := t.NumRows()
	t = table.DropDuplicates(t)
	return t, done(nil, "removed %d duplicate rows", before-t.NumRows()), nil
}

// HarmonizeName turns a column name into a lowercase identifier
func HarmonizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = nonIdentifier.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

func harmonizeColumns(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var renamed []string
	for _, c := range t.Columns {
		if n := HarmonizeName(c.Name); n != c.Name {
			c.Name = n
			renamed = append(renamed, n)
		}
	}
	return t, done(renamed, "renamed %d columns", len(renamed)), nil
}

func handleMissing(t *table.Table, o Options) (*table.Table, outcome, error) {
	switch o.HandleMissing {
	case MissingDrop:
		before := t.NumRows()
		t = t.Filter(func(row int) bool {
			for _, c := range t.Columns {
				if c.Values[row] == nil {
					return false
				}
			}
			return true
		})
		return t, done(nil, "dropped %d rows with missing values", before-t.NumRows()), nil

	case MissingFillMean:
		var filled []string
		for _, c := range t.Columns {
			if !c.Kind.IsNumeric() || c.NullCount() == 0 {
				continue
			}
			if n := FillMean(c); n > 0 {
				filled = append(filled, c.Name)
			}
		}
		return t, done(filled, "filled missing values with the column mean in %d columns", len(filled)), nil

	case MissingFillZero:
		var filled []string
		total := 0
		for _, c := range t.Columns {
			if n := FillZero(c); n > 0 {
				filled = append(filled, c.Name)
				total += n
			}
		}
		return t, done(filled, "filled %d missing values with zero", total), nil
	}
	return t, skip("unknown strategy %q", o.HandleMissing), nil
}

// FillMean replaces nulls in a numeric column with its mean and returns
// how many cells were filled
func FillMean(c *table.Column) int {
	mean, ok := table.Mean(c)
	if !ok {
		return 0
	}
	n := 0
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = mean
			n++
		}
	}
	table.Retype(c)
	return n
}

// FillMode replaces nulls with the most frequent value
func FillMode(c *table.Column) int {
	mode, ok := table.Mode(c)
	if !ok {
		return 0
	}
	n := 0
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = mode
			n++
		}
	}
	return n
}

// FillZero replaces nulls with zero
func FillZero(c *table.Column) int {
	var zero any = int64(0)
	if c.Kind == table.KindFloat {
		zero = 0.0
	}
	n := 0
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = zero
			n++
		}
	}
	if n > 0 && c.Kind != table.KindFloat && c.Kind != table.KindInteger {
		table.Retype(c)
	}
	return n
}

// TrimColumn strips surrounding whitespace from string cells and returns
// how many changed
func TrimColumn(c *table.Column) int {
	n := 0
	for i, v := range c.Values {
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != s {
				c.Values[i] = trimmed
				n++
			}
		}
	}
	return n
}

func trimWhitespace(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var cols []string
	total := 0
	for _, c := range t.Columns {
		if n := TrimColumn(c); n > 0 {
			cols = append(cols, c.Name)
			total += n
		}
	}
	return t, done(cols, "trimmed %d cells", total), nil
}

// StandardizeDateColumn rewrites every cell as an ISO date. Cells that do
// not parse become null. It returns how many cells were nulled.
func StandardizeDateColumn(c *table.Column) int {
	failed := 0
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		d, ok := table.ParseDate(v)
		if !ok {
			if _, isString := v.(string); !isString {
				d, ok = table.ParseDate(table.FormatValue(v))
			}
		}
		if !ok {
			c.Values[i] = nil
			failed++
			continue
		}
		c.Values[i] = d.Format(table.ISODate)
	}
	c.Kind = table.KindText
	return failed
}

func standardizeDates(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(DateKeywords...)
	if len(cols) == 0 {
		return t, skip("no date columns found"), nil
	}
	names := make([]string, 0, len(cols))
	failed := 0
	for _, c := range cols {
		failed += StandardizeDateColumn(c)
		names = append(names, c.Name)
	}
	return t, done(names, "standardized %d date columns, %d unparseable values set to null", len(names), failed), nil
}

func reorderColumns(t *table.Table, _ Options) (*table.Table, outcome, error) {
	t.SortColumns()
	return t, done(t.Names(), "sorted %d columns by name", t.NumCols()), nil
}

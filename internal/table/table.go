package table

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the inferred scalar type of a column
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
)

// String returns the lowercase kind name used in API responses
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// IsNumeric reports whether values of this kind are numbers
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) Kind {
	switch s {
	case "integer":
		return KindInteger
	case "float":
		return KindFloat
	case "boolean":
		return KindBoolean
	case "timestamp":
		return KindTimestamp
	default:
		return KindText
	}
}

// Column is a named, typed sequence of cells. A nil cell is null.
// Non-null cells hold string, int64, float64, bool or time.Time.
// Text columns may hold mixed scalars after fill operations.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	values := make([]any, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Kind: c.Kind, Values: values}
}

// NullCount returns the number of null cells
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// NonNull returns the non-null cells in row order
func (c *Column) NonNull() []any {
	out := make([]any, 0, len(c.Values))
	for _, v := range c.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Floats returns the numeric value of every non-null cell that can be
// read as a number
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// DistinctCount counts distinct non-null cells
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		seen[cellKey(v)] = struct{}{}
	}
	return len(seen)
}

// Table is an ordered set of equally long columns
type Table struct {
	Columns []*Column
}

// New creates an empty table with the given text columns
func New(names ...string) *Table {
	t := &Table{Columns: make([]*Column, 0, len(names))}
	for _, name := range names {
		t.Columns = append(t.Columns, &Column{Name: name, Kind: KindText})
	}
	return t
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Size returns the number of cells
func (t *Table) Size() int {
	return t.NumRows() * t.NumCols()
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns the cells of row i
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// AppendRow appends one row; the row must have one cell per column
func (t *Table) AppendRow(cells ...any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	for j, c := range t.Columns {
		c.Values = append(c.Values, cells[j])
	}
	return nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// Take returns a new table holding only the given rows, in the given order
func (t *Table) Take(rows []int) *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]any, len(rows))
		for k, r := range rows {
			values[k] = c.Values[r]
		}
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	return out
}

// Filter keeps the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// SortColumns reorders columns alphabetically by name
func (t *Table) SortColumns() {
	sort.SliceStable(t.Columns, func(i, j int) bool {
		return t.Columns[i].Name < t.Columns[j].Name
	})
}

// ColumnsMatching returns the columns whose lowercased name contains any of
// the keywords
func (t *Table) ColumnsMatching(keywords ...string) []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if NameMatches(c.Name, keywords...) {
			out = append(out, c)
		}
	}
	return out
}

// NameMatches reports whether the lowercased name contains any keyword
func NameMatches(name string, keywords ...string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

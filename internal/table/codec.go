package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type columnJSON struct {
	Name   string            `json:"name"`
	Kind   string            `json:"kind"`
	Values []json.RawMessage `json:"values"`
}

type tableJSON struct {
	Columns []columnJSON `json:"columns"`
}

// MarshalJSON encodes the table column-wise, keeping kinds
func (t *Table) MarshalJSON() ([]byte, error) {
	doc := tableJSON{Columns: make([]columnJSON, len(t.Columns))}
	for j, c := range t.Columns {
		cj := columnJSON{Name: c.Name, Kind: c.Kind.String(), Values: make([]json.RawMessage, len(c.Values))}
		for i, v := range c.Values {
			if ts, ok := v.(time.Time); ok {
				v = ts.Format(time.RFC3339Nano)
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
			}
			// whole floats keep a decimal point so they decode as floats
			if _, ok := v.(float64); ok && !bytes.ContainsAny(raw, ".eE") {
				raw = append(raw, ".0"...)
			}
			cj.Values[i] = raw
		}
		doc.Columns[j] = cj
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a table written by MarshalJSON
func (t *Table) UnmarshalJSON(data []byte) error {
	var doc tableJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	t.Columns = make([]*Column, len(doc.Columns))
	for j, cj := range doc.Columns {
		col := &Column{Name: cj.Name, Kind: ParseKind(cj.Kind), Values: make([]any, len(cj.Values))}
		for i, raw := range cj.Values {
			v, err := decodeCell(col.Kind, raw)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", cj.Name, i, err)
			}
			col.Values[i] = v
		}
		t.Columns[j] = col
	}
	return nil
}

func decodeCell(kind Kind, raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		if kind == KindFloat {
			return x.Float64()
		}
		if !strings.ContainsAny(x.String(), ".eE") {
			if n, err := x.Int64(); err == nil {
				return n, nil
			}
		}
		return x.Float64()
	case string:
		if kind == KindTimestamp {
			return time.Parse(time.RFC3339Nano, x)
		}
		return x, nil
	case bool:
		return x, nil
	}
	return nil, fmt.Errorf("unexpected cell %s", string(raw))
}

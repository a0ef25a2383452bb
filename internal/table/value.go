package table

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// nullTokens are the raw cell spellings read as null
var nullTokens = map[string]struct{}{
	"":       {},
	"NA":     {},
	"N/A":    {},
	"n/a":    {},
	"NaN":    {},
	"nan":    {},
	"NULL":   {},
	"null":   {},
	"None":   {},
	"#N/A":   {},
	"<NA>":   {},
	"-NaN":   {},
	"-nan":   {},
	"#NA":    {},
	"NaT":    {},
	"#NULL!": {},
}

// IsNullToken reports whether a raw cell is read as null
func IsNullToken(raw string) bool {
	_, ok := nullTokens[raw]
	return ok
}

// parseInt reads a plain integer cell
func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

// ParseFloat reads a finite number from text. Infinities are rejected so
// every number stays JSON encodable.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// ToFloat reads a cell as a number. Text cells are parsed.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		return ParseFloat(x)
	}
	return 0, false
}

// FormatValue renders a cell as text the way it is written to CSV
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case time.Time:
		return FormatTimestamp(x)
	}
	return ""
}

// FormatTimestamp renders a timestamp as an ISO date, adding the clock only
// when it is not midnight
func FormatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(ISODate)
	}
	return t.Format("2006-01-02 15:04:05")
}

// cellKey is a type-tagged canonical encoding of a cell
func cellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case string:
		return "s" + x
	case int64:
		// integers and integral floats compare equal, as numbers do
		return "n" + strconv.FormatFloat(float64(x), 'g', -1, 64)
	case float64:
		return "n" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "b1"
		}
		return "b0"
	case time.Time:
		return "t" + x.UTC().Format(time.RFC3339Nano)
	}
	return "?"
}

// rowFingerprint hashes the selected cells of one row
func rowFingerprint(t *Table, row int, cols []int) [32]byte {
	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte
	for _, j := range cols {
		key := cellKey(t.Columns[j].Values[row])
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(key)))
		h.Write(lenBuf[:])
		h.Write([]byte(key))
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// DuplicateMask marks every row equal to an earlier row over the given
// columns (all columns when none are given). The first occurrence is kept.
func DuplicateMask(t *Table, columns ...string) []bool {
	var cols []int
	if len(columns) == 0 {
		cols = make([]int, len(t.Columns))
		for j := range t.Columns {
			cols[j] = j
		}
	} else {
		for _, name := range columns {
			for j, c := range t.Columns {
				if c.Name == name {
					cols = append(cols, j)
					break
				}
			}
		}
	}

	mask := make([]bool, t.NumRows())
	seen := make(map[[32]byte]struct{}, t.NumRows())
	for i := range mask {
		fp := rowFingerprint(t, i, cols)
		if _, dup := seen[fp]; dup {
			mask[i] = true
			continue
		}
		seen[fp] = struct{}{}
	}
	return mask
}

// DuplicateCount counts rows marked by DuplicateMask
func DuplicateCount(t *Table, columns ...string) int {
	n := 0
	for _, dup := range DuplicateMask(t, columns...) {
		if dup {
			n++
		}
	}
	return n
}

// DropDuplicates returns the table without duplicate rows
func DropDuplicates(t *Table, columns ...string) *Table {
	mask := DuplicateMask(t, columns...)
	return t.Filter(func(row int) bool { return !mask[row] })
}

// inferColumn converts raw text cells into typed cells and picks the
// narrowest kind that fits every non-null cell
func inferColumn(name string, raw []string) *Column {
	col := &Column{Name: name, Values: make([]any, len(raw))}

	allInt, allFloat, allBool, seen := true, true, true, false
	for _, s := range raw {
		if IsNullToken(s) {
			continue
		}
		seen = true
		if allInt {
			if _, ok := parseInt(s); !ok {
				allInt = false
			}
		}
		if allFloat {
			if _, ok := ParseFloat(s); !ok {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(s); !ok {
				allBool = false
			}
		}
	}

	switch {
	case !seen:
		col.Kind = KindText
	case allInt:
		col.Kind = KindInteger
	case allFloat:
		col.Kind = KindFloat
	case allBool:
		col.Kind = KindBoolean
	default:
		col.Kind = KindText
	}

	for i, s := range raw {
		if IsNullToken(s) {
			continue
		}
		switch col.Kind {
		case KindInteger:
			n, _ := parseInt(s)
			col.Values[i] = n
		case KindFloat:
			f, _ := ParseFloat(s)
			col.Values[i] = f
		case KindBoolean:
			b, _ := parseBool(s)
			col.Values[i] = b
		default:
			col.Values[i] = s
		}
	}
	return col
}

// ParseNumber reads text as an int64 when it is a plain integer and as a
// float64 otherwise
func ParseNumber(s string) (any, bool) {
	if n, ok := parseInt(s); ok {
		return n, true
	}
	if f, ok := ParseFloat(s); ok {
		return f, true
	}
	return nil, false
}

// Retype sets the column kind from the cells it now holds. Integer cells
// are widened to float when floats are mixed in.
func Retype(c *Column) {
	ints, floats, bools, times, others := 0, 0, 0, 0, 0
	for _, v := range c.Values {
		switch v.(type) {
		case nil:
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
		default:
			others++
		}
	}

	switch nonNull := ints + floats + bools + times + others; {
	case nonNull == 0:
		// all-null columns keep their kind
	case ints == nonNull:
		c.Kind = KindInteger
	case ints+floats == nonNull:
		c.Kind = KindFloat
		for i, v := range c.Values {
			if n, ok := v.(int64); ok {
				c.Values[i] = float64(n)
			}
		}
	case bools == nonNull:
		c.Kind = KindBoolean
	case times == nonNull:
		c.Kind = KindTimestamp
	default:
		c.Kind = KindText
	}
}

package table

import (
	"strings"
	"time"
)

// ISODate is the layout dates are standardized to
const ISODate = "2006-01-02"

// dateLayouts are tried in order; month-first wins over day-first for
// ambiguous slash dates
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"01-02-2006",
	"02-01-2006",
	"02.01.2006",
	"01/02/06",
	"1/2/06",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon Jan 2 15:04:05 2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// ParseDate parses a cell as a timestamp. Strings are tried against the
// known layouts; time values pass through. Numbers are not dates.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" || IsNullToken(s) {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

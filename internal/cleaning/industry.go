package cleaning

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"datacleanr/internal/table"
)

// RedactedValue replaces every cell of an anonymized column
const RedactedValue = "***REDACTED***"

// column roles, matched as lowercase substrings of column names
var (
	customerKeywords  = []string{"customer", "client", "user", "name", "email"}
	addressKeywords   = []string{"address"}
	phoneKeywords     = []string{"phone", "mobile", "tel"}
	accountKeywords   = []string{"account", "acct"}
	sensitiveKeywords = []string{"name", "address", "phone", "ssn", "social"}
	codeKeywords      = []string{"code", "icd", "cpt"}
	unitKeywords      = []string{"temp", "temperature", "pressure", "weight", "length"}
	timeGapKeywords   = []string{"date", "time"}
)

const minSmoothingPoints = 10

// mapText rewrites every non-null cell through fn and marks the column
// as text
func mapText(c *table.Column, fn func(string) string) {
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		c.Values[i] = fn(table.FormatValue(v))
	}
	c.Kind = table.KindText
}

func names(cols []*table.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func deduplicateCustomers(t *table.Table, _ Options) (*table.Table, outcome, error) {
	keys := names(t.ColumnsMatching(customerKeywords...))
	if len(keys) < 2 {
		return t, skip("need at least two customer identifier columns, found %d", len(keys)), nil
	}
	before := t.NumRows()
	t = table.DropDuplicates(t, keys...)
	return t, done(keys, "removed %d duplicate customer rows", before-t.NumRows()), nil
}

func standardizeAddresses(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(addressKeywords...)
	if len(cols) == 0 {
		return t, skip("no address columns found"), nil
	}
	caser := cases.Title(language.Und)
	for _, c := range cols {
		mapText(c, func(s string) string {
			return caser.String(strings.TrimSpace(s))
		})
	}
	return t, done(names(cols), "standardized %d address columns", len(cols)), nil
}

var phoneReplacer = strings.NewReplacer("-", "", " ", "", "(", "", ")", "")

func normalizePhoneNumbers(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(phoneKeywords...)
	if len(cols) == 0 {
		return t, skip("no phone columns found"), nil
	}
	for _, c := range cols {
		mapText(c, phoneReplacer.Replace)
	}
	return t, done(names(cols), "normalized %d phone columns", len(cols)), nil
}

func keepAlphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func validateAccounts(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(accountKeywords...)
	if len(cols) == 0 {
		return t, skip("no account columns found"), nil
	}
	for _, c := range cols {
		mapText(c, keepAlphanumeric)
	}
	return t, done(names(cols), "validated %d account columns", len(cols)), nil
}

func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func standardizeTransactions(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var cols []*table.Column
	for _, c := range t.Columns {
		if table.NameMatches(c.Name, "currency") ||
			(table.NameMatches(c.Name, "transaction", "txn") && table.NameMatches(c.Name, "type", "status", "code")) {
			if c.Kind == table.KindText {
				cols = append(cols, c)
			}
		}
	}
	if len(cols) == 0 {
		return t, skip("no transaction type or currency columns found"), nil
	}
	for _, c := range cols {
		mapText(c, upperTrim)
	}
	return t, done(names(cols), "standardized %d transaction columns", len(cols)), nil
}

func anonymizeData(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(sensitiveKeywords...)
	if len(cols) == 0 {
		return t, skip("no sensitive columns found"), nil
	}
	for _, c := range cols {
		for i := range c.Values {
			c.Values[i] = RedactedValue
		}
		c.Kind = table.KindText
	}
	return t, done(names(cols), "redacted %d sensitive columns", len(cols)), nil
}

func standardizeMedicalCodes(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(codeKeywords...)
	if len(cols) == 0 {
		return t, skip("no code columns found"), nil
	}
	for _, c := range cols {
		mapText(c, upperTrim)
	}
	return t, done(names(cols), "standardized %d code columns", len(cols)), nil
}

// nameTokens splits a lowercased column name on anything that is not a
// letter or digit
func nameTokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasToken(name string, tokens ...string) bool {
	for _, tok := range nameTokens(name) {
		for _, want := range tokens {
			if tok == want {
				return true
			}
		}
	}
	return false
}

const maxAge = 120

func validateDemographics(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var touched []string
	invalid := 0
	for _, c := range t.Columns {
		switch {
		case hasToken(c.Name, "age"):
			for i, v := range c.Values {
				if v == nil {
					continue
				}
				f, ok := table.ToFloat(v)
				if !ok || f < 0 || f > maxAge {
					c.Values[i] = nil
					invalid++
					continue
				}
				if f == float64(int64(f)) {
					c.Values[i] = int64(f)
				} else {
					c.Values[i] = f
				}
			}
			table.Retype(c)
			touched = append(touched, c.Name)
		case hasToken(c.Name, "gender", "sex"):
			mapText(c, upperTrim)
			touched = append(touched, c.Name)
		}
	}
	if len(touched) == 0 {
		return t, skip("no age or gender columns found"), nil
	}
	return t, done(touched, "validated %d demographic columns, %d invalid ages set to null", len(touched), invalid), nil
}

func smoothSensorData(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var smoothed []string
	for _, c := range t.Columns {
		if !c.Kind.IsNumeric() || len(c.Values)-c.NullCount() <= minSmoothingPoints {
			continue
		}
		smoothColumn(c)
		smoothed = append(smoothed, c.Name)
	}
	if len(smoothed) == 0 {
		return t, skip("no numeric columns with more than %d values", minSmoothingPoints), nil
	}
	return t, done(smoothed, "smoothed %d numeric columns", len(smoothed)), nil
}

// smoothColumn applies a centered rolling mean of width three. Windows
// touching a null or the edge are filled forward, then backward, then
// from the original values.
func smoothColumn(c *table.Column) {
	n := len(c.Values)
	orig := make([]any, n)
	copy(orig, c.Values)

	out := make([]any, n)
	for i := 1; i < n-1; i++ {
		a, okA := table.ToFloat(orig[i-1])
		b, okB := table.ToFloat(orig[i])
		d, okD := table.ToFloat(orig[i+1])
		if okA && okB && okD {
			out[i] = (a + b + d) / 3
		}
	}
	for i := 1; i < n; i++ {
		if out[i] == nil {
			out[i] = out[i-1]
		}
	}
	for i := n - 2; i >= 0; i-- {
		if out[i] == nil {
			out[i] = out[i+1]
		}
	}
	for i := range out {
		if out[i] == nil {
			out[i] = orig[i]
		}
	}
	c.Values = out
	table.Retype(c)
}

func standardizeUnits(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(unitKeywords...)
	if len(cols) == 0 {
		return t, skip("no unit columns found"), nil
	}
	converted := 0
	for _, c := range cols {
		for i, v := range c.Values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if num, ok := table.ParseNumber(s); ok {
				c.Values[i] = num
				converted++
			}
		}
		table.Retype(c)
	}
	return t, done(names(cols), "converted %d values to numbers", converted), nil
}

func interpolateDowntime(t *table.Table, _ Options) (*table.Table, outcome, error) {
	var cols []string
	total := 0
	for _, c := range t.Columns {
		if !c.Kind.IsNumeric() {
			continue
		}
		if n := interpolateColumn(c); n > 0 {
			cols = append(cols, c.Name)
			total += n
		}
	}
	if len(cols) == 0 {
		return t, skip("no interior gaps in numeric columns"), nil
	}
	return t, done(cols, "interpolated %d missing values", total), nil
}

// interpolateColumn fills nulls lying between two known values on the
// straight line joining them. Leading and trailing nulls stay null.
func interpolateColumn(c *table.Column) int {
	prev := -1
	filled := 0
	for i, v := range c.Values {
		cur, ok := table.ToFloat(v)
		if !ok {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			start, _ := table.ToFloat(c.Values[prev])
			step := (cur - start) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				c.Values[k] = start + step*float64(k-prev)
				filled++
			}
		}
		prev = i
	}
	if filled > 0 {
		table.Retype(c)
	}
	return filled
}

func fillTimeGaps(t *table.Table, _ Options) (*table.Table, outcome, error) {
	cols := t.ColumnsMatching(timeGapKeywords...)
	if len(cols) == 0 {
		return t, skip("no date columns found"), nil
	}
	c := cols[0]
	for i, v := range c.Values {
		if d, ok := table.ParseDate(v); ok {
			c.Values[i] = d
		} else {
			c.Values[i] = nil
		}
	}
	c.Kind = table.KindTimestamp

	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := c.Values[order[a]], c.Values[order[b]]
		if vb == nil {
			return va != nil
		}
		if va == nil {
			return false
		}
		return va.(time.Time).Before(vb.(time.Time))
	})
	return t.Take(order), done([]string{c.Name}, "sorted rows by %s", c.Name), nil
}

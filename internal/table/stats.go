package table

import (
	"math"
	"sort"
)

// Mean of the numeric cells, false when there are none
func Mean(c *Column) (float64, bool) {
	vals := c.Floats()
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

// Quantile interpolates linearly between the closest ranks of sorted
// values
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Fence is the Tukey outlier range of a numeric column
type Fence struct {
	Q1, Q3       float64
	Lower, Upper float64
}

// TukeyFence computes Q1 - 1.5 IQR and Q3 + 1.5 IQR over the numeric
// cells of c
func TukeyFence(c *Column) (Fence, bool) {
	vals := c.Floats()
	if len(vals) == 0 {
		return Fence{}, false
	}
	sort.Float64s(vals)
	q1 := Quantile(vals, 0.25)
	q3 := Quantile(vals, 0.75)
	iqr := q3 - q1
	return Fence{Q1: q1, Q3: q3, Lower: q1 - 1.5*iqr, Upper: q3 + 1.5*iqr}, true
}

// Outside reports whether f lies beyond the fence
func (f Fence) Outside(v float64) bool {
	return v < f.Lower || v > f.Upper
}

// Mode returns the most frequent non-null cell; ties go to the value that
// sorts first by its text form
func Mode(c *Column) (any, bool) {
	counts := make(map[string]int)
	first := make(map[string]any)
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		k := cellKey(v)
		if _, ok := first[k]; !ok {
			first[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return FormatValue(first[keys[i]]) < FormatValue(first[keys[j]])
	})
	return first[keys[0]], true
}

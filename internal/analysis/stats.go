package analysis

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics of the value column.
// Fields that are undefined for the sample (e.g. Std with Count < 2) are NaN.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Stat is one named statistic, in display order.
type Stat struct {
	Name  string
	Value float64
}

// Fields lists the statistics in the conventional describe() order.
func (s Summary) Fields() []Stat {
	return []Stat{
		{"count", float64(s.Count)},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.P25},
		{"50%", s.P50},
		{"75%", s.P75},
		{"max", s.Max},
	}
}

// Describe computes summary statistics over the numeric value column.
func Describe(t *Table) (Summary, error) {
	vals, err := t.Numeric()
	if err != nil {
		return Summary{}, err
	}
	return DescribeValues(vals), nil
}

// DescribeValues computes summary statistics, skipping NaN entries.
// Std uses the N-1 denominator and percentiles interpolate linearly.
func DescribeValues(vals []float64) Summary {
	nan := math.NaN()
	s := Summary{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	sorted := make([]float64, 0, len(vals))
	var mean, m2 float64
	for _, x := range vals {
		if math.IsNaN(x) {
			continue
		}
		sorted = append(sorted, x)
		// Welford update
		n := float64(len(sorted))
		delta := x - mean
		mean += delta / n
		m2 += delta * (x - mean)
	}
	s.Count = len(sorted)
	if s.Count == 0 {
		return s
	}
	sort.Float64s(sorted)
	s.Mean = mean
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.5)
	s.P75 = quantile(sorted, 0.75)
	return s
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
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

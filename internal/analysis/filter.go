package analysis

import (
	"fmt"
	"math"
)

// Bounds is the closed range of the value column and its mean, the slider domain.
type Bounds struct {
	Min  float64
	Max  float64
	Mean float64
}

// Degenerate reports a single-point range where filtering is meaningless.
func (b Bounds) Degenerate() bool { return b.Min == b.Max }

// Clamp restricts x to [Min, Max]; NaN selects the mean.
func (b Bounds) Clamp(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return b.Mean
	case x < b.Min:
		return b.Min
	case x > b.Max:
		return b.Max
	}
	return x
}

// ValueBounds returns min, max and mean of the numeric value column.
func ValueBounds(t *Table) (Bounds, error) {
	vals, err := t.Numeric()
	if err != nil {
		return Bounds{}, err
	}
	s := DescribeValues(vals)
	return Bounds{Min: s.Min, Max: s.Max, Mean: s.Mean}, nil
}

// Thresholds are the two independent slider positions. Nil selects the mean.
type Thresholds struct {
	Min *float64
	Max *float64
}

// FilterResult holds the two one-sided views of a table.
type FilterResult struct {
	Bounds Bounds
	// Min and Max are the thresholds actually applied after clamping.
	Min float64
	Max float64
	// Lower holds rows with value > Min; Upper holds rows with value < Max.
	Lower *Table
	Upper *Table
	// Degenerate is set when every value is equal; Lower and Upper are then the full table.
	Degenerate bool
	Warning    string
}

// Filter applies both thresholds independently to the full table.
func Filter(t *Table, th Thresholds) (*FilterResult, error) {
	b, err := ValueBounds(t)
	if err != nil {
		return nil, err
	}
	res := &FilterResult{Bounds: b}
	if b.Degenerate() {
		res.Min, res.Max = b.Min, b.Max
		res.Lower, res.Upper = t, t
		res.Degenerate = true
		res.Warning = fmt.Sprintf("all values are equal (%.2f); filtering disabled", b.Min)
		return res, nil
	}
	res.Min = b.Mean
	if th.Min != nil {
		res.Min = b.Clamp(*th.Min)
	}
	res.Max = b.Mean
	if th.Max != nil {
		res.Max = b.Clamp(*th.Max)
	}
	res.Lower = Above(t, res.Min)
	res.Upper = Below(t, res.Max)
	return res, nil
}

// Above returns the rows whose value is strictly greater than x. Missing values never match.
func Above(t *Table, x float64) *Table {
	return t.where(func(v float64) bool { return v > x })
}

// Below returns the rows whose value is strictly less than x. Missing values never match.
func Below(t *Table, x float64) *Table {
	return t.where(func(v float64) bool { return v < x })
}

func (t *Table) where(keep func(v float64) bool) *Table {
	var rows []int
	for i, v := range t.Values {
		if keep(v) {
			rows = append(rows, i)
		}
	}
	return t.subset(rows)
}

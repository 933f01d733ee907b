package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDescribeOneToFive(t *testing.T) {
	tbl := mustNormalize(t, "lux\n1\n2\n3\n4\n5\n")
	s, err := Describe(tbl)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if s.Count != 5 {
		t.Fatalf("count = %d", s.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 3},
		{"std", s.Std, 1.5811388300841898},
		{"min", s.Min, 1},
		{"25%", s.P25, 2},
		{"50%", s.P50, 3},
		{"75%", s.P75, 4},
		{"max", s.Max, 5},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want, 1e-9) {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDescribeValuesInterpolatesAndSkipsMissing(t *testing.T) {
	nan := math.NaN()
	s := DescribeValues([]float64{10, nan, 20, 40, 30, nan})
	if s.Count != 4 {
		t.Fatalf("count = %d", s.Count)
	}
	// sorted 10,20,30,40: positions 0.75, 1.5, 2.25
	if !almostEqual(s.P25, 17.5, 1e-9) || !almostEqual(s.P50, 25, 1e-9) || !almostEqual(s.P75, 32.5, 1e-9) {
		t.Fatalf("percentiles = %v %v %v", s.P25, s.P50, s.P75)
	}
	if !almostEqual(s.Mean, 25, 1e-9) {
		t.Fatalf("mean = %v", s.Mean)
	}
}

func TestDescribeValuesSmallSamples(t *testing.T) {
	one := DescribeValues([]float64{7})
	if one.Count != 1 || one.Mean != 7 || !math.IsNaN(one.Std) || one.P50 != 7 {
		t.Fatalf("single value summary = %+v", one)
	}
	none := DescribeValues(nil)
	if none.Count != 0 || !math.IsNaN(none.Mean) || !math.IsNaN(none.Max) {
		t.Fatalf("empty summary = %+v", none)
	}
}

func TestDescribeRejectsNonNumeric(t *testing.T) {
	tbl := mustNormalize(t, "lux\n1\nhigh\n")
	if _, err := Describe(tbl); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
	empty := mustNormalize(t, "lux\nNA\n\"\"\n")
	if _, err := Describe(empty); !errors.Is(err, ErrNoValues) {
		t.Fatalf("expected ErrNoValues, got %v", err)
	}
}

func TestSummaryFieldsOrder(t *testing.T) {
	var names []string
	for _, f := range DescribeValues([]float64{1, 2}).Fields() {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "count,mean,std,min,25%,50%,75%,max" {
		t.Fatalf("fields = %v", names)
	}
}

func TestReportMarkdown(t *testing.T) {
	tbl := mustNormalize(t, "Time,lux\n2024-01-01T00:00:00Z,1\n2024-01-01T00:01:00Z,\n2024-01-01T00:02:00Z,3\n")
	rep, err := NewReport(tbl, 2)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: test.csv",
		"Rows: 3",
		"Columns: 2 (Time, variable)",
		"Time range: 2024-01-01T00:00:00Z → 2024-01-01T00:02:00Z",
		"[VARIABLE STATISTICS]",
		"- count: 2",
		"- mean: 2",
		"| Time | variable |",
		"| 2024-01-01T00:00:00Z | 1 |",
		"[NOTES]",
		"1 rows have no value",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "2024-01-01T00:02:00Z | 3") {
		t.Fatalf("sample rows should be limited to 2:\n%s", md)
	}
}

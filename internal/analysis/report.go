package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Report is a markdown-friendly summary of a normalized upload.
type Report struct {
	Name     string
	Rows     int
	Columns  []string
	HasTime  bool
	From, To time.Time
	Stats    Summary
	Bounds   Bounds
	Missing  int
	Samples  [][]string
	Warnings []string
}

// NewReport summarizes t with up to sampleRows example rows.
func NewReport(t *Table, sampleRows int) (*Report, error) {
	if sampleRows < 0 {
		sampleRows = 5
	}
	stats, err := Describe(t)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Name:    t.Name,
		Rows:    t.Len(),
		Columns: t.Header(),
		HasTime: t.HasIndex(),
		Stats:   stats,
		Bounds:  Bounds{Min: stats.Min, Max: stats.Max, Mean: stats.Mean},
		Missing: t.Len() - stats.Count,
	}
	if rep.HasTime && t.Len() > 0 {
		rep.From, rep.To = t.Index[0], t.Index[t.Len()-1]
	}
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, t.Record(i))
	}
	if rep.Missing > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows have no value and are ignored by statistics and filters", rep.Missing))
	}
	if rep.Bounds.Degenerate() {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("all values are equal (%.2f); filtering disabled", rep.Bounds.Min))
	}
	return rep, nil
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (%s)\n", len(r.Columns), strings.Join(r.Columns, ", ")))
	if r.HasTime && r.Rows > 0 {
		b.WriteString(fmt.Sprintf("Time range: %s → %s\n", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339)))
	}

	b.WriteString("\n[VARIABLE STATISTICS]\n")
	for _, f := range r.Stats.Fields() {
		b.WriteString(fmt.Sprintf("- %s: %s\n", f.Name, formatStat(f)))
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		b.WriteString(strings.Join(mapStrings(r.Columns, safeName), " | "))
		b.WriteString(" |\n| ")
		seps := make([]string, len(r.Columns))
		for i := range seps {
			seps[i] = "---"
		}
		b.WriteString(strings.Join(seps, " | "))
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			cells := make([]string, len(r.Columns))
			for i := range cells {
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				cells[i] = safeVal(val)
			}
			b.WriteString("| ")
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatStat(s Stat) string {
	if s.Name == "count" {
		return fmt.Sprintf("%d", int(s.Value))
	}
	if math.IsNaN(s.Value) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", s.Value)
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

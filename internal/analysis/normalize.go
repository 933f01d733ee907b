package analysis

import (
	"math"
	"sort"
	"time"
)

const (
	// TimeColumn is the optional timestamp column, matched exactly.
	TimeColumn = "Time"
	// ValueColumn is the canonical name given to the value series.
	ValueColumn = "variable"
)

// NormalizeOptions controls how a RawTable becomes a Table.
type NormalizeOptions struct {
	// ValueColumn names the value series explicitly. Empty selects the first non-Time column.
	ValueColumn string
	Numbers     NumberFormat
}

// Table is a normalized upload: an optional time index and one value column named "variable".
// Rows hold the original cell text for every non-Time column.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	// Index and IndexText are nil when the upload has no Time column.
	Index     []time.Time
	IndexText []string
	// Values holds the parsed value column; missing cells are NaN.
	Values []float64

	valueIdx   int
	nonNumeric *TypeError
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasIndex reports whether rows are keyed by a Time column.
func (t *Table) HasIndex() bool { return t.Index != nil }

// ValueIndex returns the position of "variable" in Columns.
func (t *Table) ValueIndex() int { return t.valueIdx }

// Header returns the column names as written on export, Time first when present.
func (t *Table) Header() []string {
	if !t.HasIndex() {
		return append([]string(nil), t.Columns...)
	}
	return append([]string{TimeColumn}, t.Columns...)
}

// Record returns row i as written on export.
func (t *Table) Record(i int) []string {
	if !t.HasIndex() {
		return append([]string(nil), t.Rows[i]...)
	}
	return append([]string{t.IndexText[i]}, t.Rows[i]...)
}

// findColumn returns the position in keep of the column called name, or -1.
func findColumn(header []string, keep []int, name string) int {
	for pos, i := range keep {
		if header[i] == name {
			return pos
		}
	}
	return -1
}

// Numeric returns the value column, or a TypeError when it holds non-numeric text
// or no numeric entry at all.
func (t *Table) Numeric() ([]float64, error) {
	if t.nonNumeric != nil {
		return nil, t.nonNumeric
	}
	for _, v := range t.Values {
		if !math.IsNaN(v) {
			return t.Values, nil
		}
	}
	return nil, &TypeError{Column: ValueColumn, Err: ErrNoValues}
}

// Normalize identifies the Time and value columns, renames the value column to
// "variable", and orders rows by time when a Time column exists.
func Normalize(raw *RawTable, opt NormalizeOptions) (*Table, error) {
	if raw == nil || len(raw.Header) == 0 {
		return nil, &NormalizationError{Err: ErrEmptyInput}
	}
	timeIdx := raw.Column(TimeColumn)

	// Remaining columns keep their original order.
	keep := make([]int, 0, len(raw.Header))
	for i := range raw.Header {
		if i != timeIdx {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, &NormalizationError{Column: TimeColumn, Err: ErrNoValueColumn}
	}

	// A column already named "variable" is a previous export and keeps its role
	// unless another column was asked for by name.
	valuePos := -1
	if opt.ValueColumn != "" {
		valuePos = findColumn(raw.Header, keep, opt.ValueColumn)
	}
	if valuePos < 0 {
		valuePos = findColumn(raw.Header, keep, ValueColumn)
	}
	if valuePos < 0 {
		if opt.ValueColumn != "" {
			return nil, &NormalizationError{Column: opt.ValueColumn, Err: ErrValueColumnNotFound}
		}
		valuePos = 0
	}

	t := &Table{Name: raw.Name, valueIdx: valuePos}
	t.Columns = make([]string, len(keep))
	for pos, i := range keep {
		name := raw.Header[i]
		if pos == valuePos {
			name = ValueColumn
		} else if name == ValueColumn {
			return nil, &NormalizationError{Column: name, Err: ErrDuplicateValueColumn}
		}
		t.Columns[pos] = name
	}

	t.Rows = make([][]string, len(raw.Rows))
	for r, rec := range raw.Rows {
		row := make([]string, len(keep))
		for pos, i := range keep {
			if i < len(rec) {
				row[pos] = rec[i]
			}
		}
		t.Rows[r] = row
	}

	if timeIdx >= 0 {
		t.Index = make([]time.Time, len(raw.Rows))
		t.IndexText = make([]string, len(raw.Rows))
		for r, rec := range raw.Rows {
			var cell string
			if timeIdx < len(rec) {
				cell = rec[timeIdx]
			}
			ts, ok := parseTimestamp(cell)
			if !ok {
				return nil, &NormalizationError{Column: TimeColumn, Row: r + 1, Value: cell, Err: ErrTimeParse}
			}
			t.Index[r] = ts
			t.IndexText[r] = cell
		}
		sort.Stable(byIndex{t})
	}

	t.parseValues(opt.Numbers)
	return t, nil
}

func (t *Table) parseValues(nf NumberFormat) {
	t.Values = make([]float64, len(t.Rows))
	t.nonNumeric = nil
	for r, row := range t.Rows {
		cell := row[t.valueIdx]
		if isMissing(cell) {
			t.Values[r] = math.NaN()
			continue
		}
		x, ok := parseNumeric(cell, nf)
		if !ok {
			t.Values[r] = math.NaN()
			if t.nonNumeric == nil {
				t.nonNumeric = &TypeError{Column: ValueColumn, Row: r + 1, Value: cell, Err: ErrNotNumeric}
			}
			continue
		}
		t.Values[r] = x
	}
}

// subset returns a table holding the given rows, in the given order.
func (t *Table) subset(rows []int) *Table {
	out := &Table{
		Name:       t.Name,
		Columns:    t.Columns,
		Rows:       make([][]string, len(rows)),
		Values:     make([]float64, len(rows)),
		valueIdx:   t.valueIdx,
		nonNumeric: t.nonNumeric,
	}
	if t.HasIndex() {
		out.Index = make([]time.Time, len(rows))
		out.IndexText = make([]string, len(rows))
	}
	for k, r := range rows {
		out.Rows[k] = t.Rows[r]
		out.Values[k] = t.Values[r]
		if t.HasIndex() {
			out.Index[k] = t.Index[r]
			out.IndexText[k] = t.IndexText[r]
		}
	}
	return out
}

// Equal reports whether both tables hold the same columns, index and cells, row for row.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.HasIndex() != o.HasIndex() || t.Len() != o.Len() || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for r := range t.Rows {
		if t.HasIndex() && !t.Index[r].Equal(o.Index[r]) {
			return false
		}
		a, b := t.Values[r], o.Values[r]
		if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
			return false
		}
		for c := range t.Rows[r] {
			if t.Rows[r][c] != o.Rows[r][c] {
				return false
			}
		}
	}
	return true
}

type byIndex struct{ t *Table }

func (s byIndex) Len() int           { return len(s.t.Rows) }
func (s byIndex) Less(i, j int) bool { return s.t.Index[i].Before(s.t.Index[j]) }
func (s byIndex) Swap(i, j int) {
	t := s.t
	t.Rows[i], t.Rows[j] = t.Rows[j], t.Rows[i]
	t.Index[i], t.Index[j] = t.Index[j], t.Index[i]
	t.IndexText[i], t.IndexText[j] = t.IndexText[j], t.IndexText[i]
}

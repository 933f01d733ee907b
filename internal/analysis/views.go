package analysis

import (
	"fmt"
	"strings"
	"time"
)

// ChartMode selects one of the equivalent renderings of the value series.
type ChartMode string

const (
	ChartLine ChartMode = "line"
	ChartArea ChartMode = "area"
	ChartBar  ChartMode = "bar"
)

// ChartModes lists the modes in selector order.
var ChartModes = []ChartMode{ChartLine, ChartArea, ChartBar}

// Label returns the selector text shown in the dashboard.
func (m ChartMode) Label() string {
	switch m {
	case ChartArea:
		return "Área"
	case ChartBar:
		return "Barra"
	default:
		return "Línea"
	}
}

// ParseChartMode accepts the mode names and their dashboard labels. Empty selects line.
func ParseChartMode(s string) (ChartMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line", "línea", "linea":
		return ChartLine, nil
	case "area", "área":
		return ChartArea, nil
	case "bar", "barra":
		return ChartBar, nil
	default:
		return "", fmt.Errorf("unsupported chart type: %s (use line|area|bar)", s)
	}
}

// Series is the value column projected for charting. Index is nil without a Time column.
type Series struct {
	Name   string
	Mode   ChartMode
	Index  []time.Time
	Values []float64
}

// Params are the user-chosen inputs of one interaction.
type Params struct {
	Chart      ChartMode
	Thresholds Thresholds
}

// Views are the three read-only transforms of a normalized table.
type Views struct {
	Series Series
	Stats  Summary
	Filter *FilterResult
}

// ChartSeries projects the value column for the given mode.
func ChartSeries(t *Table, mode ChartMode) (Series, error) {
	vals, err := t.Numeric()
	if err != nil {
		return Series{}, err
	}
	if mode == "" {
		mode = ChartLine
	}
	return Series{Name: ValueColumn, Mode: mode, Index: t.Index, Values: vals}, nil
}

// DeriveViews computes the chart series, statistics and filtered views of t.
// It has no side effects; callers invoke it once per interaction.
func DeriveViews(t *Table, p Params) (*Views, error) {
	series, err := ChartSeries(t, p.Chart)
	if err != nil {
		return nil, err
	}
	stats := DescribeValues(series.Values)
	filter, err := Filter(t, p.Thresholds)
	if err != nil {
		return nil, err
	}
	return &Views{Series: series, Stats: stats, Filter: filter}, nil
}

package server

import (
	"math"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statsJSON mirrors analysis.Summary; undefined statistics encode as null.
type statsJSON struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"p25"`
	P50   *float64 `json:"p50"`
	P75   *float64 `json:"p75"`
	Max   *float64 `json:"max"`
}

type statsResponse struct {
	File    string    `json:"file"`
	Rows    int       `json:"rows"`
	Columns []string  `json:"columns"`
	HasTime bool      `json:"has_time"`
	Stats   statsJSON `json:"stats"`
}

type tableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type filterResponse struct {
	Bounds struct {
		Min  float64 `json:"min"`
		Max  float64 `json:"max"`
		Mean float64 `json:"mean"`
	} `json:"bounds"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Degenerate bool      `json:"degenerate"`
	Warning    string    `json:"warning,omitempty"`
	Lower      tableJSON `json:"lower"`
	Upper      tableJSON `json:"upper"`
}

func nullable(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func newStatsJSON(s analysis.Summary) statsJSON {
	return statsJSON{
		Count: s.Count,
		Mean:  nullable(s.Mean),
		Std:   nullable(s.Std),
		Min:   nullable(s.Min),
		P25:   nullable(s.P25),
		P50:   nullable(s.P50),
		P75:   nullable(s.P75),
		Max:   nullable(s.Max),
	}
}

func newTableJSON(t *analysis.Table) tableJSON {
	out := tableJSON{Columns: t.Header(), Rows: make([][]string, t.Len())}
	for i := range out.Rows {
		out.Rows[i] = t.Record(i)
	}
	return out
}

func newFilterResponse(res *analysis.FilterResult) filterResponse {
	var out filterResponse
	out.Bounds.Min = res.Bounds.Min
	out.Bounds.Max = res.Bounds.Max
	out.Bounds.Mean = res.Bounds.Mean
	out.Min = res.Min
	out.Max = res.Max
	out.Degenerate = res.Degenerate
	out.Warning = res.Warning
	out.Lower = newTableJSON(res.Lower)
	out.Upper = newTableJSON(res.Upper)
	return out
}

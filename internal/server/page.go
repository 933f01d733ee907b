package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/site"
)

// previewRows caps the rows rendered in an HTML table; downloads are never capped.
const previewRows = 500

const (
	tabChart   = "chart"
	tabStats   = "stats"
	tabFilters = "filters"
	tabSite    = "site"
)

type tabLink struct {
	ID     string
	Label  string
	URL    string
	Active bool
}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type tableView struct {
	Header []string
	Rows   [][]string
	Total  int
	Shown  int
}

type metric struct {
	Label string
	Value string
}

type sliderView struct {
	Name  string
	Label string
	Value string
	Table tableView
}

type filterView struct {
	Degenerate  bool
	Warning     string
	Full        tableView
	Min         string
	Max         string
	Sliders     []sliderView
	DownloadURL string
	// UpperURL downloads the rows below the maximum instead.
	UpperURL string
}

type pageData struct {
	Title   string
	Tagline string

	BannerURL     string
	BannerCaption string
	BannerNotice  string

	Site       site.Info
	TileURL    string
	MarkerLeft string
	MarkerTop  string
	MapLink    string
	Location   []site.Field
	Sensor     []site.Field

	Error    string
	HasFile  bool
	FileName string
	Notices  []string

	Tabs     []tabLink
	Tab      string
	Mode     string
	Modes    []modeOption
	ChartURL string
	ShowRaw  bool
	RawURL   string
	Raw      tableView

	Stats   []analysis.Stat
	Metrics []metric

	Filter *filterView

	Footer string
}

// viewState is the query-string state of one interaction.
type viewState struct {
	Tab        string
	Mode       analysis.ChartMode
	ShowRaw    bool
	Thresholds analysis.Thresholds
	Version    string
}

func (v viewState) query(overrides map[string]string) string {
	q := url.Values{}
	q.Set("tab", v.Tab)
	q.Set("mode", string(v.Mode))
	if v.ShowRaw {
		q.Set("raw", "1")
	}
	if v.Thresholds.Min != nil {
		q.Set("min", formatFloat(*v.Thresholds.Min))
	}
	if v.Thresholds.Max != nil {
		q.Set("max", formatFloat(*v.Thresholds.Max))
	}
	for k, val := range overrides {
		if val == "" {
			q.Del(k)
			continue
		}
		q.Set(k, val)
	}
	return q.Encode()
}

func newTable(t *analysis.Table) tableView {
	tv := tableView{Header: t.Header(), Total: t.Len()}
	n := min(t.Len(), previewRows)
	tv.Rows = make([][]string, n)
	for i := 0; i < n; i++ {
		tv.Rows[i] = t.Record(i)
	}
	tv.Shown = n
	return tv
}

func metrics(s analysis.Summary) []metric {
	return []metric{
		{"Promedio", fmt2(s.Mean)},
		{"Máximo", fmt2(s.Max)},
		{"Mínimo", fmt2(s.Min)},
		{"Desviación Estándar", fmt2(s.Std)},
	}
}

// fillViews adds the tab contents derived from a normalized upload.
func (p *pageData) fillViews(st viewState, t *analysis.Table, v *analysis.Views) {
	p.Tabs = []tabLink{
		{ID: tabChart, Label: "📈 Visualización"},
		{ID: tabStats, Label: "📊 Estadísticas"},
		{ID: tabFilters, Label: "🔍 Filtros"},
		{ID: tabSite, Label: "🗺️ Info del Sitio"},
	}
	for i := range p.Tabs {
		p.Tabs[i].URL = "/?" + st.query(map[string]string{"tab": p.Tabs[i].ID})
		p.Tabs[i].Active = p.Tabs[i].ID == st.Tab
	}
	p.Tab = st.Tab
	p.Mode = string(st.Mode)
	for _, m := range analysis.ChartModes {
		p.Modes = append(p.Modes, modeOption{Value: string(m), Label: m.Label(), Selected: m == st.Mode})
	}
	p.ChartURL = "/chart?" + url.Values{"mode": {string(st.Mode)}, "v": {st.Version}}.Encode()
	p.ShowRaw = st.ShowRaw
	raw := "1"
	if st.ShowRaw {
		raw = ""
	}
	p.RawURL = "/?" + st.query(map[string]string{"raw": raw})
	if st.ShowRaw {
		p.Raw = newTable(t)
	}

	p.Stats = v.Stats.Fields()
	p.Metrics = metrics(v.Stats)

	f := v.Filter
	fv := &filterView{Degenerate: f.Degenerate}
	if f.Degenerate {
		fv.Warning = fmt.Sprintf("⚠️ Todos los valores son iguales: %.2f", f.Bounds.Min)
		fv.Full = newTable(t)
	} else {
		fv.Min = formatFloat(f.Bounds.Min)
		fv.Max = formatFloat(f.Bounds.Max)
		fv.Sliders = []sliderView{
			{Name: "min", Label: "Valor mínimo", Value: formatFloat(f.Min), Table: newTable(f.Lower)},
			{Name: "max", Label: "Valor máximo", Value: formatFloat(f.Max), Table: newTable(f.Upper)},
		}
		dl := url.Values{"min": {formatFloat(f.Min)}, "max": {formatFloat(f.Max)}, "side": {"lower"}}
		fv.DownloadURL = "/download?" + dl.Encode()
		dl.Set("side", "upper")
		fv.UpperURL = "/download?" + dl.Encode()
	}
	p.Filter = fv
}

func fmt2(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", x)
}

// formatStat renders a summary value for the statistics table; count is an integer,
// as in the JSON API.
func formatStat(s analysis.Stat) string {
	if s.Name == "count" {
		return strconv.Itoa(int(s.Value))
	}
	if math.IsNaN(s.Value) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", s.Value)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

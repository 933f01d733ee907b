// Package chart renders the value series of an upload as a PNG or SVG image.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

// Format is the image encoding of a rendered chart.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg"; empty selects PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported chart format: %s (use png|svg)", s)
	}
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Options sizes and encodes a chart.
type Options struct {
	Width  int
	Height int
	Title  string
	Format Format
}

// DefaultOptions returns the dashboard chart size.
func DefaultOptions() Options {
	return Options{Width: 960, Height: 420, Format: PNG}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	return o
}

// ErrNoPoints is returned when every value of the series is missing.
var ErrNoPoints = errors.New("no numeric values to plot")

var (
	seriesColor = drawing.ColorFromHex("1f77b4")
	areaColor   = seriesColor.WithAlpha(96)
	padding     = gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 12}}
)

// points is the plottable part of a series: missing values dropped.
type points struct {
	times  []time.Time
	xs     []float64
	ys     []float64
	labels []string
}

func collect(s analysis.Series) points {
	var p points
	timed := s.Index != nil
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		p.ys = append(p.ys, v)
		if timed {
			p.times = append(p.times, s.Index[i])
			p.xs = append(p.xs, gochart.TimeToFloat64(s.Index[i]))
		} else {
			p.xs = append(p.xs, float64(i))
			p.labels = append(p.labels, strconv.Itoa(i))
		}
	}
	if timed {
		layout := timeLayout(p.times)
		for _, t := range p.times {
			p.labels = append(p.labels, t.Format(layout))
		}
	}
	return p
}

// Render draws the series in its mode and writes the encoded image to w.
func Render(w io.Writer, s analysis.Series, opt Options) error {
	opt = opt.withDefaults()
	p := collect(s)
	if len(p.ys) == 0 {
		return ErrNoPoints
	}
	if s.Mode == analysis.ChartBar {
		return renderBars(w, p, opt)
	}
	return renderLine(w, s, p, opt)
}

// Bytes renders the series into memory.
func Bytes(s analysis.Series, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, s, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderLine(w io.Writer, s analysis.Series, p points, opt Options) error {
	st := gochart.Style{StrokeColor: seriesColor, StrokeWidth: 2}
	if s.Mode == analysis.ChartArea {
		st.FillColor = areaColor
	}
	if len(p.ys) == 1 {
		st.DotColor = seriesColor
		st.DotWidth = 4
	}

	xAxis := gochart.XAxis{Range: xRange(p)}
	var series gochart.Series
	if p.times != nil {
		xAxis.Name = analysis.TimeColumn
		xAxis.ValueFormatter = gochart.TimeValueFormatterWithFormat(timeLayout(p.times))
		series = gochart.TimeSeries{Name: s.Name, XValues: p.times, YValues: p.ys, Style: st}
	} else {
		series = gochart.ContinuousSeries{Name: s.Name, XValues: p.xs, YValues: p.ys, Style: st}
	}

	ch := gochart.Chart{
		Title:      opt.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: padding,
		XAxis:      xAxis,
		YAxis:      gochart.YAxis{Name: s.Name, Range: yRange(p.ys)},
		Series:     []gochart.Series{series},
	}
	if err := ch.Render(opt.Format.provider(), w); err != nil {
		return fmt.Errorf("render %s chart: %w", s.Mode, err)
	}
	return nil
}

func renderBars(w io.Writer, p points, opt Options) error {
	ys, labels := bucket(p.ys, p.labels, maxBars(opt.Width))
	bars := make([]gochart.Value, len(ys))
	for i := range ys {
		bars[i] = gochart.Value{
			Value: ys[i],
			Label: labels[i],
			Style: gochart.Style{FillColor: seriesColor, StrokeColor: seriesColor, StrokeWidth: 1},
		}
	}
	bc := gochart.BarChart{
		Title:      opt.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: padding,
		BarWidth:   barWidth(opt.Width, len(bars)),
		BarSpacing: 1,
		XAxis:      gochart.Style{Hidden: len(bars) > 24},
		YAxis:      gochart.YAxis{Range: yRange(ys)},
		Bars:       bars,
	}
	if err := bc.Render(opt.Format.provider(), w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// xRange widens a zero-width domain so go-chart accepts single points.
func xRange(p points) *gochart.ContinuousRange {
	lo, hi := minMax(p.xs)
	if hi > lo {
		return &gochart.ContinuousRange{Min: lo, Max: hi}
	}
	step := 1.0
	if p.times != nil {
		step = float64(time.Minute)
	}
	return &gochart.ContinuousRange{Min: lo - step, Max: hi + step}
}

func yRange(ys []float64) *gochart.ContinuousRange {
	lo, hi := minMax(ys)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.1, 1)
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func timeLayout(ts []time.Time) string {
	if len(ts) < 2 || ts[len(ts)-1].Sub(ts[0]) <= 48*time.Hour {
		return "01-02 15:04"
	}
	return "2006-01-02"
}

func maxBars(width int) int {
	if n := (width - 100) / 2; n > 1 {
		return n
	}
	return 1
}

func barWidth(width, n int) int {
	w := (width-100)/n - 1
	if w < 1 {
		return 1
	}
	if w > 50 {
		return 50
	}
	return w
}

// bucket averages consecutive values so at most limit bars are drawn.
// Each bucket keeps the label of its first value.
func bucket(ys []float64, labels []string, limit int) ([]float64, []string) {
	if len(ys) <= limit {
		return ys, labels
	}
	size := (len(ys) + limit - 1) / limit
	var outY []float64
	var outL []string
	for start := 0; start < len(ys); start += size {
		end := min(start+size, len(ys))
		sum := 0.0
		for _, v := range ys[start:end] {
			sum += v
		}
		outY = append(outY, sum/float64(end-start))
		outL = append(outL, labels[start])
	}
	return outY, outL
}

package chart

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/naka-gawa/repo-health/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultPageWidth = 960
	defaultHeight    = 300
)

// namedColors maps the colour names used in chart configs to hex values.
var namedColors = map[string]string{
	"blue":   "0000ff",
	"red":    "ff0000",
	"green":  "008000",
	"orange": "ffa500",
	"purple": "800080",
	"black":  "000000",
	"gray":   "808080",
}

// Panel is one rendered chart slot of a Page.
type Panel struct {
	Config Config
	// SVG is empty until the chart has been rendered.
	SVG template.HTML
	// Value is set instead of SVG for single-value datasets.
	Value string
	Empty bool
}

// Page renders charts to SVG and keeps them in the order their slots were
// declared, whatever order the renders complete in.
type Page struct {
	mu     sync.Mutex
	width  int
	order  []string
	panels map[string]*Panel
}

// NewPage creates a page with one slot per config, in order.
func NewPage(configs []Config) *Page {
	p := &Page{
		width:  defaultPageWidth,
		panels: make(map[string]*Panel, len(configs)),
	}
	for _, cfg := range configs {
		p.order = append(p.order, cfg.Target)
		p.panels[cfg.Target] = &Panel{Config: cfg}
	}
	return p
}

// Render implements Renderer.
func (p *Page) Render(ctx context.Context, cfg Config, data domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	panel := Panel{Config: cfg}
	switch {
	case len(data) == 0:
		panel.Empty = true
	case len(data) == 1:
		s, err := cfg.Extract(data)
		if err != nil {
			return err
		}
		panel.Value = formatValue(s.Y[0])
	default:
		svg, err := p.svg(cfg, data)
		if err != nil {
			return fmt.Errorf("failed to draw %s: %w", cfg.Target, err)
		}
		panel.SVG = template.HTML(svg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.panels[cfg.Target]; !ok {
		p.order = append(p.order, cfg.Target)
	}
	p.panels[cfg.Target] = &panel
	return nil
}

// Panels returns a snapshot of all slots in declaration order.
func (p *Page) Panels() []Panel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Panel, 0, len(p.order))
	for _, target := range p.order {
		out = append(out, *p.panels[target])
	}
	return out
}

func (p *Page) svg(cfg Config, data domain.Dataset) (string, error) {
	s, err := cfg.Extract(data)
	if err != nil {
		return "", err
	}
	width := p.width
	if !cfg.FullWidth && cfg.Width > 0 {
		width = cfg.Width
	}
	height := cfg.Height
	if height == 0 {
		height = defaultHeight
	}

	var buf bytes.Buffer
	if cfg.ChartType == Bar {
		err = barChart(cfg, s, width, height).Render(gochart.SVG, &buf)
	} else {
		err = timeChart(cfg, s, width, height).Render(gochart.SVG, &buf)
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func timeChart(cfg Config, s Series, width, height int) gochart.Chart {
	colors := paletteFor(cfg)
	xs := make([]time.Time, len(s.XTimes))
	for i, x := range s.XTimes {
		xs[i] = time.Unix(int64(x), 0).UTC()
	}

	style := gochart.Style{StrokeColor: colors[0], StrokeWidth: 2}
	if cfg.ChartType == Point {
		dot := cfg.PointSize
		if dot == 0 {
			dot = 3
		}
		style = gochart.Style{StrokeWidth: gochart.Disabled, DotColor: colors[0], DotWidth: dot}
	}
	series := []gochart.Series{
		gochart.TimeSeries{Name: cfg.YAccessor, XValues: xs, YValues: s.Y, Style: style},
	}
	if fit := fitFor(cfg, s); fit != nil {
		series = append(series, gochart.TimeSeries{
			Name:    "least squares",
			XValues: xs,
			YValues: fit,
			Style:   gochart.Style{StrokeColor: colors[1], StrokeWidth: 1},
		})
	}

	graph := gochart.Chart{
		Title:  cfg.Title,
		Width:  width,
		Height: height,
		XAxis:  gochart.XAxis{Name: cfg.XLabel, ValueFormatter: gochart.TimeDateValueFormatter},
		YAxis:  gochart.YAxis{Name: cfg.YLabel},
		Series: series,
	}
	if lo, hi := minMax(s.Y); lo == hi {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	// All points on one date: widen the x axis by a day on each side.
	if lo, hi := minMax(s.XTimes); lo == hi {
		graph.XAxis.Range = &gochart.ContinuousRange{
			Min: gochart.TimeToFloat64(xs[0].Add(-24 * time.Hour)),
			Max: gochart.TimeToFloat64(xs[0].Add(24 * time.Hour)),
		}
	}
	return graph
}

func barChart(cfg Config, s Series, width, height int) gochart.BarChart {
	colors := paletteFor(cfg)
	bars := make([]gochart.Value, len(s.Y))
	for i, v := range s.Y {
		bars[i] = gochart.Value{
			Value: v,
			Label: s.Labels[i],
			Style: gochart.Style{FillColor: colors[0], StrokeColor: colors[0]},
		}
	}
	barWidth := (width-100)/len(bars) - 10
	if barWidth < 5 {
		barWidth = 5
	} else if barWidth > 60 {
		barWidth = 60
	}
	graph := gochart.BarChart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: 10,
		Bars:       bars,
	}
	if lo, hi := minMax(s.Y); lo == hi {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: math.Min(0, lo), Max: hi + 1}
	}
	return graph
}

// paletteFor returns at least two colours: the series colour and the fit colour.
func paletteFor(cfg Config) []drawing.Color {
	out := []drawing.Color{gochart.ColorBlue, gochart.ColorRed}
	for i, name := range cfg.Colors() {
		if i >= len(out) {
			break
		}
		out[i] = parseColor(name)
	}
	return out
}

func parseColor(name string) drawing.Color {
	name = strings.ToLower(strings.TrimPrefix(name, "#"))
	if hex, ok := namedColors[name]; ok {
		name = hex
	}
	return drawing.ColorFromHex(name)
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

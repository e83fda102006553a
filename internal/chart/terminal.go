package chart

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/naka-gawa/repo-health/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	targetStyle = lipgloss.NewStyle().Faint(true)
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4285f4"))
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
)

// pixelsPerRow converts the configured pixel height into terminal rows.
const pixelsPerRow = 30

// TerminalRenderer draws charts as text. Each chart is written in one piece,
// so concurrent renders never interleave.
type TerminalRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	width int
}

// NewTerminalRenderer creates a renderer writing to out, using at most width
// columns for plots. A width below 20 is raised to 20.
func NewTerminalRenderer(out io.Writer, width int) *TerminalRenderer {
	if width < 20 {
		width = 20
	}
	return &TerminalRenderer{out: out, width: width}
}

// Render implements Renderer.
func (r *TerminalRenderer) Render(ctx context.Context, cfg Config, data domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := r.draw(cfg, data)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.Title))
	b.WriteString(" ")
	b.WriteString(targetStyle.Render(cfg.Target))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err = io.WriteString(r.out, b.String())
	return err
}

func (r *TerminalRenderer) draw(cfg Config, data domain.Dataset) (string, error) {
	if len(data) == 0 {
		return emptyStyle.Render("No data available"), nil
	}
	s, err := cfg.Extract(data)
	if err != nil {
		return "", err
	}
	if len(s.Y) == 1 {
		return fmt.Sprintf("%s %s", valueStyle.Render(formatValue(s.Y[0])), targetStyle.Render(s.Labels[0])), nil
	}
	if cfg.ChartType == Bar {
		return r.drawBars(cfg, s), nil
	}
	return r.drawPlot(cfg, s), nil
}

func (r *TerminalRenderer) drawPlot(cfg Config, s Series) string {
	width := r.width
	if !cfg.FullWidth && cfg.Width > 0 && cfg.Width/7 < width {
		width = cfg.Width / 7
	}
	height := cfg.Height / pixelsPerRow
	if height < 3 {
		height = 3
	}

	caption := fmt.Sprintf("%s .. %s", s.Labels[0], s.Labels[len(s.Labels)-1])
	if cfg.YLabel != "" {
		caption = cfg.YLabel + ", " + caption
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}

	series := [][]float64{s.Y}
	if fit := fitFor(cfg, s); fit != nil {
		series = append(series, fit)
	}
	opts = append(opts, asciigraph.SeriesColors(seriesColors(cfg, len(series))...))
	return asciigraph.PlotMany(series, opts...)
}

func (r *TerminalRenderer) drawBars(cfg Config, s Series) string {
	maxVal := 0.0
	maxLabelLen := 0
	for i, v := range s.Y {
		if v > maxVal {
			maxVal = v
		}
		if l := len(s.Labels[i]); l > maxLabelLen {
			maxLabelLen = l
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}
	barWidth := r.width - maxLabelLen - 12
	if barWidth < 10 {
		barWidth = 10
	}

	barStyle := lipgloss.NewStyle()
	if colors := cfg.Colors(); len(colors) > 0 {
		barStyle = barStyle.Foreground(lipgloss.Color(colors[0]))
	}

	lines := make([]string, 0, len(s.Y))
	for i, v := range s.Y {
		n := int(v / maxVal * float64(barWidth))
		if n < 0 {
			n = 0
		}
		lines = append(lines, fmt.Sprintf("%*s │%s %s", maxLabelLen, s.Labels[i], barStyle.Render(strings.Repeat("█", n)), formatValue(v)))
	}
	return strings.Join(lines, "\n")
}

func seriesColors(cfg Config, n int) []asciigraph.AnsiColor {
	names := cfg.Colors()
	out := make([]asciigraph.AnsiColor, n)
	for i := range out {
		out[i] = asciigraph.Default
		if i < len(names) {
			if c, ok := asciigraph.ColorNames[strings.ToLower(names[i])]; ok {
				out[i] = c
			}
		} else if i > 0 {
			// the fit line
			out[i] = asciigraph.Red
		}
	}
	return out
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

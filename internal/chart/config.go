// Package chart holds the chart configuration consumed by renderers and the
// renderers themselves.
package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/naka-gawa/repo-health/internal/domain"
)

// Type is the kind of chart drawn for a dataset.
type Type string

const (
	Point Type = "point"
	Line  Type = "line"
	Bar   Type = "bar"
)

var (
	// ErrMissingAccessor is returned when a record lacks a configured accessor field.
	ErrMissingAccessor = errors.New("record is missing accessor field")
	// ErrBadDate is returned when the x accessor of a time chart is not a date.
	ErrBadDate = errors.New("x accessor is not a date")
	// ErrEmptyDataset is returned when there is nothing to draw.
	ErrEmptyDataset = errors.New("dataset is empty")
)

// Config enumerates the rendering options of one chart. The JSON names match
// the options of the browser charting library the dashboard was built on.
type Config struct {
	Title        string   `json:"title"`
	ChartType    Type     `json:"chart_type,omitempty"`
	LeastSquares bool     `json:"least_squares,omitempty"`
	FullWidth    bool     `json:"full_width,omitempty"`
	Height       int      `json:"height,omitempty"`
	Width        int      `json:"width,omitempty"`
	Color        string   `json:"color,omitempty"`
	ColorRange   []string `json:"color_range,omitempty"`
	XAccessor    string   `json:"x_accessor"`
	YAccessor    string   `json:"y_accessor"`
	XLabel       string   `json:"x_label,omitempty"`
	YLabel       string   `json:"y_label,omitempty"`
	PointSize    float64  `json:"point_size,omitempty"`
	Target       string   `json:"target"`
}

// Renderer draws one chart at cfg.Target. Implementations must be safe for
// concurrent use.
type Renderer interface {
	Render(ctx context.Context, cfg Config, data domain.Dataset) error
}

// IsTimeSeries reports whether the x axis holds dates.
func (c Config) IsTimeSeries() bool {
	return c.ChartType != Bar
}

// Colors returns the configured palette, falling back to the single color.
func (c Config) Colors() []string {
	if len(c.ColorRange) > 0 {
		return c.ColorRange
	}
	if c.Color != "" {
		return []string{c.Color}
	}
	return nil
}

// AnchorID is the target selector without its leading '#'.
func (c Config) AnchorID() string {
	if len(c.Target) > 0 && c.Target[0] == '#' {
		return c.Target[1:]
	}
	return c.Target
}

// Validate checks that data is drawable with this configuration: both
// accessors exist in every record, y values are numeric and, for time
// charts, x values are dates.
func (c Config) Validate(data domain.Dataset) error {
	for i, rec := range data {
		for _, key := range []string{c.XAccessor, c.YAccessor} {
			if !rec.Has(key) {
				return fmt.Errorf("%w: record %d has no %q", ErrMissingAccessor, i, key)
			}
		}
		if _, err := rec.Float(c.YAccessor); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if c.IsTimeSeries() {
			if _, err := rec.Time(c.XAccessor); err != nil {
				return fmt.Errorf("%w: record %d: %v", ErrBadDate, i, err)
			}
		}
	}
	return nil
}

// Series is a dataset flattened into parallel slices.
type Series struct {
	Labels []string
	XTimes []float64 // unix seconds, time charts only
	Y      []float64
}

// Extract flattens data along the configured accessors. Call Validate first.
func (c Config) Extract(data domain.Dataset) (Series, error) {
	s := Series{Y: make([]float64, 0, len(data))}
	for i, rec := range data {
		y, err := rec.Float(c.YAccessor)
		if err != nil {
			return Series{}, fmt.Errorf("record %d: %w", i, err)
		}
		s.Y = append(s.Y, y)
		if c.IsTimeSeries() {
			t, err := rec.Time(c.XAccessor)
			if err != nil {
				return Series{}, fmt.Errorf("%w: record %d: %v", ErrBadDate, i, err)
			}
			s.XTimes = append(s.XTimes, float64(t.Unix()))
			s.Labels = append(s.Labels, t.Format("2006-01-02"))
		} else {
			s.Labels = append(s.Labels, rec.String(c.XAccessor))
		}
	}
	return s, nil
}

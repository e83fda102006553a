package chart

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Fit returns the least-squares line through (xs, ys), evaluated at every x.
// It returns nil when fewer than two points are given or all x are equal.
func Fit(xs, ys []float64) []float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return nil
	}
	series := make(stats.Series, len(xs))
	for i := range xs {
		series[i] = stats.Coordinate{X: xs[i], Y: ys[i]}
	}
	line, err := stats.LinearRegression(series)
	if err != nil {
		return nil
	}
	out := make([]float64, len(line))
	for i, p := range line {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return nil
		}
		out[i] = p.Y
	}
	return out
}

// fitFor returns the overlay line for s when cfg asks for one.
func fitFor(cfg Config, s Series) []float64 {
	if !cfg.LeastSquares || !cfg.IsTimeSeries() {
		return nil
	}
	return Fit(s.XTimes, s.Y)
}

// Package report builds the performance series shown on the reports view.
//
// The series is a static placeholder until the service exposes a reports
// endpoint; no endpoint contract is assumed here.
package report

import (
	"fmt"
	"strings"

	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/rating"
)

// PlaceholderSeries returns a fresh copy of the static series.
func PlaceholderSeries() []model.ScorePoint {
	return []model.ScorePoint{
		{Date: "2025-09-01", Score: 80},
		{Date: "2025-09-02", Score: 85},
		{Date: "2025-09-03", Score: 90},
	}
}

// Summary aggregates a series.
type Summary struct {
	Count   int
	Min     float64
	Max     float64
	Average float64
	// Trend is last minus first score.
	Trend float64
	Label rating.Label
}

// Summarize computes a Summary. An empty series yields the zero Summary.
func Summarize(series []model.ScorePoint) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(series), Min: series[0].Score, Max: series[0].Score}
	var sum float64
	for _, p := range series {
		sum += p.Score
		if p.Score < s.Min {
			s.Min = p.Score
		}
		if p.Score > s.Max {
			s.Max = p.Score
		}
	}
	s.Average = sum / float64(len(series))
	s.Trend = series[len(series)-1].Score - series[0].Score
	s.Label = rating.For(s.Average)
	return s
}

// Point is a plotted sample in chart coordinates.
type Point struct {
	X, Y  float64
	Date  string
	Score float64
}

// Chart holds the geometry of a line chart over the 0..100 score range.
type Chart struct {
	Width, Height int
	Padding       int
	Points        []Point
}

// Plot lays a series out on a width x height canvas. Scores are clamped to
// the rating range; dates are spaced evenly.
func Plot(series []model.ScorePoint, width, height, padding int) Chart {
	c := Chart{Width: width, Height: height, Padding: padding}
	innerW := float64(width - 2*padding)
	innerH := float64(height - 2*padding)
	if innerW <= 0 || innerH <= 0 {
		return c
	}
	step := 0.0
	if len(series) > 1 {
		step = innerW / float64(len(series)-1)
	}
	for i, p := range series {
		c.Points = append(c.Points, Point{
			X:     float64(padding) + step*float64(i),
			Y:     float64(padding) + innerH*(1-rating.Normalize(p.Score)/100),
			Date:  p.Date,
			Score: p.Score,
		})
	}
	return c
}

// Polyline renders the points in SVG polyline syntax.
func (c Chart) Polyline() string {
	parts := make([]string, len(c.Points))
	for i, p := range c.Points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// Package rating turns assessment scores into the labels shown on profile
// cards and reports.
package rating

import "math"

// Score bounds used by the assessment service.
const (
	minScoreValue = 0
	maxScoreValue = 100
)

// Label is a human-readable performance band.
type Label string

// Bands, highest first.
const (
	Elite            Label = "Elite"
	Excellent        Label = "Excellent"
	Good             Label = "Good"
	Average          Label = "Average"
	NeedsImprovement Label = "Needs Improvement"
)

// NotAssessed labels an athlete the service has no score for.
const NotAssessed Label = "Not Assessed"

// band is the lowest score that still earns label.
type band struct {
	floor float64
	label Label
}

var bands = []band{
	{90, Elite},
	{80, Excellent},
	{70, Good},
	{60, Average},
}

// Normalize clamps score into [0, 100]. NaN maps to 0.
func Normalize(score float64) float64 {
	if math.IsNaN(score) {
		return minScoreValue
	}
	return math.Max(minScoreValue, math.Min(maxScoreValue, score))
}

// For returns the band a score falls into.
func For(score float64) Label {
	s := Normalize(score)
	for _, b := range bands {
		if s >= b.floor {
			return b.label
		}
	}
	return NeedsImprovement
}

// ForOptional returns NotAssessed for a missing score and For otherwise.
func ForOptional(score *float64) Label {
	if score == nil {
		return NotAssessed
	}
	return For(*score)
}

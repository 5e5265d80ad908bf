// Package types contains small value types shared across the application.
package types

// Entry is one leaderboard row as served by the assessment service.
type Entry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Color string  `json:"color,omitempty"`
}

// Leaderboard is the envelope the service wraps entries in. Items stays nil
// when the key is absent or null, and is empty for "items": [].
type Leaderboard struct {
	Items []Entry `json:"items"`
}

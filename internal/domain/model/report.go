package model

// ScorePoint is one dated score in a performance series.
type ScorePoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

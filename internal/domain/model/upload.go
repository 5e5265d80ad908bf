package model

import (
	"encoding/json"
	"io"
)

// DefaultContentType is declared for uploads that do not name one.
const DefaultContentType = "application/octet-stream"

// Upload references one file for the duration of a single upload call.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Analysis is the per-dimension breakdown produced by the assessment service.
type Analysis struct {
	FormScore        float64  `json:"form_score"`
	ConsistencyScore float64  `json:"consistency_score"`
	PowerScore       float64  `json:"power_score"`
	TechniqueScore   float64  `json:"technique_score"`
	OverallRating    string   `json:"overall_rating"`
	Recommendations  []string `json:"recommendations"`
}

// VideoInfo describes the uploaded clip as seen by the service.
type VideoInfo struct {
	FrameCount int     `json:"frame_count"`
	Duration   float64 `json:"duration"`
	FPS        float64 `json:"fps"`
}

// UploadResult is the assessment returned for an uploaded video. The same
// shape is served for the latest result.
type UploadResult struct {
	Score         float64         `json:"score"`
	CheatDetected int             `json:"cheat_detected"`
	Analysis      Analysis        `json:"analysis"`
	VideoInfo     VideoInfo       `json:"video_info"`
	Raw           json.RawMessage `json:"-"`
}

// Flagged reports whether the service suspected a manipulated attempt.
func (r UploadResult) Flagged() bool { return r.CheatDetected != 0 }

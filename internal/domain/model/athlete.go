// Package model contains the client-side data model shared by the remote
// boundary, the UI flows and the CLI.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrInvalidID is returned when an athlete id is neither a JSON string nor a JSON number.
var ErrInvalidID = errors.New("athlete id must be a string or a number")

// AthleteID is the service-assigned identifier. The service may encode it as
// a JSON number or a JSON string; both decode to the same textual form.
type AthleteID string

// UnmarshalJSON accepts 1, "1" and "a-7".
func (id *AthleteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AthleteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidID
	}
	*id = AthleteID(n.String())
	return nil
}

// MarshalJSON writes integral ids back as numbers and everything else as strings.
func (id AthleteID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Athlete is a read-only, point-in-time copy of a service-owned record.
// Age and LatestScore are nil when the service omits them; an athlete that
// has not been assessed yet has no score.
type Athlete struct {
	ID          AthleteID `json:"id"`
	Name        string    `json:"name"`
	Age         *int      `json:"age,omitempty"`
	LatestScore *float64  `json:"latest_score,omitempty"`
	Sport       string    `json:"sport,omitempty"`
}

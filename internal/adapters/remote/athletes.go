package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/gochamp/internal/domain/model"
)

var errMissingID = errors.New("athlete without id")

// ListAthletes fetches the current athlete collection. An empty collection is
// an empty, non-nil slice.
func (c *Client) ListAthletes(ctx context.Context) ([]model.Athlete, error) {
	var athletes []model.Athlete
	err := c.do(ctx, request{
		op:     OpListAthletes,
		method: http.MethodGet,
		path:   PathAthletes,
		decode: func(raw json.RawMessage) error {
			var dErr error
			athletes, dErr = decodeAthletes(raw)
			return dErr
		},
	})
	if err != nil {
		return nil, err
	}
	return athletes, nil
}

// decodeAthletes accepts a bare array or the {"athletes": [...]} envelope.
func decodeAthletes(raw json.RawMessage) ([]model.Athlete, error) {
	var list []model.Athlete
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	case '{':
		var env struct {
			Athletes *[]model.Athlete `json:"athletes"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		if env.Athletes == nil {
			return nil, errors.New(`missing "athletes"`)
		}
		list = *env.Athletes
	default:
		return nil, fmt.Errorf("expected array or object")
	}
	for i, a := range list {
		if a.ID == "" {
			return nil, fmt.Errorf("%w at index %d", errMissingID, i)
		}
	}
	if list == nil {
		list = []model.Athlete{}
	}
	return list, nil
}

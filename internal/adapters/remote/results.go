package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/internal/domain/types"
)

// LatestResult fetches the most recent assessment.
func (c *Client) LatestResult(ctx context.Context) (*model.UploadResult, error) {
	var res model.UploadResult
	err := c.do(ctx, request{
		op:     OpLatest,
		method: http.MethodGet,
		path:   PathLatest,
		decode: func(raw json.RawMessage) error {
			res.Raw = append(json.RawMessage(nil), raw...)
			return decodeObject(&res)(raw)
		},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Leaderboard fetches the ranked entries. Both the {"items": [...]} envelope
// and a bare array are accepted.
func (c *Client) Leaderboard(ctx context.Context) ([]types.Entry, error) {
	var entries []types.Entry
	err := c.do(ctx, request{
		op:     OpLeaderboard,
		method: http.MethodGet,
		path:   PathLeaderboard,
		decode: func(raw json.RawMessage) error {
			switch firstByte(raw) {
			case '[':
				return json.Unmarshal(raw, &entries)
			case '{':
				var board types.Leaderboard
				if err := json.Unmarshal(raw, &board); err != nil {
					return err
				}
				if board.Items == nil {
					return errors.New(`missing "items"`)
				}
				entries = board.Items
				return nil
			default:
				return errors.New("expected array or object")
			}
		},
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, nil
}

// Ping calls the service root and returns its welcome message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var body struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, request{
		op:     OpPing,
		method: http.MethodGet,
		path:   PathRoot,
		decode: decodeObject(&body),
	})
	if err != nil {
		return "", err
	}
	return body.Message, nil
}

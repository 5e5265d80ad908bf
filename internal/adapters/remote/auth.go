package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/okian/gochamp/internal/domain/model"
	"github.com/okian/gochamp/pkg/logger"
)

// Authenticate posts the credentials to the login endpoint. On success the
// response body is returned unmodified in Raw; Session is filled in when the
// body is a JSON object whose fields match it, and left zero otherwise.
func (c *Client) Authenticate(ctx context.Context, creds model.Credentials) (*model.SessionResult, error) {
	return c.session(ctx, OpAuthenticate, PathLogin, creds)
}

// SendOTP asks the service to dispatch a one-time password to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (*model.OTPDispatch, error) {
	return c.otp(ctx, OpSendOTP, PathSendOTP, phone)
}

// ResendOTP asks the service to dispatch a fresh one-time password.
func (c *Client) ResendOTP(ctx context.Context, phone string) (*model.OTPDispatch, error) {
	return c.otp(ctx, OpResendOTP, PathResendOTP, phone)
}

// VerifyOTP exchanges a one-time password for a session.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*model.SessionResult, error) {
	payload := map[string]string{"phone_number": phone, "otp": code}
	return c.session(ctx, OpVerifyOTP, PathVerifyOTP, payload)
}

// VerifyToken asks the service whether token is still valid.
func (c *Client) VerifyToken(ctx context.Context, token string) (*model.TokenStatus, error) {
	var status model.TokenStatus
	err := c.do(ctx, request{
		op:     OpVerifyToken,
		method: http.MethodGet,
		path:   PathVerifyToken,
		query:  url.Values{"token": []string{token}},
		decode: decodeObject(&status),
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) session(ctx context.Context, op, path string, payload any) (*model.SessionResult, error) {
	var res model.SessionResult
	err := c.do(ctx, request{
		op:      op,
		method:  http.MethodPost,
		path:    path,
		payload: payload,
		decode: func(raw json.RawMessage) error {
			res.Raw = append(json.RawMessage(nil), raw...)
			if firstByte(raw) != '{' {
				return nil
			}
			// The body is opaque; the typed view is best effort.
			if err := json.Unmarshal(raw, &res.Session); err != nil {
				res.Session = model.Session{}
				c.logger.Debug(ctx, "session body does not match the typed view",
					logger.String("op", op), logger.Error(err))
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) otp(ctx context.Context, op, path, phone string) (*model.OTPDispatch, error) {
	var out model.OTPDispatch
	err := c.do(ctx, request{
		op:      op,
		method:  http.MethodPost,
		path:    path,
		payload: map[string]string{"phone_number": phone},
		decode:  decodeObject(&out),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeObject decodes a JSON object into v and rejects any other shape.
func decodeObject(v any) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		if firstByte(raw) != '{' {
			return fmt.Errorf("expected object, got %q", string(firstByte(raw)))
		}
		return json.Unmarshal(raw, v)
	}
}

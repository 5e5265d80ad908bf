package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrRequestFailed is the single failure kind surfaced by every remote
// operation: network failure, non-2xx status, and absent or malformed body
// all match it via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// ErrInvalidBaseURL is returned by New for an unusable service address.
var ErrInvalidBaseURL = errors.New("invalid base url")

// Causes attached to RequestFailedError.Err. They are diagnostics; callers
// branch on ErrRequestFailed only.
var (
	errEmptyBody     = errors.New("empty response body")
	errMalformedBody = errors.New("malformed response body")
	errBodyTooLarge  = errors.New("response body too large")
	errMissingFile   = errors.New("upload has no content")
)

// maxDetailLen caps how much of a non-JSON error body is kept in Message.
const maxDetailLen = 200

// RequestFailedError describes one failed round trip.
type RequestFailedError struct {
	Op     string
	Method string
	Path   string
	// Status is 0 when no response was received.
	Status int
	// Message is the detail the service attached to an error status, if any.
	Message string
	Err     error
}

func (e *RequestFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %s", e.Op, e.Method, e.Path, ErrRequestFailed.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is makes every RequestFailedError match ErrRequestFailed.
func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestFailedError) Unwrap() error { return e.Err }

func newFailure(r request, status int, message string, err error) *RequestFailedError {
	return &RequestFailedError{
		Op:      r.op,
		Method:  r.method,
		Path:    r.path,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// extractError pulls a human-readable detail from an error body. The
// service answers {"detail": "..."} for handled errors and
// {"detail": [{"msg": "..."}]} for validation errors.
func extractError(body []byte) string {
	data := strings.TrimSpace(string(body))
	if data == "" {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return truncate(data)
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if payload.Error != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(payload.Message)
}

func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}

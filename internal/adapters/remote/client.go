// Package remote is the boundary between the GoChamp UI flows and the
// remote assessment service. Each operation is one HTTP round trip with two
// outcomes: parsed data, or an error matching ErrRequestFailed.
//
// The client holds no mutable state. It never retries, caches, coalesces or
// reorders calls; overlapping invocations are independent.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gochamp/pkg/logger"
	"github.com/okian/gochamp/pkg/metrics"
)

// Service paths.
const (
	PathLogin       = "/auth/login"
	PathSendOTP     = "/auth/send-otp"
	PathResendOTP   = "/auth/resend-otp"
	PathVerifyOTP   = "/auth/verify-otp"
	PathVerifyToken = "/auth/verify-token"
	PathAthletes    = "/results/athletes"
	PathLatest      = "/results/latest"
	PathLeaderboard = "/results/leaderboard"
	PathUpload      = "/upload_video/"
	PathRoot        = "/"
)

// Operation names used in errors, logs and metrics.
const (
	OpAuthenticate = "authenticate"
	OpSendOTP      = "send_otp"
	OpResendOTP    = "resend_otp"
	OpVerifyOTP    = "verify_otp"
	OpVerifyToken  = "verify_token"
	OpListAthletes = "list_athletes"
	OpLatest       = "latest_result"
	OpLeaderboard  = "leaderboard"
	OpUploadVideo  = "upload_video"
	OpPing         = "ping"
)

// HeaderRequestID carries a per-call correlation id.
const HeaderRequestID = "X-Request-ID"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "gochamp/1.0"
	maxResponseBytes = 8 << 20
)

// Client issues requests against one fixed service origin.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     logger.Logger
	metrics    *metrics.Manager
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client is copied
// before a timeout is applied, so h itself is never modified.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout bounds each round trip, upload streaming included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = strings.TrimSpace(ua)
		}
	}
}

// WithLogger sets the logger; calls are logged under the "remote" component.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("remote")
		}
	}
}

// WithMetrics records calls on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New constructs a Client for the service at base. A missing scheme
// defaults to http.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, base)
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		userAgent:  defaultUserAgent,
		logger:     logger.Nop(),
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	hc.Timeout = c.timeout
	c.httpClient = &hc
	return c, nil
}

// BaseURL returns the service origin the client was built for.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one round trip. Exactly one of payload and body is set
// for requests that carry a body.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	payload     any
	body        io.Reader
	contentType string
	// decode parses a 2xx body that is non-empty valid JSON. A decode error
	// turns the call into a failure.
	decode func(raw json.RawMessage) error
}

// do performs r and returns nil only when the service answered 2xx with a
// body that decode accepted.
func (c *Client) do(ctx context.Context, r request) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	requestID := uuid.NewString()
	status := 0

	defer func() {
		elapsed := time.Since(start)
		c.metrics.ObserveRemoteCall(r.op, err != nil, float64(elapsed.Microseconds())/1000)
		fields := []logger.Field{
			logger.String("op", r.op),
			logger.String("method", r.method),
			logger.String("path", r.path),
			logger.Int("status", status),
			logger.String("request_id", requestID),
			logger.Duration("elapsed", elapsed),
		}
		if err != nil {
			c.logger.Warn(ctx, "remote call failed", append(fields, logger.Error(err))...)
			return
		}
		c.logger.Debug(ctx, "remote call completed", fields...)
	}()

	body := r.body
	contentType := r.contentType
	if r.payload != nil {
		data, mErr := json.Marshal(r.payload)
		if mErr != nil {
			return newFailure(r, 0, "", fmt.Errorf("encode request body: %w", mErr))
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}
	req, rErr := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if rErr != nil {
		return newFailure(r, 0, "", fmt.Errorf("create request: %w", rErr))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, dErr := c.httpClient.Do(req)
	if dErr != nil {
		return newFailure(r, 0, "", dErr)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if readErr != nil {
		return newFailure(r, status, "", fmt.Errorf("read response: %w", readErr))
	}
	if len(raw) > maxResponseBytes {
		return newFailure(r, status, "", errBodyTooLarge)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return newFailure(r, status, extractError(raw), nil)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return newFailure(r, status, "", errEmptyBody)
	}
	if !json.Valid(raw) {
		return newFailure(r, status, "", errMalformedBody)
	}
	if r.decode != nil {
		if decErr := r.decode(raw); decErr != nil {
			return newFailure(r, status, "", fmt.Errorf("%w: %w", errMalformedBody, decErr))
		}
	}
	return nil
}

// firstByte returns the first non-space byte of raw, or 0.
func firstByte(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

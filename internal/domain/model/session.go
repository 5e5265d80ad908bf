package model

import "encoding/json"

// Credentials are created per login attempt and never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the typed view of a login payload. Every field is optional;
// the service decides which ones it sends.
type Session struct {
	Success     bool   `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Token       string `json:"token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// BearerToken returns whichever token field the service populated.
func (s Session) BearerToken() string {
	if s.AccessToken != "" {
		return s.AccessToken
	}
	return s.Token
}

// SessionResult carries the login response body unmodified in Raw, plus the
// parsed Session when the body is a JSON object.
type SessionResult struct {
	Raw     json.RawMessage `json:"-"`
	Session Session         `json:"session"`
}

// OTPDispatch is the acknowledgement of an OTP send or resend.
type OTPDispatch struct {
	Message     string `json:"message"`
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp,omitempty"`
}

// TokenStatus is the service's verdict on a bearer token.
type TokenStatus struct {
	Valid       bool   `json:"valid"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinels.
package config

import "time"

// Config contains process configuration shared by the web frontend and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the web frontend listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the single origin of the remote assessment service.
	BaseURL string `koanf:"base_url"`

	// RequestTimeoutMS bounds one remote round trip, uploads included.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// UploadMemoryBytes caps how much of an uploaded form the web frontend
	// keeps in memory before spilling to temp files.
	UploadMemoryBytes int64 `koanf:"upload_memory_bytes"`

	// UserAgent is sent on every remote request.
	UserAgent string `koanf:"user_agent"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		BaseURL:           "http://127.0.0.1:8000",
		RequestTimeoutMS:  30_000,
		UploadMemoryBytes: 32 << 20,
		UserAgent:         "gochamp/1.0",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

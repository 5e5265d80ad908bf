package config

import "errors"

// Sentinel error kinds. Load wraps every failure in one of them.
var (
	// ErrInvalidConfig marks a value that parsed but cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, env or decode failure.
	ErrLoadConfig = errors.New("load config failed")
)

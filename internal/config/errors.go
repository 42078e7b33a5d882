package config

import "errors"

// Sentinel errors returned by Load and Validate.
var (
	// ErrInvalidConfig marks values that parsed but are unusable.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks file, env or decode failures.
	ErrLoadConfig = errors.New("load config failed")
)

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env on top.
// - Engine tunables live under the "engine" key and map onto layout.Config.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"

	"github.com/okian/lifelines/internal/domain/layout"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath points at a JSON, YAML, CSV or SQLite dataset. Empty means
	// a synthetic dataset of SyntheticRecords records is generated.
	DatasetPath string `koanf:"dataset_path"`

	// WatchDataset reloads the dataset when the file changes.
	WatchDataset bool `koanf:"watch_dataset"`

	// WatchDebounceMS coalesces bursts of file events into one reload.
	WatchDebounceMS int `koanf:"watch_debounce_ms"`

	// SyntheticRecords and SyntheticSeed shape the generated demo dataset.
	SyntheticRecords int   `koanf:"synthetic_records"`
	SyntheticSeed    int64 `koanf:"synthetic_seed"`

	// FrameIntervalMS is the frame loop tick.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// MaxRecordsLimit caps GET /records?limit.
	MaxRecordsLimit int `koanf:"max_records_limit"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// Engine holds the layout engine tunables.
	Engine layout.Config `koanf:"engine"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WatchDebounceMS:   250,
		SyntheticRecords:  5_000,
		SyntheticSeed:     1,
		FrameIntervalMS:   16,
		MaxRecordsLimit:   500,
		ShutdownTimeoutMS: 5_000,
		Engine:            layout.DefaultConfig(),
	}
}

// FrameInterval returns FrameIntervalMS as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// WatchDebounce returns WatchDebounceMS as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

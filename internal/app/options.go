package service

import (
	"time"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngineConfig sets the layout engine configuration.
func WithEngineConfig(cfg layout.Config) Option {
	return func(s *Service) {
		s.engineCfg = cfg
	}
}

// WithDatasetPath loads records from path instead of synthesizing them.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithWatch reloads the dataset when its file changes.
func WithWatch(enabled bool, debounce time.Duration) Option {
	return func(s *Service) {
		s.watch = enabled
		if debounce > 0 {
			s.watchDebounce = debounce
		}
	}
}

// WithSynthetic sets the size and seed of the generated demo dataset used
// when no dataset path is configured.
func WithSynthetic(n int, seed int64) Option {
	return func(s *Service) {
		if n >= 0 {
			s.syntheticRecords = n
		}
		s.syntheticSeed = seed
	}
}

// WithFrameInterval sets the frame loop tick.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

package repository

import (
	"time"

	"github.com/okian/lifelines/internal/domain/model"
)

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithRecords seeds the store.
func WithRecords(records []model.Record) Option {
	return func(s *TreapStore) {
		s.seed = records
	}
}

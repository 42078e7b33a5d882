package frames

import (
	"time"

	"github.com/okian/lifelines/pkg/logger"
)

// Option applies a configuration option to a Loop.
type Option func(*Loop)

// WithInterval sets the frame tick.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLogger sets the loop logger.
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithInitial queues a first request so a frame is produced on the first tick.
func WithInitial(req Request) Option {
	return func(l *Loop) {
		_ = l.mailbox.Submit(req)
	}
}

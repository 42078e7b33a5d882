package sweep

import "time"

// Violation kinds.
const (
	KindOverlap      = "lane_overlap"
	KindRowBudget    = "row_budget"
	KindThreshold    = "below_threshold"
	KindMonotonic    = "threshold_not_monotonic"
	KindLabel        = "label_unsafe"
	KindLanes        = "lane_count"
	KindOrder        = "entry_order"
	KindIdempotence  = "not_idempotent"
	KindRequestError = "request_failed"
)

// Defaults used by cmd/sweep.
const (
	DefaultSteps   = 24
	DefaultPans    = 6
	DefaultMinK    = 1
	DefaultMaxK    = 40
	DefaultWidth   = 1200
	DefaultHeight  = 600
	DefaultTimeout = 10 * time.Second
)

const (
	workerChannelMultiplier = 2
	maxLoggedViolations     = 20
	epsilon                 = 1e-6
)

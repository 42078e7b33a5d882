// Package frames turns a stream of zoom/pan submissions into at most one
// layout computation per frame tick.
//
// Submissions go through a latest-wins mailbox: a new submission overwrites
// an unconsumed one, which is counted as superseded and never computed.
package frames

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/metrics"
)

// Request is one transform/viewport submission.
type Request struct {
	Transform   model.ZoomTransform
	Viewport    model.Viewport
	SubmittedAt time.Time
}

// Coalescer is a single-slot mailbox with overwrite semantics. It is safe
// for concurrent use.
type Coalescer struct {
	mu      sync.Mutex
	pending *Request

	submitted  atomic.Uint64
	superseded atomic.Uint64
	taken      atomic.Uint64
}

// NewCoalescer creates an empty mailbox.
func NewCoalescer() *Coalescer {
	return &Coalescer{}
}

// Submit stores req, replacing any pending request. It never blocks.
// Transforms the engine cannot map are rejected with layout.ErrInvalidTransform.
func (c *Coalescer) Submit(req Request) error {
	if err := layout.ValidateTransform(req.Transform); err != nil {
		metrics.RecordErrorByComponent("frames", "invalid_transform")
		return err
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now()
	}

	c.mu.Lock()
	if c.pending != nil {
		c.superseded.Add(1)
		metrics.RecordTransformSuperseded()
	}
	c.pending = &req
	c.mu.Unlock()

	c.submitted.Add(1)
	metrics.RecordTransformSubmitted()
	return nil
}

// Take removes and returns the pending request, if any.
func (c *Coalescer) Take() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Request{}, false
	}
	req := *c.pending
	c.pending = nil
	c.taken.Add(1)
	return req, true
}

// Pending reports whether a request is waiting.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// CoalescerStats are lifetime counters. Submitted == Taken + Superseded
// (+1 while a request is pending).
type CoalescerStats struct {
	Submitted  uint64
	Superseded uint64
	Taken      uint64
}

// Stats returns the mailbox counters.
func (c *Coalescer) Stats() CoalescerStats {
	return CoalescerStats{
		Submitted:  c.submitted.Load(),
		Superseded: c.superseded.Load(),
		Taken:      c.taken.Load(),
	}
}

package frames

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/logger"
	"github.com/okian/lifelines/pkg/metrics"
)

const defaultInterval = 16 * time.Millisecond

// Source supplies the record set. Version must change whenever All would
// return different records.
type Source interface {
	All(ctx context.Context) []model.Record
	Version(ctx context.Context) uint64
}

// Frame is a published drawing plan.
type Frame struct {
	Seq        uint64
	Plan       layout.Plan
	Transform  model.ZoomTransform
	Viewport   model.Viewport
	ComputedAt time.Time
	Took       time.Duration
	// Latency is the time from the request's submission to publication.
	Latency time.Duration
}

// Loop owns a layout.Engine and recomputes it at most once per tick, when a
// new request is pending or the record set changed.
type Loop struct {
	engine   *layout.Engine
	source   Source
	mailbox  *Coalescer
	interval time.Duration
	logger   logger.Logger

	latest     atomic.Pointer[Frame]
	seq        uint64
	version    uint64
	hasVersion bool

	mu       sync.Mutex
	running  bool
	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewLoop creates a frame loop around engine.
func NewLoop(engine *layout.Engine, source Source, opts ...Option) *Loop {
	l := &Loop{
		engine:   engine,
		source:   source,
		mailbox:  NewCoalescer(),
		interval: defaultInterval,
		logger:   logger.Get().Named("frames"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit forwards req to the mailbox.
func (l *Loop) Submit(req Request) error {
	return l.mailbox.Submit(req)
}

// Mailbox exposes the coalescer, mainly for stats.
func (l *Loop) Mailbox() *Coalescer { return l.mailbox }

// Latest returns the most recently published frame, or nil before the first.
func (l *Loop) Latest() *Frame {
	return l.latest.Load()
}

// Run ticks until ctx is cancelled or Shutdown is called.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info(ctx, "frame loop started", logger.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info(context.Background(), "frame loop stopped", logger.String("reason", "context"))
			return
		case <-l.shutdown:
			l.logger.Info(ctx, "frame loop stopped", logger.String("reason", "shutdown"))
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one frame: it consumes the pending request, if any, and
// recomputes when there is something new. It reports whether a frame was
// published. Tick must not be called concurrently with itself.
func (l *Loop) Tick(ctx context.Context) bool {
	req, hasReq := l.mailbox.Take()
	version := l.source.Version(ctx)
	dataChanged := !l.hasVersion || version != l.version

	if !hasReq && !dataChanged {
		return false
	}
	if hasReq {
		l.engine.SetViewport(req.Viewport)
		if err := l.engine.SetTransform(req.Transform); err != nil {
			// Submit validated it already; keep the previous transform.
			l.logger.Warn(ctx, "dropping invalid transform", logger.Error(err))
		}
		if req.Viewport.Degenerate() {
			metrics.RecordDegenerateViewport()
		}
	}
	if dataChanged {
		l.engine.SetRecords(l.source.All(ctx))
		l.version, l.hasVersion = version, true
	}

	start := time.Now()
	plan := l.engine.Layout()
	took := time.Since(start)

	l.seq++
	f := &Frame{
		Seq:        l.seq,
		Plan:       plan,
		Transform:  l.engine.Transform(),
		Viewport:   l.engine.Viewport(),
		ComputedAt: time.Now(),
		Took:       took,
	}
	if hasReq {
		f.Latency = f.ComputedAt.Sub(req.SubmittedAt)
	}
	l.latest.Store(f)

	metrics.RecordLayout(float64(took.Microseconds())/1000, len(plan.Entries), plan.Lanes, plan.Threshold, plan.Candidates)
	metrics.RecordFrameRendered(f.Seq)
	l.logger.Debug(ctx, "frame published",
		logger.Int64("seq", int64(f.Seq)),
		logger.Int("visible", len(plan.Entries)),
		logger.Int("lanes", plan.Lanes),
		logger.Int("threshold", plan.Threshold),
		logger.Duration("took", took))
	return true
}

// Shutdown stops Run and waits for it to return.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.once.Do(func() { close(l.shutdown) })

	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if !running {
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Package service wires the record store, the layout engine, the frame loop
// and the dataset watcher into the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/lifelines/internal/adapters/dataset"
	"github.com/okian/lifelines/internal/adapters/mq/frames"
	repository "github.com/okian/lifelines/internal/adapters/repository"
	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/logger"
	"github.com/okian/lifelines/pkg/metrics"
)

// Service owns the record set and everything computed from it.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.TreapStore
	loop    *frames.Loop
	watcher *dataset.Watcher

	// Configuration
	engineCfg        layout.Config
	datasetPath      string
	watch            bool
	watchDebounce    time.Duration
	syntheticRecords int
	syntheticSeed    int64
	frameInterval    time.Duration

	// State
	started    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastReport *dataset.Report
	lastReload time.Time
	reloads    int

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engineCfg:        layout.DefaultConfig(),
		watchDebounce:    250 * time.Millisecond,
		syntheticRecords: 5000,
		syntheticSeed:    1,
		frameInterval:    16 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the initial record set and starts the frame loop and, when
// enabled, the dataset watcher. A failed initial load is returned; later
// reload failures keep the previous records.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if err := s.engineCfg.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	s.logger.Info(ctx, "starting lifelines service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.store = repository.NewTreapStore(runCtx)

	if err := s.loadInitial(ctx); err != nil {
		cancel()
		_ = s.store.Close()
		return err
	}

	engine, err := layout.NewEngine(s.engineCfg)
	if err != nil {
		cancel()
		_ = s.store.Close()
		return err
	}
	s.loop = frames.NewLoop(engine, s.store,
		frames.WithInterval(s.frameInterval),
		frames.WithLogger(s.logger.Named("frames")),
	)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop.Run(runCtx)
	}()

	if s.watch && s.datasetPath != "" {
		w, err := dataset.NewWatcher(s.datasetPath,
			dataset.WithDebounce(s.watchDebounce),
			dataset.WithWatchLogger(s.logger.Named("watcher")))
		if err != nil {
			// The service still works without live reload.
			s.logger.Warn(ctx, "dataset watcher disabled", logger.Error(err))
		} else {
			s.watcher = w
			s.wg.Add(1)
			go s.watchLoop(runCtx, w)
		}
	}

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "lifelines service started",
		logger.Int("records", s.store.Count(ctx)),
		logger.String("dataset", s.datasetPath),
		logger.Bool("watch", s.watcher != nil),
		logger.Duration("frameInterval", s.frameInterval),
	)
	return nil
}

func (s *Service) loadInitial(ctx context.Context) error {
	if s.datasetPath == "" {
		records := dataset.Synthesize(s.syntheticRecords, s.syntheticSeed)
		metrics.UpdateDatasetRecords(len(records))
		s.logger.Info(ctx, "using synthetic dataset",
			logger.Int("records", len(records)),
			logger.Int64("seed", s.syntheticSeed))
		return s.store.Replace(ctx, records)
	}
	return s.reloadLocked(ctx)
}

func (s *Service) watchLoop(ctx context.Context, w *dataset.Watcher) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Changes():
			if !ok {
				return
			}
			if err := s.Reload(ctx); err != nil {
				s.logger.Error(ctx, "dataset reload failed, keeping previous records", logger.Error(err))
			}
		}
	}
}

// Reload re-reads the dataset file and swaps the store contents. On error
// the previous records stay in place.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return ErrNotStarted
	}
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) error {
	if s.datasetPath == "" {
		return nil
	}
	ds, err := dataset.Load(ctx, s.datasetPath)
	if err != nil {
		metrics.RecordDatasetReload("error")
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := s.store.Replace(ctx, ds.Records); err != nil {
		metrics.RecordDatasetReload("error")
		return fmt.Errorf("replace records: %w", err)
	}
	metrics.RecordDatasetReload("ok")

	report := ds.Report
	s.lastReport = &report
	s.lastReload = time.Now()
	s.reloads++

	s.logger.Info(ctx, "dataset loaded",
		logger.String("source", report.Source),
		logger.String("format", report.Format),
		logger.Int("rows", report.Rows),
		logger.Int("accepted", report.Accepted),
		logger.Int("rejected", report.RejectedTotal()),
		logger.Duration("took", report.Duration))
	for _, r := range report.Rejections {
		s.logger.Debug(ctx, "row rejected",
			logger.Int("row", r.Row),
			logger.String("id", r.ID),
			logger.String("reason", r.Reason))
	}
	return nil
}

// Stop shuts down the frame loop and the watcher.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping lifelines service...")
	s.started = false
	s.cancel()
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.mu.Unlock()

	// watchLoop may be waiting on mu inside Reload.
	s.wg.Wait()

	s.mu.Lock()
	_ = s.store.Close()
	s.watcher = nil
	s.mu.Unlock()
	s.logger.Info(context.Background(), "lifelines service stopped")
}

func (s *Service) running() (*repository.TreapStore, *frames.Loop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.loop, nil
}

// Layout computes a plan synchronously for t and v on the current records.
// Invalid transforms are rejected with layout.ErrInvalidTransform.
func (s *Service) Layout(ctx context.Context, t model.ZoomTransform, v model.Viewport) (layout.Plan, error) {
	store, _, err := s.running()
	if err != nil {
		return layout.Plan{}, err
	}
	if err := layout.ValidateTransform(t); err != nil {
		metrics.RecordErrorByComponent("service", "invalid_transform")
		return layout.Plan{}, err
	}
	if v.Degenerate() {
		metrics.RecordDegenerateViewport()
	}

	start := time.Now()
	plan := layout.Compute(store.All(ctx), t, v, s.engineCfg)
	took := time.Since(start)
	metrics.RecordLayout(float64(took.Microseconds())/1000, len(plan.Entries), plan.Lanes, plan.Threshold, plan.Candidates)
	return plan, nil
}

// Submit hands a transform to the frame loop. The call never blocks; an
// unconsumed earlier submission is superseded.
func (s *Service) Submit(ctx context.Context, t model.ZoomTransform, v model.Viewport) error {
	_, loop, err := s.running()
	if err != nil {
		return err
	}
	if err := loop.Submit(frames.Request{Transform: t, Viewport: v}); err != nil {
		return err
	}
	s.logger.Debug(ctx, "transform submitted",
		logger.Float64("k", t.Scale),
		logger.Float64("x", t.TranslateX))
	return nil
}

// LatestFrame returns the most recent frame published by the frame loop.
func (s *Service) LatestFrame(_ context.Context) (*frames.Frame, error) {
	_, loop, err := s.running()
	if err != nil {
		return nil, err
	}
	f := loop.Latest()
	if f == nil {
		return nil, frames.ErrNoFrame
	}
	return f, nil
}

// Threshold returns the zoom-derived prominence threshold for k.
func (s *Service) Threshold(k float64) int {
	return layout.Threshold(s.engineCfg, k)
}

// EngineConfig returns the engine configuration.
func (s *Service) EngineConfig() layout.Config {
	return s.engineCfg
}

// TopN returns the n most prominent records.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	store, _, err := s.running()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, n)
}

// Get returns one record and its rank.
func (s *Service) Get(ctx context.Context, id string) (repository.Entry, error) {
	store, _, err := s.running()
	if err != nil {
		return repository.Entry{}, err
	}
	return store.Get(ctx, id)
}

// Records returns the current record snapshot in ranking order.
func (s *Service) Records(ctx context.Context) []model.Record {
	store, _, err := s.running()
	if err != nil {
		return nil
	}
	return store.All(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"datasetPath":   s.datasetPath,
		"watch":         s.watcher != nil,
		"frameInterval": s.frameInterval.String(),
		"goroutines":    runtime.NumGoroutine(),
	}
	if !s.started {
		return stats
	}

	stats["records"] = s.store.Count(ctx)
	stats["version"] = s.store.Version(ctx)

	mb := s.loop.Mailbox().Stats()
	stats["transformsSubmitted"] = mb.Submitted
	stats["transformsSuperseded"] = mb.Superseded
	if f := s.loop.Latest(); f != nil {
		stats["frame"] = f.Seq
		stats["visible"] = len(f.Plan.Entries)
		stats["lanes"] = f.Plan.Lanes
		stats["threshold"] = f.Plan.Threshold
		stats["lastLayoutMs"] = float64(f.Took.Microseconds()) / 1000
	}
	if s.lastReport != nil {
		stats["reloads"] = s.reloads
		stats["lastReload"] = s.lastReload.UTC().Format(time.RFC3339)
		stats["datasetRows"] = s.lastReport.Rows
		stats["datasetRejected"] = s.lastReport.RejectedTotal()
	}

	metrics.UpdateRepositoryRecordsTotal(s.store.Count(ctx))
	return stats
}

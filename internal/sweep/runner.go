package sweep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lifelines/pkg/logger"
)

// ErrViolations is returned by Run when any layout breaks a property.
var ErrViolations = errors.New("layout violations found")

// Run executes the complete sweep and returns its statistics. The error is
// ErrViolations when requests succeeded but layouts were inconsistent.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Named("sweep")
	stats := &Stats{
		StartTime: time.Now(),
		ByKind:    make(map[string]int),
	}

	log.Info(ctx, "starting layout sweep",
		logger.String("baseURL", config.BaseURL),
		logger.Int("steps", config.Steps),
		logger.Int("pans", config.Pans),
		logger.Float64("minK", config.MinK),
		logger.Float64("maxK", config.MaxK),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Request every view concurrently
	views := Views(config)
	stats.Views = len(views)
	samples := fetchAll(ctx, config, client, views, stats)

	// Step 3: Per-layout properties
	for _, s := range samples {
		stats.Entries += len(s.layout.Entries)
		stats.addViolations(Check(s.view, s.layout)...)
	}

	// Step 4: Threshold monotonicity across zoom levels
	stats.addViolations(CheckMonotonic(samples)...)

	// Step 5: Idempotence of the first and last views
	if len(samples) > 0 {
		for _, s := range []sample{samples[0], samples[len(samples)-1]} {
			again, _, err := client.Layout(ctx, s.view)
			stats.Requests++
			if err != nil {
				stats.Failed++
				continue
			}
			if diff, ok := Same(s.layout, again); !ok {
				stats.addViolations(Violation{View: s.view, Kind: KindIdempotence, Detail: diff})
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, config, stats)

	if stats.Failed > 0 && stats.Failed == stats.Requests {
		return stats, fmt.Errorf("all %d requests failed", stats.Failed)
	}
	if len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, len(stats.Violations))
	}
	log.Info(ctx, "sweep completed successfully")
	return stats, nil
}

func (s *Stats) addViolations(vs ...Violation) {
	for _, v := range vs {
		s.Violations = append(s.Violations, v)
		s.ByKind[v.Kind]++
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// fetchAll requests every view with a worker pool. Results keep the order
// of views; failed views are left out.
func fetchAll(ctx context.Context, config *Config, client *HTTPClient, views []View, stats *Stats) []sample {
	workers := max(config.Workers, 1)
	results := make([]*sample, len(views))

	var (
		failed    int64
		totalTook int64
		maxTook   int64
	)

	indexChan := make(chan int, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				l, took, err := client.Layout(ctx, views[index])
				atomic.AddInt64(&totalTook, int64(took))
				for {
					cur := atomic.LoadInt64(&maxTook)
					if int64(took) <= cur || atomic.CompareAndSwapInt64(&maxTook, cur, int64(took)) {
						break
					}
				}
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "layout request failed",
							logger.Float64("k", views[index].K), logger.Float64("x", views[index].X), logger.Error(err))
					}
					continue
				}
				results[index] = &sample{view: views[index], layout: l}
			}
		}()
	}

	for i := range views {
		indexChan <- i
	}
	close(indexChan)
	wg.Wait()

	stats.Requests += len(views)
	stats.Failed += int(failed)
	stats.MaxLatency = time.Duration(maxTook)
	if len(views) > 0 {
		stats.MeanLatency = time.Duration(totalTook / int64(len(views)))
	}

	out := make([]sample, 0, len(views))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	for i := 0; i < int(failed); i++ {
		stats.ByKind[KindRequestError]++
	}
	return out
}

// displayFinalStats logs the summary and a bounded list of violations.
func displayFinalStats(ctx context.Context, log logger.Logger, config *Config, stats *Stats) {
	limit := maxLoggedViolations
	if config.Verbose {
		limit = len(stats.Violations)
	}
	for i, v := range stats.Violations {
		if i >= limit {
			break
		}
		log.Warn(ctx, "violation",
			logger.String("kind", v.Kind),
			logger.Float64("k", v.View.K),
			logger.Float64("x", v.View.X),
			logger.String("detail", v.Detail))
	}

	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("views", stats.Views),
		logger.Int("requests", stats.Requests),
		logger.Int("failed", stats.Failed),
		logger.Int("entries", stats.Entries),
		logger.Int("violations", len(stats.Violations)),
		logger.Any("byKind", stats.ByKind),
		logger.Duration("meanLatency", stats.MeanLatency),
		logger.Duration("maxLatency", stats.MaxLatency),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}

package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: prominence DESC, then birth year ASC, then ID ASC. "less" means
// ranks earlier, so in-order traversal yields the ranking from most to least
// prominent. Node priorities are a hash of the record ID, which keeps the
// tree balanced in expectation and the shape deterministic for a given set.

// Snapshot is an immutable ranked view of the store.
type Snapshot struct {
	Records []model.Record
	Version uint64
}

// treap node
type node struct {
	rec   model.Record
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if a should appear before b in the ranking.
func less(a, b *model.Record) bool {
	if a.Prominence != b.Prominence {
		return a.Prominence > b.Prominence
	}
	if a.BirthYear != b.BirthYear {
		return a.BirthYear < b.BirthYear
	}
	return a.ID < b.ID
}

func sameKey(a, b *model.Record) bool {
	return a.ID == b.ID && a.Prominence == b.Prominence && a.BirthYear == b.BirthYear
}

func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, rec model.Record) *node {
	if n == nil {
		return &node{rec: rec, prio: priority(rec.ID), size: 1}
	}
	if less(&rec, &n.rec) {
		n.left = insert(n.left, rec)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, rec)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, rec *model.Record) *node {
	if n == nil {
		return nil
	}
	switch {
	case sameKey(rec, &n.rec):
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, rec)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, rec)
		}
	case less(rec, &n.rec):
		n.left = deleteNode(n.left, rec)
	default:
		n.right = deleteNode(n.right, rec)
	}
	fix(n)
	return n
}

// rankOf returns the number of records ranked before rec.
func rankOf(n *node, rec *model.Record) int {
	before := 0
	for n != nil {
		switch {
		case sameKey(rec, &n.rec):
			return before + nsize(n.left)
		case less(rec, &n.rec):
			n = n.left
		default:
			before += nsize(n.left) + 1
			n = n.right
		}
	}
	return before
}

// collectTopN appends up to limit records in ranking order.
func collectTopN(n *node, limit int, out *[]model.Record) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.rec)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a Store ordered by ranking with O(log n) expected updates.
type TreapStore struct {
	mu      sync.RWMutex
	root    *node
	byID    map[string]model.Record
	version uint64
	seed    []model.Record

	// snapshot is rebuilt lazily after mutations; nil means stale.
	snapshot atomic.Pointer[Snapshot]

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	closeOnce             sync.Once
}

// NewTreapStore constructs a treap store with configuration options. The
// background metrics updater stops when ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]model.Record),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.seed) > 0 {
		s.replaceLocked(s.seed)
		s.seed = nil
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Replace implements Store.Replace.
func (s *TreapStore) Replace(_ context.Context, records []model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	for i := range records {
		if records[i].ID == "" {
			metrics.RecordErrorByComponent("repository", "empty_id")
			return ErrEmptyID
		}
	}

	s.mu.Lock()
	s.replaceLocked(records)
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(n)
	return nil
}

func (s *TreapStore) replaceLocked(records []model.Record) {
	s.root = nil
	s.byID = make(map[string]model.Record, len(records))
	for _, r := range records {
		if old, ok := s.byID[r.ID]; ok {
			s.root = deleteNode(s.root, &old)
		}
		s.byID[r.ID] = r
		s.root = insert(s.root, r)
	}
	s.version++
	s.snapshot.Store(nil)
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, r model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if r.ID == "" {
		metrics.RecordErrorByComponent("repository", "empty_id")
		return ErrEmptyID
	}

	isNew := false
	s.mu.Lock()
	if old, ok := s.byID[r.ID]; ok {
		s.root = deleteNode(s.root, &old)
	} else {
		isNew = true
	}
	s.byID[r.ID] = r
	s.root = insert(s.root, r)
	s.version++
	s.snapshot.Store(nil)
	s.mu.Unlock()

	if isNew {
		metrics.UpdateRepositoryRecordsTotal(s.Count(ctx))
	}
	return nil
}

// Get returns a record and its rank in O(log n).
func (s *TreapStore) Get(_ context.Context, id string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{Rank: rankOf(s.root, &r) + 1, Record: r}, nil
}

// TopN returns the top n entries in ranking order.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	records := make([]model.Record, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &records)
	s.mu.RUnlock()

	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = Entry{Rank: i + 1, Record: r}
	}
	return out, nil
}

// All returns the ranked snapshot slice, rebuilding it if a mutation
// happened since the last call.
func (s *TreapStore) All(_ context.Context) []model.Record {
	return s.Snapshot().Records
}

// Snapshot returns the current immutable view.
func (s *TreapStore) Snapshot() *Snapshot {
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}
	records := make([]model.Record, 0, len(s.byID))
	collectTopN(s.root, len(s.byID), &records)
	snap := &Snapshot{Records: records, Version: s.version}
	s.snapshot.Store(snap)
	return snap
}

// Count returns the total number of records.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Version implements Store.Version.
func (s *TreapStore) Version(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// startMetricsUpdater periodically publishes the record count.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateRepositoryRecordsTotal(s.Count(ctx))
			}
		}
	}()
}

package layout

import (
	"fmt"
	"sort"

	"github.com/okian/lifelines/internal/domain/model"
)

// Plan is a full drawing plan plus the figures that produced it.
type Plan struct {
	Entries       []model.LayoutEntry // ordered by lane, then birth year
	Threshold     int
	BaseThreshold int
	VisibleStart  float64
	VisibleEnd    float64
	Lanes         int
	Candidates    int
	RowBudget     int
}

// Empty reports whether the plan draws nothing.
func (p Plan) Empty() bool {
	return len(p.Entries) == 0
}

// ComputeLayout returns the drawing plan entries for records seen through t
// on a viewport of size v. It is deterministic: identical arguments give
// identical output.
//
// A degenerate viewport or an empty candidate set yields an empty slice.
// An invalid config or a non-finite/non-positive scale is a programmer error
// and panics.
func ComputeLayout(records []model.Record, t model.ZoomTransform, v model.Viewport, cfg Config) []model.LayoutEntry {
	return Compute(records, t, v, cfg).Entries
}

// Compute is ComputeLayout returning the whole Plan.
func Compute(records []model.Record, t model.ZoomTransform, v model.Viewport, cfg Config) Plan {
	mustValidate(cfg, t)
	if v.Degenerate() {
		return emptyPlan()
	}
	base, ok := NewBaseScale(cfg, v)
	if !ok {
		return emptyPlan()
	}
	return compute(records, base.Apply(t), t.Scale, v, cfg.resolved())
}

func compute(records []model.Record, s Scale, k float64, v model.Viewport, cfg Config) Plan {
	sel := selectVisible(records, s, k, v, cfg)
	slots, lanes := PackSlots(sel.Records, s.X, cfg)

	entries := make([]model.LayoutEntry, len(slots))
	for i, slot := range slots {
		entries[i] = model.LayoutEntry{
			Record: slot.Record,
			Lane:   slot.Lane,
			StartX: slot.StartX,
			EndX:   slot.EndX,
			Label:  FitLabel(slot.Record, slot.StartX, slot.EndX, cfg),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Lane != entries[j].Lane {
			return entries[i].Lane < entries[j].Lane
		}
		return chronologicalBefore(entries[i].Record, entries[j].Record)
	})

	return Plan{
		Entries:       entries,
		Threshold:     sel.Threshold,
		BaseThreshold: sel.BaseThreshold,
		VisibleStart:  sel.VisibleStart,
		VisibleEnd:    sel.VisibleEnd,
		Lanes:         lanes,
		Candidates:    sel.Candidates,
		RowBudget:     sel.RowBudget,
	}
}

func emptyPlan() Plan {
	return Plan{Entries: []model.LayoutEntry{}}
}

// mustValidate panics with an error wrapping ErrInvalidConfig or
// ErrInvalidTransform.
func mustValidate(cfg Config, t model.ZoomTransform) {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("layout: %w", err))
	}
	if err := ValidateTransform(t); err != nil {
		panic(fmt.Errorf("layout: %w", err))
	}
}

// State is the engine lifecycle state.
type State int

const (
	// Uninitialized means no usable viewport is known; layouts are empty.
	Uninitialized State = iota
	// Ready means viewport and base scale are established.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Option applies a configuration option to an Engine.
type Option func(*Engine)

// WithRecords sets the initial record set.
func WithRecords(records []model.Record) Option {
	return func(e *Engine) {
		e.records = records
	}
}

// WithTransform sets the initial transform. Invalid transforms are ignored.
func WithTransform(t model.ZoomTransform) Option {
	return func(e *Engine) {
		if ValidateTransform(t) == nil {
			e.transform = t
		}
	}
}

// WithViewport sets the initial viewport.
func WithViewport(v model.Viewport) Option {
	return func(e *Engine) {
		e.SetViewport(v)
	}
}

// Engine keeps the latest inputs and the cached base scale between layout
// calls. It is not safe for concurrent use; callers serialize access (the
// frame loop owns one Engine).
type Engine struct {
	cfg       Config
	records   []model.Record
	transform model.ZoomTransform
	viewport  model.Viewport
	base      BaseScale
	state     State
	last      Plan
}

// NewEngine creates an engine in the Uninitialized state.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		transform: model.ZoomTransform{Scale: cfg.MinK},
		last:      emptyPlan(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// SetViewport records the viewport and derives the base scale. A degenerate
// viewport moves the engine back to Uninitialized.
func (e *Engine) SetViewport(v model.Viewport) {
	e.viewport = v
	if v.Degenerate() {
		e.state = Uninitialized
		return
	}
	base, ok := NewBaseScale(e.cfg, v)
	if !ok {
		e.state = Uninitialized
		return
	}
	e.base = base
	e.state = Ready
}

// SetTransform replaces the transform. Invalid transforms are rejected and
// the previous one kept.
func (e *Engine) SetTransform(t model.ZoomTransform) error {
	if err := ValidateTransform(t); err != nil {
		return err
	}
	e.transform = t
	return nil
}

// SetRecords replaces the record set. The slice is borrowed, not copied.
func (e *Engine) SetRecords(records []model.Record) {
	e.records = records
}

// Layout recomputes the plan from the current inputs.
func (e *Engine) Layout() Plan {
	if e.state != Ready {
		e.last = emptyPlan()
		return e.last
	}
	e.last = compute(e.records, e.base.Apply(e.transform), e.transform.Scale, e.viewport, e.cfg.resolved())
	return e.last
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Config returns the engine config.
func (e *Engine) Config() Config { return e.cfg }

// Transform returns the current transform.
func (e *Engine) Transform() model.ZoomTransform { return e.transform }

// Viewport returns the current viewport.
func (e *Engine) Viewport() model.Viewport { return e.viewport }

// Last returns the plan produced by the most recent Layout call.
func (e *Engine) Last() Plan { return e.last }

// Stats summarises the most recent Layout call.
type Stats struct {
	State     State
	Visible   int
	Lanes     int
	Threshold int
}

// Stats returns figures from the most recent Layout call.
func (e *Engine) Stats() Stats {
	return Stats{
		State:     e.state,
		Visible:   len(e.last.Entries),
		Lanes:     e.last.Lanes,
		Threshold: e.last.Threshold,
	}
}

// Scale returns the year→screen mapping for the current inputs. ok is false
// while Uninitialized.
func (e *Engine) Scale() (Scale, bool) {
	if e.state != Ready {
		return Scale{}, false
	}
	return e.base.Apply(e.transform), true
}

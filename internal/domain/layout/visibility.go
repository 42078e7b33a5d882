package layout

import (
	"sort"

	"github.com/okian/lifelines/internal/domain/model"
)

// Selection is the outcome of the visibility filter.
type Selection struct {
	// Records are the selected records ordered by birth year, then ID.
	Records []model.Record

	// BaseThreshold is the zoom-derived threshold; Threshold is the value
	// actually applied after first-paint relaxation.
	BaseThreshold int
	Threshold     int

	// VisibleStart and VisibleEnd are the years at the viewport edges,
	// before the buffer is applied.
	VisibleStart float64
	VisibleEnd   float64

	// Candidates counts records intersecting the buffered year range.
	Candidates int

	// RowBudget is the cap applied to the selection.
	RowBudget int
}

// Visible returns the records to display for a transform and viewport,
// ordered by birth year. It returns nil for a degenerate viewport and
// panics on an invalid config or transform, like ComputeLayout.
func Visible(records []model.Record, t model.ZoomTransform, v model.Viewport, cfg Config) []model.Record {
	mustValidate(cfg, t)
	if v.Degenerate() {
		return nil
	}
	base, ok := NewBaseScale(cfg, v)
	if !ok {
		return nil
	}
	return selectVisible(records, base.Apply(t), t.Scale, v, cfg.resolved()).Records
}

// selectVisible expects cfg to be resolved.
func selectVisible(records []model.Record, s Scale, k float64, v model.Viewport, cfg Config) Selection {
	start, end := s.YearRange(v)
	buffer := cfg.BufferFraction * (end - start)
	lo, hi := start-buffer, end+buffer

	candidates := make([]model.Record, 0, len(records)/4+1)
	for i := range records {
		r := &records[i]
		if float64(r.EffectiveEndYear(cfg.CurrentYear)) >= lo && float64(r.BirthYear) <= hi {
			candidates = append(candidates, *r)
		}
	}

	base := Threshold(cfg, k)
	threshold := RelaxedThreshold(cfg, base, candidates)

	passed := candidates[:0]
	for _, r := range candidates {
		if r.Prominence >= threshold && r.Prominence >= cfg.MinScore {
			passed = append(passed, r)
		}
	}

	budget := cfg.RowBudget(v.Height)
	if len(passed) > budget {
		sort.Slice(passed, func(i, j int) bool { return rankedBefore(passed[i], passed[j]) })
		passed = passed[:budget]
	}
	sort.Slice(passed, func(i, j int) bool { return chronologicalBefore(passed[i], passed[j]) })

	return Selection{
		Records:       passed,
		BaseThreshold: base,
		Threshold:     threshold,
		VisibleStart:  start,
		VisibleEnd:    end,
		Candidates:    len(candidates),
		RowBudget:     budget,
	}
}

// rankedBefore orders by prominence desc, then birth year asc, then ID asc.
func rankedBefore(a, b model.Record) bool {
	if a.Prominence != b.Prominence {
		return a.Prominence > b.Prominence
	}
	if a.BirthYear != b.BirthYear {
		return a.BirthYear < b.BirthYear
	}
	return a.ID < b.ID
}

// chronologicalBefore orders by birth year asc, then ID asc.
func chronologicalBefore(a, b model.Record) bool {
	if a.BirthYear != b.BirthYear {
		return a.BirthYear < b.BirthYear
	}
	return a.ID < b.ID
}

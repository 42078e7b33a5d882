package layout

import (
	"sort"

	"github.com/okian/lifelines/internal/domain/model"
)

// XFunc maps a year to a screen x coordinate.
type XFunc func(year float64) float64

// Slot is a record placed in a lane with its pixel extent.
type Slot struct {
	Record model.Record
	Lane   int
	StartX float64
	EndX   float64
}

// Pack assigns each candidate to a lane and returns the lane per record ID.
func Pack(candidates []model.Record, x XFunc, cfg Config) map[string]int {
	slots, _ := PackSlots(candidates, x, cfg)
	lanes := make(map[string]int, len(slots))
	for _, s := range slots {
		lanes[s.Record.ID] = s.Lane
	}
	return lanes
}

// PackSlots runs greedy interval scheduling over the candidates in
// chronological order: each record goes into the lowest-numbered lane whose
// right edge (previous bar end plus MinGap) is at or left of the record's
// start. Slots come back in processing order together with the lane count.
//
// Bars sharing a lane never overlap on [StartX, EndX).
func PackSlots(candidates []model.Record, x XFunc, cfg Config) ([]Slot, int) {
	cfg = cfg.resolved()
	ordered := make([]model.Record, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool { return chronologicalBefore(ordered[i], ordered[j]) })

	slots := make([]Slot, 0, len(ordered))
	var edges []float64
	for _, r := range ordered {
		startX := x(float64(r.BirthYear))
		endX := x(float64(r.EffectiveEndYear(cfg.CurrentYear)))
		if endX < startX {
			endX = startX
		}

		lane := -1
		for i, edge := range edges {
			if edge <= startX {
				lane = i
				break
			}
		}
		if lane < 0 {
			edges = append(edges, 0)
			lane = len(edges) - 1
		}
		edges[lane] = endX + cfg.MinGap

		slots = append(slots, Slot{Record: r, Lane: lane, StartX: startX, EndX: endX})
	}
	return slots, len(edges)
}

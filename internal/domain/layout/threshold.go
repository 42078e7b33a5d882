package layout

import (
	"math"

	"github.com/okian/lifelines/internal/domain/model"
)

// Threshold maps a zoom scale to the minimum prominence a record needs to be
// shown. The scale is clamped to [MinK, MaxK] and mapped linearly from
// MaxScore (zoomed out) to MinScore (zoomed in).
func Threshold(cfg Config, scale float64) int {
	if math.IsNaN(scale) {
		scale = cfg.MinK
	}
	k := math.Min(math.Max(scale, cfg.MinK), cfg.MaxK)

	ratio := 0.0
	if cfg.MaxK > cfg.MinK {
		ratio = (k - cfg.MinK) / (cfg.MaxK - cfg.MinK)
	}
	t := int(math.Round(float64(cfg.MaxScore) - ratio*float64(cfg.MaxScore-cfg.MinScore)))
	return clampInt(t, cfg.MinScore, cfg.MaxScore)
}

// RelaxedThreshold lowers base until at least MinInitialRows of the
// candidates pass, or until the candidates are exhausted. It never goes
// below MinScore and never raises base.
func RelaxedThreshold(cfg Config, base int, candidates []model.Record) int {
	var hist [maxProminence + 1]int
	for i := range candidates {
		p := clampInt(candidates[i].Prominence, minProminence, maxProminence)
		if p < cfg.MinScore {
			continue
		}
		hist[p]++
	}

	passing := 0
	for s := maxProminence; s >= base && s >= minProminence; s-- {
		passing += hist[s]
	}
	if passing >= cfg.MinInitialRows {
		return base
	}

	t := base
	for s := base - 1; s >= cfg.MinScore && passing < cfg.MinInitialRows; s-- {
		if hist[s] == 0 {
			continue
		}
		passing += hist[s]
		t = s
	}
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

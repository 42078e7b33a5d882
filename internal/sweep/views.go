package sweep

import "math"

// Views expands a config into the transforms to request: Steps zoom levels
// spaced geometrically over [MinK, MaxK], each panned Pans times across the
// zoomed content from its left edge to its right edge.
func Views(cfg *Config) []View {
	steps := max(cfg.Steps, 1)
	pans := max(cfg.Pans, 1)

	views := make([]View, 0, steps*pans)
	seen := make(map[[2]float64]struct{}, steps*pans)
	for i := 0; i < steps; i++ {
		k := cfg.MinK
		if steps > 1 && cfg.MaxK > cfg.MinK {
			k = cfg.MinK * math.Pow(cfg.MaxK/cfg.MinK, float64(i)/float64(steps-1))
		}
		travel := (k - 1) * cfg.Width
		for j := 0; j < pans; j++ {
			x := 0.0
			if pans > 1 && travel > 0 {
				x = -travel * float64(j) / float64(pans-1)
			}
			key := [2]float64{k, x}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			views = append(views, View{K: k, X: x, Width: cfg.Width, Height: cfg.Height})
		}
	}
	return views
}

package layout

import (
	"fmt"
	"math"

	"github.com/okian/lifelines/internal/domain/model"
)

// viewportLeft is the left screen edge labels are clamped to.
const viewportLeft = 0

// BaseScale maps years onto the plot width at scale 1. It depends only on
// the viewport width and the config, so callers may cache it across
// transform changes.
type BaseScale struct {
	PixelsPerYear float64
	Offset        float64
}

// NewBaseScale derives the base scale for a viewport. It returns false when
// the plot area has no width.
func NewBaseScale(cfg Config, v model.Viewport) (BaseScale, bool) {
	plot := v.Width - cfg.MarginLeft - cfg.MarginRight
	if plot <= 0 || math.IsNaN(plot) || math.IsInf(plot, 0) {
		return BaseScale{}, false
	}
	ppy := plot / float64(cfg.MaxYear-cfg.MinYear)
	return BaseScale{
		PixelsPerYear: ppy,
		Offset:        cfg.MarginLeft - float64(cfg.MinYear)*ppy,
	}, true
}

// Apply combines the base scale with a zoom transform.
func (b BaseScale) Apply(t model.ZoomTransform) Scale {
	return Scale{base: b, k: t.Scale, tx: t.TranslateX}
}

// Scale is the full year→screen mapping
// screenX = (year*PixelsPerYear + Offset)*k + tx.
type Scale struct {
	base BaseScale
	k    float64
	tx   float64
}

// X maps a year to a screen x coordinate.
func (s Scale) X(year float64) float64 {
	return (year*s.base.PixelsPerYear+s.base.Offset)*s.k + s.tx
}

// Invert maps a screen x coordinate back to a (fractional) year.
func (s Scale) Invert(x float64) float64 {
	return ((x-s.tx)/s.k - s.base.Offset) / s.base.PixelsPerYear
}

// YearRange returns the years at the left and right edges of the viewport.
func (s Scale) YearRange(v model.Viewport) (start, end float64) {
	return s.Invert(viewportLeft), s.Invert(v.Width)
}

// VisibleYearRange is a convenience wrapper returning the years at the
// viewport edges for a transform. ok is false for a degenerate viewport.
func VisibleYearRange(t model.ZoomTransform, v model.Viewport, cfg Config) (start, end float64, ok bool) {
	if v.Degenerate() {
		return 0, 0, false
	}
	base, ok := NewBaseScale(cfg, v)
	if !ok {
		return 0, 0, false
	}
	start, end = base.Apply(t).YearRange(v)
	return start, end, true
}

// ValidateTransform rejects transforms the engine cannot map.
func ValidateTransform(t model.ZoomTransform) error {
	switch {
	case math.IsNaN(t.Scale) || math.IsInf(t.Scale, 0):
		return fmt.Errorf("%w: scale must be finite", ErrInvalidTransform)
	case t.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidTransform, t.Scale)
	case math.IsNaN(t.TranslateX) || math.IsInf(t.TranslateX, 0):
		return fmt.Errorf("%w: translate must be finite", ErrInvalidTransform)
	}
	return nil
}

// ZoomAround returns t rescaled by factor while keeping screen x anchored,
// with the resulting scale clamped to [MinK, MaxK].
func ZoomAround(t model.ZoomTransform, factor, anchorX float64, cfg Config) model.ZoomTransform {
	k := math.Min(math.Max(t.Scale*factor, cfg.MinK), cfg.MaxK)
	// Solve (anchorX - tx')/k' == (anchorX - tx)/k.
	tx := anchorX - (anchorX-t.TranslateX)*k/t.Scale
	return model.ZoomTransform{Scale: k, TranslateX: tx}
}

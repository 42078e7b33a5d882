// Package layout is the temporal layout and level-of-detail engine. Given a
// record set, a zoom transform and a viewport it decides which records are
// shown, which lane each one occupies and what label fits on its bar.
//
// Everything in this package is a pure function of its inputs; there is no
// I/O and no shared mutable state.
package layout

import (
	"fmt"
	"math"
	"time"
)

// Prominence bounds accepted anywhere in the engine.
const (
	minProminence = 0
	maxProminence = 100
)

// Config holds every tunable of the engine. It is passed by value into each
// call and never read from global state.
type Config struct {
	// MinYear and MaxYear span the base domain mapped onto the plot width at
	// scale 1.
	MinYear int `koanf:"min_year"`
	MaxYear int `koanf:"max_year"`

	// RowHeight is the pixel height of a lane.
	RowHeight float64 `koanf:"row_height"`

	// MinGap is the horizontal pixel gap kept between bars sharing a lane.
	MinGap float64 `koanf:"min_gap"`

	// MinScore is the absolute prominence floor; MaxScore is the threshold
	// when fully zoomed out.
	MinScore int `koanf:"min_score"`
	MaxScore int `koanf:"max_score"`

	// MinK and MaxK are the zoom scale extent.
	MinK float64 `koanf:"min_k"`
	MaxK float64 `koanf:"max_k"`

	// BufferFraction widens the visible year range on both sides by this
	// fraction of the visible span so bars don't pop at the edges.
	BufferFraction float64 `koanf:"buffer_fraction"`

	// MinInitialRows is both the number of records the threshold is relaxed
	// to reach and the floor of the row budget.
	MinInitialRows int `koanf:"min_initial_rows"`

	// WideBarPixelThreshold is the bar width above which the long
	// "name (birth–death)" label may be used.
	WideBarPixelThreshold float64 `koanf:"wide_bar_pixel_threshold"`

	// MinLegibleLabelWidth is the smallest available width that gets a label.
	MinLegibleLabelWidth float64 `koanf:"min_legible_label_width"`

	// PixelPerChar is the average rendered glyph width.
	PixelPerChar float64 `koanf:"pixel_per_char"`

	MarginTop    float64 `koanf:"margin_top"`
	MarginBottom float64 `koanf:"margin_bottom"`
	MarginLeft   float64 `koanf:"margin_left"`
	MarginRight  float64 `koanf:"margin_right"`

	// LabelPadding is subtracted from the available label width.
	LabelPadding float64 `koanf:"label_padding"`

	// Ellipsis terminates truncated labels.
	Ellipsis string `koanf:"ellipsis"`

	// CurrentYear pins "now" for ongoing records. Zero means the wall clock
	// year at the time of the call.
	CurrentYear int `koanf:"current_year"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MinYear:               -800,
		MaxYear:               2030,
		RowHeight:             24,
		MinGap:                8,
		MinScore:              10,
		MaxScore:              100,
		MinK:                  1,
		MaxK:                  40,
		BufferFraction:        0.5,
		MinInitialRows:        10,
		WideBarPixelThreshold: 160,
		MinLegibleLabelWidth:  20,
		PixelPerChar:          7,
		MarginTop:             30,
		MarginBottom:          10,
		LabelPadding:          4,
		Ellipsis:              "…",
	}
}

// Validate reports configuration bugs. A config that fails validation is a
// programmer error, not a runtime condition.
func (c Config) Validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"row_height", c.RowHeight},
		{"min_gap", c.MinGap},
		{"min_k", c.MinK},
		{"max_k", c.MaxK},
		{"buffer_fraction", c.BufferFraction},
		{"wide_bar_pixel_threshold", c.WideBarPixelThreshold},
		{"min_legible_label_width", c.MinLegibleLabelWidth},
		{"pixel_per_char", c.PixelPerChar},
		{"margin_top", c.MarginTop},
		{"margin_bottom", c.MarginBottom},
		{"margin_left", c.MarginLeft},
		{"margin_right", c.MarginRight},
		{"label_padding", c.LabelPadding},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, f.name)
		}
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}

	switch {
	case c.MaxYear <= c.MinYear:
		return fmt.Errorf("%w: max_year (%d) must be greater than min_year (%d)", ErrInvalidConfig, c.MaxYear, c.MinYear)
	case c.RowHeight == 0:
		return fmt.Errorf("%w: row_height must be positive", ErrInvalidConfig)
	case c.PixelPerChar == 0:
		return fmt.Errorf("%w: pixel_per_char must be positive", ErrInvalidConfig)
	case c.MinK == 0:
		return fmt.Errorf("%w: min_k must be positive", ErrInvalidConfig)
	case c.MaxK < c.MinK:
		return fmt.Errorf("%w: max_k (%v) must not be below min_k (%v)", ErrInvalidConfig, c.MaxK, c.MinK)
	case c.MinScore < minProminence || c.MaxScore > maxProminence:
		return fmt.Errorf("%w: score bounds must lie in [%d,%d]", ErrInvalidConfig, minProminence, maxProminence)
	case c.MinScore > c.MaxScore:
		return fmt.Errorf("%w: min_score (%d) must not exceed max_score (%d)", ErrInvalidConfig, c.MinScore, c.MaxScore)
	case c.MinInitialRows < 0:
		return fmt.Errorf("%w: min_initial_rows must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Year returns the current year used for ongoing records.
func (c Config) Year() int {
	if c.CurrentYear != 0 {
		return c.CurrentYear
	}
	return time.Now().Year()
}

// resolved pins CurrentYear so a single call sees one consistent "now".
func (c Config) resolved() Config {
	c.CurrentYear = c.Year()
	return c
}

// MaxVisibleRows is the number of lanes that fit in the viewport height.
func (c Config) MaxVisibleRows(height float64) int {
	rows := math.Floor((height - c.MarginTop - c.MarginBottom) / c.RowHeight)
	if rows < 0 || math.IsNaN(rows) {
		return 0
	}
	return int(rows)
}

// RowBudget is the maximum number of records selected for a viewport height.
func (c Config) RowBudget(height float64) int {
	return max(c.MinInitialRows, c.MaxVisibleRows(height))
}

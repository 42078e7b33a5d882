// Package model contains domain models passed between layers.
package model

// Lifespan cap applied to records without a recorded death year.
const maxOngoingLifespan = 100

// Record is one person's lifespan. Records are immutable inputs: the engine
// only borrows them for the duration of a layout call.
type Record struct {
	ID          string   // unique, stable across recomputation
	Name        string   // display name
	BirthYear   int      // always present; negative years are BC
	DeathYear   *int     // nil means ongoing
	Prominence  int      // fame ranking in [0,100], higher is more significant
	Color       string   // display colour, opaque to the engine
	Description string   // free text for renderers
	Tags        []string // free-form labels for renderers
}

// Ongoing reports whether the record has no recorded death year.
func (r Record) Ongoing() bool {
	return r.DeathYear == nil
}

// EffectiveEndYear returns the year the record's bar ends at. Records born
// more than a century before currentYear without a death year are treated as
// ending at BirthYear+100 instead of running up to the present.
func (r Record) EffectiveEndYear(currentYear int) int {
	if r.DeathYear != nil {
		return *r.DeathYear
	}
	if currentYear-r.BirthYear > maxOngoingLifespan {
		return r.BirthYear + maxOngoingLifespan
	}
	return currentYear
}

// Year returns a pointer to y, for building records with a death year.
func Year(y int) *int {
	return &y
}

// ZoomTransform is the scale/translate pair produced by the zoom gesture
// handler. Scale is the magnification factor k (> 0); TranslateX is the
// pixel offset applied after scaling.
type ZoomTransform struct {
	Scale      float64
	TranslateX float64
}

// Identity is the untransformed view.
var Identity = ZoomTransform{Scale: 1}

// Viewport is the pixel size of the drawing surface.
type Viewport struct {
	Width  float64
	Height float64
}

// Degenerate reports whether the viewport has no drawable area.
func (v Viewport) Degenerate() bool {
	return v.Width <= 0 || v.Height <= 0
}

// LayoutEntry is one row of a drawing plan. Entries are recomputed from
// scratch on every layout call and never mutated afterwards.
type LayoutEntry struct {
	Record Record
	Lane   int
	StartX float64 // bar left edge in screen pixels
	EndX   float64 // bar right edge in screen pixels
	Label  string  // possibly empty
}

// Width returns the bar's pixel width.
func (e LayoutEntry) Width() float64 {
	return e.EndX - e.StartX
}

package sweep

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Check verifies one layout response against the properties every plan
// must hold, whatever the dataset and engine settings.
func Check(v View, l Layout) []Violation {
	var out []Violation
	add := func(kind, format string, args ...any) {
		out = append(out, Violation{View: v, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	if len(l.Entries) > l.RowBudget {
		add(KindRowBudget, "%d entries exceed budget %d", len(l.Entries), l.RowBudget)
	}
	if l.Threshold > l.BaseThreshold {
		add(KindThreshold, "applied threshold %d above base %d", l.Threshold, l.BaseThreshold)
	}

	maxLane := -1
	lastEnd := make(map[int]float64)
	for i, e := range l.Entries {
		if e.Prominence < l.Threshold {
			add(KindThreshold, "%s has prominence %d below %d", e.ID, e.Prominence, l.Threshold)
		}
		if i > 0 {
			prev := l.Entries[i-1]
			if e.Lane < prev.Lane || (e.Lane == prev.Lane && (e.BirthYear < prev.BirthYear ||
				(e.BirthYear == prev.BirthYear && e.ID < prev.ID))) {
				add(KindOrder, "%s out of order after %s", e.ID, prev.ID)
			}
		}
		if end, ok := lastEnd[e.Lane]; ok {
			if e.StartX < end-epsilon {
				add(KindOverlap, "%s starts at %.2f before lane %d ends at %.2f", e.ID, e.StartX, e.Lane, end)
			}
			lastEnd[e.Lane] = max(end, e.EndX)
		} else {
			lastEnd[e.Lane] = e.EndX
		}
		maxLane = max(maxLane, e.Lane)

		if !labelSafe(e) {
			add(KindLabel, "%s label %q does not derive from %q", e.ID, e.Label, e.Name)
		}
	}
	if l.Lanes != maxLane+1 {
		add(KindLanes, "reported %d lanes, entries use %d", l.Lanes, maxLane+1)
	}
	return out
}

// labelSafe accepts an empty label, the long "name (years)" form, the full
// name, or a shortened prefix of the name.
func labelSafe(e Entry) bool {
	name := strings.TrimSpace(e.Name)
	switch {
	case e.Label == "", e.Label == name, strings.HasPrefix(e.Label, name+" ("):
		return true
	}
	if utf8.RuneCountInString(e.Label) >= utf8.RuneCountInString(name) {
		return false
	}
	lr, _ := utf8.DecodeRuneInString(e.Label)
	nr, _ := utf8.DecodeRuneInString(name)
	return lr == nr
}

type sample struct {
	view   View
	layout Layout
}

// CheckMonotonic verifies that the base threshold depends on k alone and
// never rises as k grows.
func CheckMonotonic(samples []sample) []Violation {
	byK := make(map[float64]int)
	views := make(map[float64]View)
	var out []Violation
	for _, s := range samples {
		if prev, ok := byK[s.view.K]; ok && prev != s.layout.BaseThreshold {
			out = append(out, Violation{View: s.view, Kind: KindMonotonic,
				Detail: fmt.Sprintf("base threshold %d differs from %d at the same k", s.layout.BaseThreshold, prev)})
			continue
		}
		byK[s.view.K] = s.layout.BaseThreshold
		views[s.view.K] = s.view
	}

	ks := make([]float64, 0, len(byK))
	for k := range byK {
		ks = append(ks, k)
	}
	sort.Float64s(ks)
	for i := 1; i < len(ks); i++ {
		if byK[ks[i]] > byK[ks[i-1]] {
			out = append(out, Violation{View: views[ks[i]], Kind: KindMonotonic,
				Detail: fmt.Sprintf("threshold rose from %d at k=%.3f to %d at k=%.3f", byK[ks[i-1]], ks[i-1], byK[ks[i]], ks[i])})
		}
	}
	return out
}

// Same reports the first difference between two layouts of the same view.
func Same(a, b Layout) (string, bool) {
	if len(a.Entries) != len(b.Entries) {
		return fmt.Sprintf("%d entries vs %d", len(a.Entries), len(b.Entries)), false
	}
	if a.Threshold != b.Threshold || a.Lanes != b.Lanes {
		return fmt.Sprintf("threshold %d/%d lanes %d/%d", a.Threshold, b.Threshold, a.Lanes, b.Lanes), false
	}
	for i := range a.Entries {
		x, y := a.Entries[i], b.Entries[i]
		if x.ID != y.ID || x.Lane != y.Lane || x.Label != y.Label || x.StartX != y.StartX || x.EndX != y.EndX {
			return fmt.Sprintf("entry %d: %s/%d vs %s/%d", i, x.ID, x.Lane, y.ID, y.Lane), false
		}
	}
	return "", true
}

package layout

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/lifelines/internal/domain/model"
)

// FitLabel picks the label drawn on a bar spanning [startX, endX):
// the long "name (birth–death)" form on wide bars when it fits, otherwise the
// name truncated with an ellipsis, or nothing when the bar is too narrow.
//
// The returned label's estimated width (runes × PixelPerChar) never exceeds
// the available width.
func FitLabel(r model.Record, startX, endX float64, cfg Config) string {
	available := AvailableLabelWidth(startX, endX, cfg)
	if available < cfg.MinLegibleLabelWidth || available <= 0 {
		return ""
	}
	maxChars := int(math.Floor(available / cfg.PixelPerChar))

	if endX-startX > cfg.WideBarPixelThreshold {
		if long := LongLabel(r); utf8.RuneCountInString(long) <= maxChars {
			return long
		}
	}
	return Truncate(strings.TrimSpace(r.Name), maxChars, cfg.Ellipsis)
}

// AvailableLabelWidth is the bar width left of endX once the start is clamped
// to the viewport's left edge and padding is removed.
func AvailableLabelWidth(startX, endX float64, cfg Config) float64 {
	return endX - math.Max(startX, viewportLeft) - cfg.LabelPadding
}

// LongLabel renders "name (birth–death)"; ongoing records leave the end open.
func LongLabel(r model.Record) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Name))
	b.WriteString(" (")
	b.WriteString(FormatYear(r.BirthYear))
	b.WriteString("–")
	if r.DeathYear != nil {
		b.WriteString(FormatYear(*r.DeathYear))
	}
	b.WriteString(")")
	return b.String()
}

// FormatYear renders negative years as BC.
func FormatYear(y int) string {
	if y < 0 {
		return strconv.Itoa(-y) + " BC"
	}
	return strconv.Itoa(y)
}

// Truncate shortens s to at most maxChars runes. When s is too long the kept
// prefix is maxChars minus the ellipsis length, followed by the ellipsis; if
// no prefix survives the result is empty.
func Truncate(s string, maxChars int, ellipsis string) string {
	if maxChars <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	kept := max(0, maxChars-utf8.RuneCountInString(ellipsis))
	if kept == 0 {
		return ""
	}
	runes := []rune(s)
	prefix := strings.TrimRightFunc(string(runes[:kept]), unicode.IsSpace)
	if prefix == "" {
		return ""
	}
	return prefix + ellipsis
}

// Package svg renders a layout plan as a standalone SVG document.
package svg

import (
	"fmt"
	"strings"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
)

// barInset is the vertical space left between lanes.
const barInset = 4

// Render draws plan on a canvas the size of v. Bars sit at
// y = MarginTop + lane*RowHeight; labels are drawn exactly as the plan
// fitted them.
func Render(plan layout.Plan, v model.Viewport, cfg layout.Config, opts ...Option) string {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	width, height := max(v.Width, 0), max(v.Height, 0)

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg">
`, num(width), num(height), num(width), num(height))
	if o.title != "" {
		fmt.Fprintf(&b, "<title>%s</title>\n", escapeXML(o.title))
	}
	fmt.Fprintf(&b, `<defs>
<style>
.label { font-family: %s; font-size: %dpx; fill: %s; }
.tick { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
<rect width="100%%" height="100%%" fill="%s"/>
`, o.fontFamily, o.fontSize, o.textColor, o.fontFamily, max(o.fontSize-2, 1), o.axisColor, escapeXML(o.background))

	if !v.Degenerate() && o.ticks > 0 && plan.VisibleEnd > plan.VisibleStart {
		drawAxis(&b, plan, width, height, cfg, o)
	}

	barHeight := max(cfg.RowHeight-barInset, 1)
	for _, e := range plan.Entries {
		y := cfg.MarginTop + float64(e.Lane)*cfg.RowHeight
		color := e.Record.Color
		if color == "" {
			color = o.palette[e.Lane%len(o.palette)]
		}
		fmt.Fprintf(&b, `<g data-id="%s"><rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s"><title>%s</title></rect>`,
			escapeXML(e.Record.ID), num(e.StartX), num(y), num(max(e.Width(), 0)), num(barHeight),
			escapeXML(color), escapeXML(layout.LongLabel(e.Record)))
		if e.Label != "" {
			x := max(e.StartX, 0) + cfg.LabelPadding/2
			fmt.Fprintf(&b, `<text class="label" x="%s" y="%s">%s</text>`,
				num(x), num(y+barHeight/2+float64(o.fontSize)/3), escapeXML(e.Label))
		}
		b.WriteString("</g>\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func drawAxis(b *strings.Builder, plan layout.Plan, width, height float64, cfg layout.Config, o options) {
	span := plan.VisibleEnd - plan.VisibleStart
	axisY := cfg.MarginTop - 6
	fmt.Fprintf(b, `<line x1="0" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>
`, num(axisY), num(width), num(axisY), o.axisColor)
	for _, year := range layout.AxisTicks(plan.VisibleStart, plan.VisibleEnd, o.ticks) {
		x := (float64(year) - plan.VisibleStart) / span * width
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-opacity="0.3"/>`,
			num(x), num(axisY), num(x), num(height-cfg.MarginBottom), o.axisColor)
		fmt.Fprintf(b, `<text class="tick" x="%s" y="%s" text-anchor="middle">%s</text>
`, num(x), num(axisY-4), escapeXML(layout.FormatYear(year)))
	}
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// escapeXML escapes the five XML special characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

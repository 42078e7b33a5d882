package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	axisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#89B4FA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))

	barText = lipgloss.Color("#1E1E2E")

	palette = []lipgloss.Color{"#89B4FA", "#A6E3A1", "#FAB387", "#F5C2E7", "#94E2D5", "#F9E2AF", "#CBA6F7"}
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')
	b.WriteString(m.renderAxis())
	b.WriteRune('\n')

	lanes := max(m.height-headerRows-footerRows, 0)
	if m.showHelp {
		lanes = max(lanes-1, 0)
	}
	rows := m.renderLanes(lanes)
	for _, row := range rows {
		b.WriteString(row)
		b.WriteRune('\n')
	}
	for i := len(rows); i < lanes; i++ {
		b.WriteRune('\n')
	}

	if m.showHelp {
		b.WriteString(m.help.View(keys))
		b.WriteRune('\n')
	}
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderTitleBar() string {
	name := "lifelines"
	if m.source != "" {
		name += " · " + m.source
	}
	title := titleStyle.Render(name)
	stats := dimStyle.Render(fmt.Sprintf("%d shown | %d records | threshold %d | %d lanes",
		len(m.plan.Entries), m.records, m.plan.Threshold, m.plan.Lanes))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)))
	return fitWidth(title+gap+stats, m.width)
}

// renderAxis places year labels at their columns, skipping labels that
// would overlap the previous one.
func (m Model) renderAxis() string {
	s, ok := m.engine.Scale()
	if !ok {
		return ""
	}
	start, end := s.YearRange(m.engine.Viewport())
	line := []rune(strings.Repeat("─", m.width))
	next := 0
	for _, year := range layout.AxisTicks(start, end, max(m.width/12, 1)) {
		label := []rune(layout.FormatYear(year))
		col := int(math.Round(s.X(float64(year))))
		if col < next || col+len(label) > m.width {
			continue
		}
		line[col] = '┬'
		if col+1+len(label) <= m.width {
			copy(line[col+1:], label)
			next = col + 1 + len(label) + 1
		}
	}
	return axisStyle.Render(string(line))
}

// renderLanes draws one row per lane, up to limit rows.
func (m Model) renderLanes(limit int) []string {
	if limit == 0 || m.plan.Lanes == 0 {
		return nil
	}
	byLane := make([][]model.LayoutEntry, min(m.plan.Lanes, limit))
	for _, e := range m.plan.Entries {
		if e.Lane < len(byLane) {
			byLane[e.Lane] = append(byLane[e.Lane], e)
		}
	}
	rows := make([]string, len(byLane))
	for lane, entries := range byLane {
		rows[lane] = renderLane(entries, m.width)
	}
	return rows
}

// renderLane draws entries (ordered by start) onto a row width cells wide.
func renderLane(entries []model.LayoutEntry, width int) string {
	var b strings.Builder
	cursor := 0
	for _, e := range entries {
		start := clampCol(e.StartX, width)
		end := clampCol(e.EndX, width)
		start = max(start, cursor)
		if end <= start {
			continue
		}
		b.WriteString(strings.Repeat(" ", start-cursor))

		cells := end - start
		text := ansi.Truncate(e.Label, cells, "")
		text += strings.Repeat(" ", max(cells-ansi.StringWidth(text), 0))
		b.WriteString(barStyle(e).Render(text))
		cursor = end
	}
	return fitWidth(b.String(), width)
}

func barStyle(e model.LayoutEntry) lipgloss.Style {
	bg := palette[e.Lane%len(palette)]
	if e.Record.Color != "" {
		bg = lipgloss.Color(e.Record.Color)
	}
	return lipgloss.NewStyle().Background(bg).Foreground(barText)
}

func clampCol(x float64, width int) int {
	c := int(math.Round(x))
	return min(max(c, 0), width)
}

func (m Model) renderStatusBar() string {
	t := m.engine.Transform()
	left := fmt.Sprintf(" k=%.2f x=%.0f | ←/→ pan | +/- zoom | 0 reset | ? help | q quit", t.Scale, t.TranslateX)
	right := fmt.Sprintf("layout %s ", m.lastLayout.Round(time.Microsecond))
	if m.loadErr != nil {
		right = errorStyle.Render("reload failed: "+m.loadErr.Error()) + " "
	}
	gap := strings.Repeat(" ", max(0, m.width-ansi.StringWidth(left)-lipgloss.Width(right)))
	return statusBarStyle.Render(fitWidth(left+gap+right, m.width))
}

// fitWidth truncates s to width visible cells, preserving ANSI codes.
func fitWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "")
}

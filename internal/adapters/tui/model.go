// Package tui is a terminal timeline viewer built on bubbletea. One
// terminal cell is one layout pixel: a lane is one row and a glyph is one
// column wide.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
)

const (
	// Rows above the first lane: title bar and axis.
	headerRows = 2
	// Rows below the last lane: status bar.
	footerRows = 1

	zoomFactor = 1.5
	panDivisor = 8
)

// TerminalConfig converts a pixel-based engine config to character cells.
func TerminalConfig(base layout.Config) layout.Config {
	cfg := base
	cfg.RowHeight = 1
	cfg.PixelPerChar = 1
	cfg.MinGap = 1
	cfg.MarginTop = headerRows
	cfg.MarginBottom = footerRows
	cfg.MarginLeft = 0
	cfg.MarginRight = 0
	cfg.LabelPadding = 0
	cfg.MinLegibleLabelWidth = 3
	cfg.WideBarPixelThreshold = 30
	return cfg
}

// LoadFunc reloads the record set after a change notification.
type LoadFunc func(ctx context.Context) ([]model.Record, error)

type recordsMsg struct {
	records []model.Record
	err     error
}

// Option configures a Model.
type Option func(*Model)

// WithReload refreshes the records with load whenever changes fires.
func WithReload(changes <-chan struct{}, load LoadFunc) Option {
	return func(m *Model) {
		m.changes = changes
		m.load = load
	}
}

// WithSource names the dataset in the title bar.
func WithSource(name string) Option {
	return func(m *Model) {
		m.source = name
	}
}

// Model is the bubbletea model of the viewer.
type Model struct {
	engine  *layout.Engine
	cfg     layout.Config
	plan    layout.Plan
	records int

	width  int
	height int

	help     help.Model
	showHelp bool

	source  string
	changes <-chan struct{}
	load    LoadFunc
	loadErr error

	lastLayout time.Duration
}

// New builds a viewer over records. cfg is expected in pixels and is
// converted with TerminalConfig.
func New(records []model.Record, cfg layout.Config, opts ...Option) (Model, error) {
	tcfg := TerminalConfig(cfg)
	engine, err := layout.NewEngine(tcfg, layout.WithRecords(records))
	if err != nil {
		return Model{}, err
	}
	m := Model{
		engine:  engine,
		cfg:     tcfg,
		records: len(records),
		help:    help.New(),
		plan:    engine.Last(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil || m.load == nil {
		return nil
	}
	changes, load := m.changes, m.load
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		records, err := load(context.Background())
		return recordsMsg{records: records, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		t := m.engine.Transform()
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, keys.Left):
			t.TranslateX += m.panStep()
		case key.Matches(msg, keys.Right):
			t.TranslateX -= m.panStep()
		case key.Matches(msg, keys.ZoomIn):
			t = layout.ZoomAround(t, zoomFactor, float64(m.width)/2, m.cfg)
		case key.Matches(msg, keys.ZoomOut):
			t = layout.ZoomAround(t, 1/zoomFactor, float64(m.width)/2, m.cfg)
		case key.Matches(msg, keys.Reset):
			t = model.ZoomTransform{Scale: m.cfg.MinK}
		default:
			return m, nil
		}
		// ZoomAround keeps k within [MinK, MaxK], so t is always valid.
		_ = m.engine.SetTransform(t)
		m.relayout()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.engine.SetViewport(model.Viewport{Width: float64(msg.Width), Height: float64(msg.Height)})
		m.relayout()

	case recordsMsg:
		if msg.err != nil {
			m.loadErr = msg.err
		} else {
			m.loadErr = nil
			m.records = len(msg.records)
			m.engine.SetRecords(msg.records)
			m.relayout()
		}
		return m, m.waitForChange()
	}
	return m, nil
}

func (m *Model) relayout() {
	start := time.Now()
	m.plan = m.engine.Layout()
	m.lastLayout = time.Since(start)
}

func (m Model) panStep() float64 {
	return float64(max(m.width/panDivisor, 1))
}

// Plan returns the plan currently drawn.
func (m Model) Plan() layout.Plan { return m.plan }

// Transform returns the current zoom transform.
func (m Model) Transform() model.ZoomTransform { return m.engine.Transform() }

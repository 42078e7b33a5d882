package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func people() []model.Record {
	return []model.Record{
		{ID: "homer", Name: "Homer", BirthYear: -750, DeathYear: model.Year(-700), Prominence: 97},
		{ID: "kant", Name: "Immanuel Kant", BirthYear: 1724, DeathYear: model.Year(1804), Prominence: 92},
		{ID: "ada", Name: "Ada Lovelace", BirthYear: 1815, DeathYear: model.Year(1852), Prominence: 90},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, opts ...Option) Model {
	t.Helper()
	cfg := layout.DefaultConfig()
	cfg.CurrentYear = 2025
	m, err := New(people(), cfg, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return next.(Model)
}

func TestTerminalConfig(t *testing.T) {
	Convey("TerminalConfig measures in character cells", t, func() {
		cfg := TerminalConfig(layout.DefaultConfig())
		So(cfg.RowHeight, ShouldEqual, 1)
		So(cfg.PixelPerChar, ShouldEqual, 1)
		So(cfg.MarginTop, ShouldEqual, headerRows)
		So(cfg.Validate(), ShouldBeNil)
		So(cfg.MaxVisibleRows(20), ShouldEqual, 17)
	})
}

func TestModel(t *testing.T) {
	Convey("Given a sized viewer", t, func() {
		m := sized(t)

		Convey("The first layout shows every record", func() {
			So(m.Plan().Entries, ShouldHaveLength, 3)
			So(m.Transform().Scale, ShouldEqual, 1)
		})

		Convey("Zooming in keeps the centre and raises k", func() {
			next, _ := m.Update(runes("+"))
			zoomed := next.(Model)
			So(zoomed.Transform().Scale, ShouldEqual, 1.5)

			s, _ := zoomed.engine.Scale()
			before, _ := m.engine.Scale()
			So(s.Invert(60), ShouldAlmostEqual, before.Invert(60), 1e-9)

			Convey("And reset returns to the full view", func() {
				next, _ := zoomed.Update(runes("0"))
				So(next.(Model).Transform(), ShouldResemble, model.ZoomTransform{Scale: 1})
			})
		})

		Convey("Zooming out never goes below MinK", func() {
			next, _ := m.Update(runes("-"))
			So(next.(Model).Transform().Scale, ShouldEqual, 1)
		})

		Convey("Panning shifts the translation by an eighth of the width", func() {
			next, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
			So(next.(Model).Transform().TranslateX, ShouldEqual, 15)
			next, _ = next.Update(runes("l"))
			next, _ = next.Update(runes("l"))
			So(next.(Model).Transform().TranslateX, ShouldEqual, -15)
		})

		Convey("q quits", func() {
			_, cmd := m.Update(runes("q"))
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldResemble, tea.Quit())
		})

		Convey("The view fits the terminal", func() {
			view := m.View()
			lines := splitLines(view)
			So(len(lines), ShouldEqual, 20)
			for _, l := range lines {
				So(ansi.StringWidth(l), ShouldBeLessThanOrEqualTo, 120)
			}
			So(ansi.Strip(view), ShouldContainSubstring, "3 shown")
		})

		Convey("Wide bars carry the long label", func() {
			So(m.engine.SetTransform(model.ZoomTransform{Scale: 10, TranslateX: -1050}), ShouldBeNil)
			m.relayout()
			So(ansi.Strip(m.View()), ShouldContainSubstring, "Immanuel Kant (1724–1804)")
		})

		Convey("Help toggles", func() {
			next, _ := m.Update(runes("?"))
			So(next.(Model).showHelp, ShouldBeTrue)
			So(ansi.Strip(next.View()), ShouldContainSubstring, "zoom in")
		})
	})

	Convey("Given an unsized viewer", t, func() {
		m, err := New(people(), layout.DefaultConfig())
		So(err, ShouldBeNil)
		So(m.View(), ShouldEqual, "Loading...")
		So(m.Plan().Entries, ShouldBeEmpty)
	})

	Convey("Given an invalid config", t, func() {
		cfg := layout.DefaultConfig()
		cfg.MaxK = 0
		_, err := New(people(), cfg)
		So(errors.Is(err, layout.ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestReload(t *testing.T) {
	Convey("Given a viewer wired to a change channel", t, func() {
		changes := make(chan struct{}, 1)
		calls := 0
		load := func(context.Context) ([]model.Record, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("broken file")
			}
			return people()[:1], nil
		}
		m := sized(t, WithReload(changes, load), WithSource("people.json"))
		So(ansi.Strip(m.View()), ShouldContainSubstring, "people.json")

		Convey("A change reloads the records", func() {
			changes <- struct{}{}
			msg := m.Init()()
			next, cmd := m.Update(msg)
			So(cmd, ShouldNotBeNil)
			So(next.(Model).Plan().Entries, ShouldHaveLength, 1)

			Convey("And a failed reload keeps them", func() {
				changes <- struct{}{}
				next, _ = next.Update(cmd())
				So(next.(Model).Plan().Entries, ShouldHaveLength, 1)
				So(ansi.Strip(next.View()), ShouldContainSubstring, "reload failed")
			})
		})
	})
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

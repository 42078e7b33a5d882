package sweep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/lifelines/internal/adapters/http/api"
	app "github.com/okian/lifelines/internal/app"
	"github.com/okian/lifelines/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
	m.Run()
}

func cleanLayout() Layout {
	return Layout{
		Threshold:     60,
		BaseThreshold: 70,
		Lanes:         2,
		RowBudget:     10,
		Entries: []Entry{
			{ID: "a", Name: "Ada Lovelace", Lane: 0, StartX: 0, EndX: 40, Label: "Ada Lovelace", BirthYear: 1815, Prominence: 80},
			{ID: "b", Name: "Babbage", Lane: 0, StartX: 42, EndX: 90, Label: "Bab…", BirthYear: 1830, Prominence: 60},
			{ID: "c", Name: "Curie", Lane: 1, StartX: 10, EndX: 300, Label: "Curie (1867–1934)", BirthYear: 1820, Prominence: 99},
		},
	}
}

func kinds(vs []Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func TestViews(t *testing.T) {
	Convey("Given a small sweep config", t, func() {
		cfg := &Config{Steps: 3, Pans: 2, MinK: 1, MaxK: 4, Width: 100, Height: 50}

		Convey("Then zoom levels are geometric and pans cover the content", func() {
			views := Views(cfg)
			So(views, ShouldHaveLength, 5)
			So(views[0], ShouldResemble, View{K: 1, X: 0, Width: 100, Height: 50})
			So(views[1].K, ShouldAlmostEqual, 2, 1e-9)
			So(views[2].X, ShouldAlmostEqual, -100, 1e-9)
			So(views[4].K, ShouldAlmostEqual, 4, 1e-9)
			So(views[4].X, ShouldAlmostEqual, -300, 1e-9)
		})

		Convey("Then a single step stays at MinK", func() {
			cfg.Steps, cfg.Pans = 1, 1
			So(Views(cfg), ShouldResemble, []View{{K: 1, X: 0, Width: 100, Height: 50}})
		})
	})
}

func TestCheck(t *testing.T) {
	Convey("Given a consistent layout", t, func() {
		l := cleanLayout()
		So(Check(View{K: 1}, l), ShouldBeEmpty)

		Convey("Overlapping bars in a lane are reported", func() {
			l.Entries[1].StartX = 30
			So(kinds(Check(View{}, l)), ShouldContain, KindOverlap)
		})

		Convey("Too many entries break the row budget", func() {
			l.RowBudget = 2
			So(kinds(Check(View{}, l)), ShouldResemble, []string{KindRowBudget})
		})

		Convey("Entries below the threshold are reported", func() {
			l.Entries[1].Prominence = 10
			So(kinds(Check(View{}, l)), ShouldResemble, []string{KindThreshold})
		})

		Convey("A relaxed threshold above the base is reported", func() {
			l.Threshold = 80
			So(kinds(Check(View{}, l)), ShouldContain, KindThreshold)
		})

		Convey("Labels that do not come from the name are reported", func() {
			l.Entries[0].Label = "Zed"
			So(kinds(Check(View{}, l)), ShouldResemble, []string{KindLabel})
			l.Entries[0].Label = "Ada Lovelace, Countess"
			So(kinds(Check(View{}, l)), ShouldResemble, []string{KindLabel})
		})

		Convey("A wrong lane count is reported", func() {
			l.Lanes = 3
			So(kinds(Check(View{}, l)), ShouldResemble, []string{KindLanes})
		})

		Convey("Entries out of lane order are reported", func() {
			l.Entries[1], l.Entries[2] = l.Entries[2], l.Entries[1]
			So(kinds(Check(View{}, l)), ShouldContain, KindOrder)
		})

		Convey("Bars left of the origin in one lane are fine", func() {
			l.Entries = []Entry{
				{ID: "a", Name: "Ada Lovelace", Lane: 0, StartX: -200, EndX: -120, Label: "Ada Lovelace", BirthYear: 1815, Prominence: 80},
				{ID: "b", Name: "Babbage", Lane: 0, StartX: -110, EndX: -50, Label: "Bab…", BirthYear: 1830, Prominence: 60},
			}
			l.Lanes = 1
			So(Check(View{K: 2, X: -500}, l), ShouldBeEmpty)
		})

		Convey("An empty layout with no lanes is fine", func() {
			So(Check(View{}, Layout{}), ShouldBeEmpty)
		})
	})
}

func TestCheckMonotonic(t *testing.T) {
	Convey("Given base thresholds over a sweep", t, func() {
		samples := []sample{
			{view: View{K: 1}, layout: Layout{BaseThreshold: 100}},
			{view: View{K: 1, X: -10}, layout: Layout{BaseThreshold: 100}},
			{view: View{K: 2}, layout: Layout{BaseThreshold: 90}},
			{view: View{K: 4}, layout: Layout{BaseThreshold: 80}},
		}
		So(CheckMonotonic(samples), ShouldBeEmpty)

		Convey("A rise with zoom is reported", func() {
			samples[3].layout.BaseThreshold = 95
			So(kinds(CheckMonotonic(samples)), ShouldResemble, []string{KindMonotonic})
		})

		Convey("Different thresholds at the same k are reported", func() {
			samples[1].layout.BaseThreshold = 99
			So(kinds(CheckMonotonic(samples)), ShouldResemble, []string{KindMonotonic})
		})
	})
}

func TestSame(t *testing.T) {
	Convey("Given two layouts", t, func() {
		a, b := cleanLayout(), cleanLayout()
		_, ok := Same(a, b)
		So(ok, ShouldBeTrue)

		b.Entries[2].Lane = 0
		diff, ok := Same(a, b)
		So(ok, ShouldBeFalse)
		So(diff, ShouldContainSubstring, "entry 2")

		b.Entries = b.Entries[:1]
		_, ok = Same(a, b)
		So(ok, ShouldBeFalse)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service with a synthetic dataset", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithSynthetic(400, 5), app.WithFrameInterval(5*time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, 100).Register(mux)
		server := httptest.NewServer(mux)
		defer server.Close()

		Convey("The sweep finds no violations", func() {
			stats, err := Run(ctx, &Config{
				BaseURL: server.URL, Steps: 6, Pans: 3, MinK: 1, MaxK: 40,
				Width: 900, Height: 400, Workers: 4, Timeout: 5 * time.Second,
			})
			So(err, ShouldBeNil)
			So(stats.Violations, ShouldBeEmpty)
			So(stats.Failed, ShouldEqual, 0)
			So(stats.Views, ShouldEqual, 16)
			So(stats.Requests, ShouldEqual, stats.Views+2)
			So(stats.Entries, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a service whose layouts fail", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		stats, err := Run(context.Background(), &Config{
			BaseURL: server.URL, Steps: 2, Pans: 1, MinK: 1, MaxK: 2, Width: 100, Height: 100, Workers: 2, Timeout: time.Second,
		})
		So(err, ShouldNotBeNil)
		So(errors.Is(err, ErrViolations), ShouldBeFalse)
		So(stats.Failed, ShouldEqual, 2)
		So(stats.ByKind[KindRequestError], ShouldEqual, 2)
	})

	Convey("Given an unhealthy service", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := Run(context.Background(), &Config{BaseURL: server.URL, Steps: 1, Pans: 1, MinK: 1, MaxK: 1, Width: 10, Height: 10, Timeout: time.Second})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "health check")
	})
}

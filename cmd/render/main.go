// render lays out a dataset once and writes the result as SVG.
//
// Usage:
//
//	render --dataset people.json --k 4 --x -3200 --out timeline.svg
//	render --width 1600 --height 900 > timeline.svg
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/okian/lifelines/internal/adapters/dataset"
	"github.com/okian/lifelines/internal/adapters/render/svg"
	"github.com/okian/lifelines/internal/config"
	"github.com/okian/lifelines/internal/domain/layout"
	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/logger"
)

const outputPermission = 0o644

type options struct {
	dataset string
	out     string
	title   string
	k       float64
	x       float64
	width   float64
	height  float64
	ticks   int
}

func main() {
	var o options
	flag.StringVar(&o.dataset, "dataset", "", "dataset file; empty generates a synthetic one")
	flag.StringVar(&o.out, "out", "", "output file (default: stdout)")
	flag.StringVar(&o.title, "title", "Lifelines", "document title")
	flag.Float64Var(&o.k, "k", 1, "zoom scale")
	flag.Float64Var(&o.x, "x", 0, "horizontal translation in pixels")
	flag.Float64Var(&o.width, "width", 1200, "canvas width")
	flag.Float64Var(&o.height, "height", 600, "canvas height")
	flag.IntVar(&o.ticks, "ticks", 8, "approximate number of axis ticks; 0 hides the axis")
	flag.Parse()

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Named("render")

	path := o.dataset
	if path == "" {
		path = cfg.DatasetPath
	}
	var records []model.Record
	if path == "" {
		records = dataset.Synthesize(cfg.SyntheticRecords, cfg.SyntheticSeed)
	} else {
		ds, err := dataset.Load(ctx, path)
		if err != nil {
			return err
		}
		records = ds.Records
		if n := ds.Report.RejectedTotal(); n > 0 {
			log.Warn(ctx, "rows rejected", logger.Int("rejected", n), logger.Any("reasons", ds.Report.Rejected))
		}
	}

	t := model.ZoomTransform{Scale: o.k, TranslateX: o.x}
	if err := layout.ValidateTransform(t); err != nil {
		return err
	}
	v := model.Viewport{Width: o.width, Height: o.height}
	plan := layout.Compute(records, t, v, cfg.Engine)
	log.Info(ctx, "layout computed",
		logger.Int("records", len(records)),
		logger.Int("visible", len(plan.Entries)),
		logger.Int("lanes", plan.Lanes),
		logger.Int("threshold", plan.Threshold))

	doc := svg.Render(plan, v, cfg.Engine, svg.WithTitle(o.title), svg.WithTicks(o.ticks))
	if o.out == "" {
		_, err = os.Stdout.WriteString(doc)
		return err
	}
	if err := os.WriteFile(o.out, []byte(doc), outputPermission); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	log.Info(ctx, "written", logger.String("path", o.out))
	return nil
}

// tui is a terminal viewer for a lifelines dataset.
//
// Usage:
//
//	tui                          # synthetic dataset
//	tui --dataset people.csv     # load and watch a file
//	tui --dataset people.db --watch=false
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/lifelines/internal/adapters/dataset"
	"github.com/okian/lifelines/internal/adapters/tui"
	"github.com/okian/lifelines/internal/config"
	"github.com/okian/lifelines/internal/domain/model"
	"github.com/okian/lifelines/pkg/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	path := flag.String("dataset", "", "dataset file (json, yaml, csv or sqlite); empty generates one")
	watch := flag.Bool("watch", true, "reload when the dataset file changes")
	logFile := flag.String("log", "", "write logs to this file (default: discard)")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tui %s\n", Version)
		os.Exit(0)
	}

	if err := run(*path, *watch, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, watch bool, logFile string) error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		path = cfg.DatasetPath
	}

	// stdout belongs to the terminal UI.
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := logger.Init(logger.WithOutput(out), logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Named("tui")

	load := func(ctx context.Context) ([]model.Record, error) {
		ds, err := dataset.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "dataset loaded",
			logger.String("path", path),
			logger.Int("accepted", ds.Report.Accepted),
			logger.Int("rejected", ds.Report.RejectedTotal()))
		return ds.Records, nil
	}

	var (
		records []model.Record
		opts    []tui.Option
	)
	if path == "" {
		records = dataset.Synthesize(cfg.SyntheticRecords, cfg.SyntheticSeed)
		opts = append(opts, tui.WithSource(fmt.Sprintf("synthetic (%d)", len(records))))
	} else {
		if records, err = load(ctx); err != nil {
			return err
		}
		opts = append(opts, tui.WithSource(path))
		if watch {
			w, err := dataset.NewWatcher(path,
				dataset.WithDebounce(cfg.WatchDebounce()),
				dataset.WithWatchLogger(log))
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()
			opts = append(opts, tui.WithReload(w.Changes(), load))
		}
	}

	m, err := tui.New(records, cfg.Engine, opts...)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

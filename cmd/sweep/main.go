package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/lifelines/internal/sweep"
)

const (
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		steps   = flag.Int("steps", sweep.DefaultSteps, "Zoom levels")
		pans    = flag.Int("pans", sweep.DefaultPans, "Translations per zoom level")
		minK    = flag.Float64("min-k", sweep.DefaultMinK, "First zoom level")
		maxK    = flag.Float64("max-k", sweep.DefaultMaxK, "Last zoom level")
		width   = flag.Float64("width", sweep.DefaultWidth, "Canvas width")
		height  = flag.Float64("height", sweep.DefaultHeight, "Canvas height")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", sweep.DefaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Log file (default: sweep_TIMESTAMP.log, - for stdout only)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sweep.ShowHelp()
		return
	}

	if err := sweep.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &sweep.Config{
		BaseURL: *baseURL,
		Steps:   *steps,
		Pans:    *pans,
		MinK:    *minK,
		MaxK:    *maxK,
		Width:   *width,
		Height:  *height,
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if _, err := sweep.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Sweep failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Package sweep drives a running lifelines service through a zoom and pan
// sweep and checks every returned layout for overlap, budget, threshold and
// label problems.
package sweep

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/lifelines/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging logs to stdout and, unless logFile is "-", to a file. An
// empty logFile gets a timestamped name.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "-" {
		if logFile == "" {
			logFile = "sweep_" + time.Now().Format("20060102_150405") + ".log"
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithOutput(out), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the sweep tool.
func ShowHelp() {
	os.Stdout.WriteString(`Lifelines Layout Sweep
======================

Requests /layout over a geometric zoom sweep with pans at every level and
verifies each plan: no overlapping bars within a lane, entries within the
row budget, prominence at or above the applied threshold, a base threshold
that never rises with zoom, labels derived from names, and identical
answers for repeated requests.

Usage:
  go run ./cmd/sweep [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -steps int         Zoom levels (default 24)
  -pans int          Translations per zoom level (default 6)
  -min-k float       First zoom level (default 1)
  -max-k float       Last zoom level (default 40)
  -width float       Canvas width (default 1200)
  -height float      Canvas height (default 600)
  -workers int       Concurrent workers (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 10s)
  -log string        Log file, "-" for stdout only (default sweep_TIMESTAMP.log)
  -verbose           Log every violation and failed request
  -help              Show this help message

Examples:
  go run ./cmd/sweep -steps 60 -pans 10
  go run ./cmd/sweep -url http://localhost:8080 -width 800 -height 300 -log -
`)
}

// Package cli implements the fusiongraph command-line interface.
//
// Commands read designs through [mfg.Client], which talks to the GraphQL API
// with a client-credentials token kept between runs in the session store.
// Results of the hierarchy and properties commands are cached on disk (or in
// Redis when cache.redis_url is set).
//
// # Commands
//
// The main commands are:
//   - hierarchy: Print the assembly tree of a design
//   - thumbnail: Download the preview image
//   - step: Export STEP geometry
//   - properties: Print area, volume, mass, density and bounding box
//   - watch: Subscribe to milestone events and show them as they arrive
//   - auth: Manage the stored access token
//   - cache, config: Inspect local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Library code
// receives the logger as a progress callback.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Assembled 42 positions (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

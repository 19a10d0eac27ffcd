// Package cli implements the cardgraph command-line interface.
//
// The commands load a template document (JSON or YAML), open an
// [editor.Editor] over it and run one operation: layout, visibility
// resolution, sample generation, connection routing or rendering. The
// serve command exposes the same operations over HTTP.
//
// # Commands
//
//   - check: Validate a template and list warnings
//   - layout: Compute node positions and write the template back
//   - visible: Print the visible fields for a set of answers
//   - sample: Generate example form data
//   - route: Route a connection around other cards
//   - render: Produce DOT, SVG, JSON or YAML output
//   - preview: Fill in a template interactively in the terminal
//   - serve: Run the HTTP service
//   - cache, config: Inspect local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
//
// [editor.Editor]: github.com/matzehuels/cardgraph/pkg/editor.Editor
package cli

import (
	"context"
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
// Example output: "Laid out 42 cards (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

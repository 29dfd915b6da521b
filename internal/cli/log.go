package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the logger every crnident command shares: timestamped to
// the hundredth of a second, filtered at level, writing to w (stderr in
// normal runs, a buffer in tests).
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one long-running step — a clustering run, a directory
// load — and reports the elapsed duration when it finishes. Single
// goroutine use only.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts the clock.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time since newProgress, rounded to
// milliseconds, e.g. "Clustered 120 networks (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey keeps this package's context values from colliding with anyone
// else's string keys.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches a logger to the context. The root command does this
// once in its PersistentPreRunE so every subcommand and helper can reach
// the configured logger without threading the CLI struct around.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger, falling back to
// log.Default() so callers never receive nil.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Package logging builds the process-wide slog logger on a charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a slog.Logger writing to w (stderr when nil) at the given level
// ("debug", "info", "warn", "error"). format is "text" or "json".
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Formatter:       log.TextFormatter,
	}
	switch format {
	case "", "text":
	case "json":
		opts.Formatter = log.JSONFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return slog.New(log.NewWithOptions(w, opts)), nil
}

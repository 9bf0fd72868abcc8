// Package logger builds the stderr logger shared by every command.
package logger

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"github.com/mvp-joe/cfn-refactor/internal/config"
)

// Prefix tags every line so editor output panes can tell our logs apart.
const Prefix = "cfn-refactor"

// New returns a logger writing to w at the configured level.
// stdout is reserved for protocol traffic and JSON output, so callers pass os.Stderr.
func New(cfg config.LogConfig, w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(config.ErrInvalidLogLevel, "level %q", cfg.Level)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          Prefix,
		ReportTimestamp: cfg.Timestamps,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Package logging builds the hclog loggers used across stripscan.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options configures a logger.
type Options struct {
	Name    string
	Verbose bool
	Quiet   bool
	JSON    bool
	Output  io.Writer
}

// New returns an hclog logger. Verbose enables debug output, Quiet limits
// output to errors; Verbose wins if both are set.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := hclog.Info
	switch {
	case opts.Verbose:
		level = hclog.Debug
	case opts.Quiet:
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Output:     out,
		Level:      level,
		JSONFormat: opts.JSON,
	})
}

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger hclog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a logger that discards everything.
func FromContext(ctx context.Context) hclog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(hclog.Logger); ok {
			return l
		}
	}
	return hclog.NewNullLogger()
}

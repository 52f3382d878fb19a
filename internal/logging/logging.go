package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type Config struct {
	Level slog.Level

	// Service and Env are attached to every record when set.
	Service string
	Env     string

	// Output defaults to stdout.
	Output io.Writer
}

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	l := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level}))
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	if cfg.Env != "" {
		l = l.With("env", cfg.Env)
	}
	return l
}

type ctxKey struct{}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

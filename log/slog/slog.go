//go:build go1.21

// Package slog adapts a *slog.Logger to oddsgrid.Logger.
package slog

import (
	"context"
	"fmt"
	"io"
	stdslog "log/slog"
	"strings"

	"github.com/unkn0wn-root/oddsgrid"
)

var _ oddsgrid.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New returns a text-handler logger writing to w at the given level.
func New(w io.Writer, level string) (Logger, error) {
	var lvl stdslog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return Logger{}, fmt.Errorf("slog level %q: %w", level, err)
	}
	h := stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: lvl})
	return Logger{L: stdslog.New(h)}, nil
}

func (s Logger) Debug(msg string, f oddsgrid.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelDebug, msg, attrs(f)...)
}
func (s Logger) Info(msg string, f oddsgrid.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelInfo, msg, attrs(f)...)
}
func (s Logger) Warn(msg string, f oddsgrid.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelWarn, msg, attrs(f)...)
}
func (s Logger) Error(msg string, f oddsgrid.Fields) {
	s.L.LogAttrs(context.Background(), stdslog.LevelError, msg, attrs(f)...)
}

func attrs(f oddsgrid.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	return out
}

// Package zap adapts a *zap.Logger to oddsgrid.Logger.
package zap

import (
	"fmt"

	"github.com/unkn0wn-root/oddsgrid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct{ L *zap.Logger }

var _ oddsgrid.Logger = ZapLogger{}

// New builds a production (JSON, stderr) zap logger at the given level
// ("debug", "info", "warn", "error").
func New(level string) (ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return ZapLogger{}, fmt.Errorf("zap level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return ZapLogger{}, err
	}
	return ZapLogger{L: l}, nil
}

func (z ZapLogger) Debug(msg string, f oddsgrid.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f oddsgrid.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f oddsgrid.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f oddsgrid.Fields) { z.L.Error(msg, zf(f)...) }

// Sync flushes buffered entries; call before exit.
func (z ZapLogger) Sync() error { return z.L.Sync() }

func zf(f oddsgrid.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Package logger is a thin leveled wrapper over log/slog shared by the
// three feed binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"log/slog"
)

var (
	level slog.LevelVar

	mu   sync.RWMutex
	base *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	base = build(os.Stderr)
}

func build(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetOutput redirects all subsequent log lines to w. Tests use this to
// capture warnings.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = build(w)
	mu.Unlock()
}

// SetLevel accepts debug/info/warn/error; anything else means info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, v ...any) { current().Debug(fmt.Sprintf(format, v...)) }

func Infof(format string, v ...any) { current().Info(fmt.Sprintf(format, v...)) }

func Warnf(format string, v ...any) { current().Warn(fmt.Sprintf(format, v...)) }

func Errorf(format string, v ...any) { current().Error(fmt.Sprintf(format, v...)) }

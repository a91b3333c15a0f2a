// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup()                          // level from YOPAGO_LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override
//
// Embedding applications call Setup once at startup; the rest of the
// module logs through the slog default logger and inherits whatever
// handler the host installed.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging on stderr at the level specified by the
// YOPAGO_LOG_LEVEL env var (default: INFO).
func Setup() {
	SetupWithLevel(levelFromEnv())
}

// SetupWithLevel configures colored logging on stderr at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, level)))
}

// SetupWriter configures logging to an arbitrary writer. Useful for tests
// and for hosts that capture logs instead of printing them.
func SetupWriter(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(newHandler(w, level)))
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("YOPAGO_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

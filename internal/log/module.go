package log

import (
	"io"
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// NewLogger creates the console logger used by every module.
func NewLogger() zerolog.Logger {
	return newLogger(os.Stdout, levelFromEnv(os.Getenv))
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// levelFromEnv reads LOG_LEVEL (trace..panic). DEBUG=true forces debug.
// Unknown or empty values fall back to info.
func levelFromEnv(getenv func(string) string) zerolog.Level {
	if getenv("DEBUG") == "true" {
		return zerolog.DebugLevel
	}
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if level, err := zerolog.ParseLevel(raw); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}

// FxLogger routes fx lifecycle events into the application logger.
func FxLogger() fx.Option {
	return fx.WithLogger(fxlogger.WithZerolog(NewLogger().With().Str("component", "fx").Logger()))
}

func Module() fx.Option {
	return fx.Module(
		"log",
		fx.Provide(
			NewLogger,
		),
	)
}

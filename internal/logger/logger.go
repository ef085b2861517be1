package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var Log *slog.Logger

func init() {
	Configure("info")
}

// Configure installs the JSON slog handler as the default logger and aligns
// zerolog's global level with it.
func Configure(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseSlogLevel(level),
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)

	zl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || zl == zerolog.NoLevel {
		zl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

func parseSlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

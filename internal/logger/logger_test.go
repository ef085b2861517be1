package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure("info") })

	Configure("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.True(t, Log.Enabled(context.Background(), slog.LevelDebug))

	Configure("bogus")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.False(t, Log.Enabled(context.Background(), slog.LevelDebug))
}

package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/dive-sac-agent/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	logger := NewLogger(&config.Config{LogLevel: "bogus"})

	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.ModalsWired.Inc()
	assert.NotSame(t, a.ModalsWired, b.ModalsWired)
}

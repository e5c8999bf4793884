package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/dive-sac-agent/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and makes
// it the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

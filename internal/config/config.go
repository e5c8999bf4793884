package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxRatePrecision = 6

// Config holds all agent settings, populated from environment variables.
type Config struct {
	PollInterval  time.Duration
	RatePrecision int
	MatchURLs     []string
	StartURL      string

	// Browser connection. DebuggerURL attaches to a running Chrome; otherwise
	// one is launched from BrowserBin (or the launcher default).
	DebuggerURL     string
	BrowserBin      string
	BrowserHeadless bool
	MutationObserve bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("POLL_INTERVAL", "500ms"))
	if err != nil || pollInterval <= 0 {
		return nil, errors.New("invalid POLL_INTERVAL")
	}

	precision, err := strconv.Atoi(sharedcfg.EnvOrDefault("RATE_PRECISION", "2"))
	if err != nil || precision < 0 || precision > maxRatePrecision {
		return nil, errors.New("invalid RATE_PRECISION: must be between 0 and 6")
	}

	headless, err := parseBool("BROWSER_HEADLESS", false)
	if err != nil {
		return nil, err
	}
	observe, err := parseBool("MUTATION_OBSERVER_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PollInterval:  pollInterval,
		RatePrecision: precision,
		MatchURLs: splitList(sharedcfg.EnvOrDefault("MATCH_URLS",
			"https://connect.garmin.com/modern/activity/manual?typeKey=diving,"+
				"https://connect.garmin.com/modern/activity/manual/*/edit")),
		StartURL:        sharedcfg.EnvOrDefault("START_URL", "https://connect.garmin.com/modern/activity/manual?typeKey=diving"),
		DebuggerURL:     os.Getenv("BROWSER_DEBUGGER_URL"),
		BrowserBin:      os.Getenv("BROWSER_BIN"),
		BrowserHeadless: headless,
		MutationObserve: observe,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if len(cfg.MatchURLs) == 0 {
		return nil, errors.New("MATCH_URLS is required")
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

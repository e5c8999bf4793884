// Package browser implements the host page contract over a Chromium page
// driven through the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
)

// Config holds browser connection settings.
type Config struct {
	DebuggerURL string // attach to a running Chrome when set
	Bin         string // Chrome binary to launch; empty uses the launcher default
	Headless    bool
	StartURL    string // opened when no existing tab is in scope
	Scope       domain.Scope
}

// Session owns the browser connection and the tab being augmented.
type Session struct {
	browser  *rod.Browser
	launched *launcher.Launcher
	page     *rod.Page
	logger   *slog.Logger
	closed   atomic.Bool
}

// Connect attaches to or launches Chrome and selects the tab to augment: the
// first open tab whose URL is in scope, or a new tab at StartURL.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	s := &Session{logger: logger}

	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		s.launched = l
		logger.Info("chrome launched", "headless", cfg.Headless)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		s.kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	s.browser = browser

	page, err := s.selectPage(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.page = page
	return s, nil
}

func (s *Session) selectPage(cfg Config) (*rod.Page, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if cfg.Scope.Matches(info.URL) {
			s.logger.Info("attached to tab", "url", info.URL)
			return p, nil
		}
	}

	if cfg.StartURL == "" {
		return nil, errors.New("no tab in scope and no start url")
	}
	p, err := s.browser.Page(proto.TargetCreateTarget{URL: cfg.StartURL})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.StartURL, err)
	}
	s.logger.Info("opened tab", "url", cfg.StartURL)
	return p, nil
}

// Page returns the tab being augmented.
func (s *Session) Page() *rod.Page {
	return s.page
}

// CheckReadiness returns nil while the browser connection is alive.
func (s *Session) CheckReadiness(_ context.Context) error {
	if s.closed.Load() {
		return errors.New("browser session closed")
	}
	if _, err := s.browser.Version(); err != nil {
		return fmt.Errorf("browser unreachable: %w", err)
	}
	return nil
}

// Close disconnects from the browser and stops it if this session launched
// it. A browser attached through DebuggerURL keeps running.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var err error
	if s.launched != nil {
		err = s.browser.Close()
		s.kill()
	}
	return err
}

func (s *Session) kill() {
	if s.launched != nil {
		s.launched.Kill()
	}
}

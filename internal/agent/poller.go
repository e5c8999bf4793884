package agent

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

// CheckFunc is one detection pass against the host page.
type CheckFunc func(ctx context.Context) error

// Poller runs a check repeatedly with a fixed delay between the end of one
// pass and the start of the next. Nudge runs the next pass immediately.
type Poller struct {
	name     string
	check    CheckFunc
	interval time.Duration
	clock    clockwork.Clock
	nudge    chan struct{}
	passes   atomic.Int64
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewPoller creates a Poller. A nil clock uses real time.
func NewPoller(name string, check CheckFunc, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		name:     name,
		check:    check,
		interval: interval,
		clock:    clock,
		nudge:    make(chan struct{}, 1),
		logger:   logger,
		metrics:  metrics,
	}
}

// Nudge requests an immediate pass. Nudges arriving while one is pending
// are coalesced.
func (p *Poller) Nudge() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Passes returns the number of completed passes.
func (p *Poller) Passes() int64 {
	return p.passes.Load()
}

// Run schedules passes until the context is cancelled. The first pass runs
// one interval after start.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Debug("poller started", "poller", p.name, "interval", p.interval)
	p.metrics.PollersRunning.Inc()
	defer p.metrics.PollersRunning.Dec()

	for {
		timer := p.clock.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Debug("poller stopping", "poller", p.name, "reason", ctx.Err())
			return nil
		case <-timer.Chan():
		case <-p.nudge:
			timer.Stop()
		}
		p.runOnce(ctx)
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	start := p.clock.Now()
	err := p.check(ctx)
	p.metrics.PollDuration.WithLabelValues(p.name).Observe(p.clock.Since(start).Seconds())
	p.metrics.PollPasses.WithLabelValues(p.name).Inc()
	p.passes.Add(1)

	if err != nil && ctx.Err() == nil {
		// The host page may be mid-render or navigating; the next pass retries.
		p.metrics.HostErrors.WithLabelValues(p.name).Inc()
		p.logger.Debug("detection pass failed", "poller", p.name, "error", err)
	}
}

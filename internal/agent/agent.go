package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

// Settings configures both pollers.
type Settings struct {
	Interval  time.Duration
	Precision int
	Layouts   []domain.TableLayout
	Clock     clockwork.Clock // nil uses real time
}

// Agent runs the modal watcher and the table augmenter against one host
// document. The two pollers share no state.
type Agent struct {
	modal  *Poller
	table  *Poller
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	done    chan struct{}
}

// New creates an Agent for doc.
func New(doc domain.Document, s Settings, logger *slog.Logger, metrics *observability.Metrics) *Agent {
	layouts := s.Layouts
	if len(layouts) == 0 {
		layouts = domain.DefaultLayouts()
	}

	recalc := NewRecalculator(s.Precision, logger, metrics)
	watcher := NewModalWatcher(doc, recalc, logger, metrics)
	augmenter := NewTableAugmenter(doc, layouts, s.Precision, logger, metrics)

	return &Agent{
		modal:  NewPoller("modal", watcher.Check, s.Interval, s.Clock, logger, metrics),
		table:  NewPoller("table", augmenter.Check, s.Interval, s.Clock, logger, metrics),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run starts both pollers and blocks until the context is cancelled or Stop
// is called. It must be called at most once.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	defer close(a.done)
	defer cancel()

	a.logger.Info("agent started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.modal.Run(gctx) })
	g.Go(func() error { return a.table.Run(gctx) })
	err := g.Wait()
	a.logger.Info("agent stopped")
	return err
}

// Stop cancels both pollers and waits for them to return. It is safe to
// call before Run, and more than once.
func (a *Agent) Stop() {
	a.mu.Lock()
	a.stopped = true
	cancel := a.cancel
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-a.done
}

// Nudge runs both detection passes immediately. Hosts that can observe
// document mutations call it so changes are picked up before the next poll.
func (a *Agent) Nudge() {
	a.modal.Nudge()
	a.table.Nudge()
}

// CheckReadiness returns nil once both pollers have completed a pass.
func (a *Agent) CheckReadiness(_ context.Context) error {
	if a.modal.Passes() == 0 || a.table.Passes() == 0 {
		return errors.New("agent has not completed a detection pass yet")
	}
	return nil
}

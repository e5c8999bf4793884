package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

// ModalWatcher wires the tank-entry modal once per modal instance.
type ModalWatcher struct {
	doc     domain.Document
	recalc  *Recalculator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewModalWatcher creates a ModalWatcher for doc.
func NewModalWatcher(doc domain.Document, recalc *Recalculator, logger *slog.Logger, metrics *observability.Metrics) *ModalWatcher {
	return &ModalWatcher{doc: doc, recalc: recalc, logger: logger, metrics: metrics}
}

// Check attaches the recalculation triggers if the modal is open and not yet
// wired. An absent modal is the normal state between dive entries.
func (w *ModalWatcher) Check(ctx context.Context) error {
	form, ok, err := w.doc.TankForm(ctx)
	if err != nil {
		return fmt.Errorf("find tank form: %w", err)
	}
	if !ok {
		return nil
	}

	wired, err := form.Wired(ctx)
	if err != nil {
		return fmt.Errorf("read wiring mark: %w", err)
	}
	if wired {
		return nil
	}

	detach, err := form.AttachInputTriggers(ctx, domain.TriggerFields, w.recalc.Handler(form))
	if err != nil {
		return fmt.Errorf("attach input triggers: %w", err)
	}
	// An unmarked modal is wired again next pass, so its triggers must go.
	if err := form.MarkWired(ctx); err != nil {
		detach()
		return fmt.Errorf("set wiring mark: %w", err)
	}

	w.metrics.ModalsWired.Inc()
	w.logger.Info("tank modal wired")
	return nil
}

package agent

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

// Recalculator refreshes the SAC field of a tank form from its current
// inputs. It is the handler attached to the trigger fields.
type Recalculator struct {
	precision int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewRecalculator creates a Recalculator writing rates with precision
// decimal places.
func NewRecalculator(precision int, logger *slog.Logger, metrics *observability.Metrics) *Recalculator {
	return &Recalculator{precision: precision, logger: logger, metrics: metrics}
}

// Recalculate reads the form, computes SAC, and writes the formatted rate,
// or clears the field when the inputs do not yield a rate.
func (r *Recalculator) Recalculate(ctx context.Context, form domain.TankForm) {
	in, err := form.ReadInputs(ctx)
	if err != nil {
		r.metrics.SACCalculations.WithLabelValues("error").Inc()
		r.logger.Debug("read tank inputs failed", "error", err)
		return
	}

	// Incomplete or non-consuming inputs are expected mid-entry and leave the
	// field blank.
	value, outcome := "", "cleared"
	if sac, err := domain.ComputeSAC(in); err == nil {
		value, outcome = domain.FormatRate(sac, r.precision), "written"
	}

	if err := form.WriteSACRate(ctx, value); err != nil {
		r.metrics.SACCalculations.WithLabelValues("error").Inc()
		r.logger.Debug("write sac rate failed", "error", err)
		return
	}
	r.metrics.SACCalculations.WithLabelValues(outcome).Inc()
}

// Handler binds the recalculation to one form instance.
func (r *Recalculator) Handler(form domain.TankForm) domain.InputHandler {
	return func(ctx context.Context) {
		r.Recalculate(ctx, form)
	}
}

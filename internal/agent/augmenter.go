package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

// TableAugmenter adds the RMV column to whichever summary table variant is
// on the page.
type TableAugmenter struct {
	doc       domain.Document
	layouts   []domain.TableLayout
	precision int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTableAugmenter creates a TableAugmenter. Layouts are probed in order
// and the first one present is used.
func NewTableAugmenter(doc domain.Document, layouts []domain.TableLayout, precision int, logger *slog.Logger, metrics *observability.Metrics) *TableAugmenter {
	return &TableAugmenter{
		doc:       doc,
		layouts:   layouts,
		precision: precision,
		logger:    logger,
		metrics:   metrics,
	}
}

// Check augments the table unless it already carries the RMV column. It runs
// every pass so a table rebuilt by the host is augmented again.
func (a *TableAugmenter) Check(ctx context.Context) error {
	table, layout, ok, err := a.find(ctx)
	if err != nil || !ok {
		return err
	}

	rows, err := table.Rows(ctx)
	if err != nil {
		return fmt.Errorf("read %s table: %w", layout.Name, err)
	}
	if len(rows) == 0 {
		return nil
	}

	switch layout.State(len(rows[0])) {
	case domain.TableAugmented:
		return nil
	case domain.TableUnexpected:
		a.metrics.UnexpectedShape.WithLabelValues(layout.Name).Inc()
		a.logger.Debug("unexpected table shape, skipping",
			"variant", layout.Name,
			"header_width", len(rows[0]),
			"baseline_width", layout.BaselineWidth,
		)
		return nil
	}

	cells := domain.RMVColumn(rows, layout, a.precision)
	if err := table.InsertColumn(ctx, layout.InsertAt, cells); err != nil {
		return fmt.Errorf("insert rmv column into %s table: %w", layout.Name, err)
	}

	placeholders := 0
	for _, c := range cells[1:] {
		if c == domain.RMVPlaceholder {
			placeholders++
		}
	}
	a.metrics.TablesAugmented.WithLabelValues(layout.Name).Inc()
	a.metrics.RMVCells.WithLabelValues("value").Add(float64(len(cells) - 1 - placeholders))
	a.metrics.RMVCells.WithLabelValues("placeholder").Add(float64(placeholders))
	a.logger.Info("table augmented", "variant", layout.Name, "rows", len(rows)-1, "placeholders", placeholders)
	return nil
}

func (a *TableAugmenter) find(ctx context.Context) (domain.SummaryTable, domain.TableLayout, bool, error) {
	for _, layout := range a.layouts {
		table, ok, err := a.doc.SummaryTable(ctx, layout)
		if err != nil {
			return nil, layout, false, fmt.Errorf("find %s table: %w", layout.Name, err)
		}
		if ok {
			return table, layout, true, nil
		}
	}
	return nil, domain.TableLayout{}, false, nil
}

package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"github.com/ysmood/gson"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
)

var errDetached = errors.New("element no longer in page")

// Document is the host page contract over one browser tab. Lookups report
// absent while the tab's URL is out of scope.
type Document struct {
	page     *rod.Page
	scope    domain.Scope
	dispatch *dispatcher
	logger   *slog.Logger
}

// NewDocument exposes the input binding on the page and starts delivering
// input events. Delivery stops when ctx is cancelled.
func NewDocument(ctx context.Context, page *rod.Page, scope domain.Scope, logger *slog.Logger) (*Document, error) {
	d := &Document{
		page:     page,
		scope:    scope,
		dispatch: newDispatcher(logger),
		logger:   logger,
	}

	stop, err := page.Expose(inputBinding, func(req gson.JSON) (interface{}, error) {
		d.dispatch.deliver(req.Str())
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expose input binding: %w", err)
	}

	go func() {
		d.dispatch.run(ctx)
		if err := stop(); err != nil {
			logger.Debug("remove input binding failed", "error", err)
		}
	}()
	return d, nil
}

// ObserveMutations installs a MutationObserver in the page, now and after
// every navigation, and calls fn for each debounced batch of changes.
func (d *Document) ObserveMutations(ctx context.Context, fn func()) error {
	stop, err := d.page.Expose(mutationBinding, func(gson.JSON) (interface{}, error) {
		fn()
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("expose mutation binding: %w", err)
	}
	remove, err := d.page.EvalOnNewDocument(observerScript)
	if err != nil {
		_ = stop()
		return fmt.Errorf("install mutation observer: %w", err)
	}
	if err := d.eval(ctx, "() => "+observerScript, nil); err != nil {
		d.logger.Debug("mutation observer not installed on current document", "error", err)
	}

	go func() {
		<-ctx.Done()
		_ = remove()
		_ = stop()
	}()
	return nil
}

func (d *Document) TankForm(ctx context.Context) (domain.TankForm, bool, error) {
	ok, err := d.inScope(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	var present bool
	if err := d.eval(ctx, hasElementJS, &present, string(domain.FieldEndingPressure)); err != nil {
		return nil, false, err
	}
	if !present {
		return nil, false, nil
	}
	return &tankForm{doc: d}, true, nil
}

func (d *Document) SummaryTable(ctx context.Context, layout domain.TableLayout) (domain.SummaryTable, bool, error) {
	ok, err := d.inScope(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	var rows []domain.TableRow
	if err := d.eval(ctx, tableRowsJS, &rows, layout.Selector); err != nil {
		return nil, false, err
	}
	if rows == nil {
		return nil, false, nil
	}
	return &summaryTable{doc: d, selector: layout.Selector, rows: rows}, true, nil
}

func (d *Document) inScope(ctx context.Context) (bool, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return false, fmt.Errorf("page info: %w", err)
	}
	return d.scope.Matches(info.URL), nil
}

// eval calls a page function with args and decodes its JSON result into out.
func (d *Document) eval(ctx context.Context, js string, out any, args ...any) error {
	res, err := d.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      js,
		JSArgs:  args,
		ByValue: true,
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil || res == nil {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (d *Document) evalOK(ctx context.Context, js string, args ...any) error {
	var ok bool
	if err := d.eval(ctx, js, &ok, args...); err != nil {
		return err
	}
	if !ok {
		return errDetached
	}
	return nil
}

type tankForm struct {
	doc *Document
}

func (f *tankForm) Wired(ctx context.Context) (bool, error) {
	var wired bool
	err := f.doc.eval(ctx, wiredJS, &wired, string(domain.FieldEndingPressure), domain.WiredAttr)
	return wired, err
}

// AttachInputTriggers registers h under a fresh token. Detaching only drops
// the token; the page listeners stay and their events are ignored.
func (f *tankForm) AttachInputTriggers(ctx context.Context, fields []domain.FieldID, h domain.InputHandler) (func(), error) {
	ids := make([]string, len(fields))
	for i, id := range fields {
		ids[i] = string(id)
	}
	token := uuid.NewString()
	f.doc.dispatch.register(token, h)
	if err := f.doc.evalOK(ctx, attachJS, ids, inputBinding, token); err != nil {
		f.doc.dispatch.unregister(token)
		return nil, err
	}
	return func() { f.doc.dispatch.unregister(token) }, nil
}

func (f *tankForm) MarkWired(ctx context.Context) error {
	return f.doc.evalOK(ctx, markWiredJS, string(domain.FieldEndingPressure), domain.WiredAttr)
}

func (f *tankForm) ReadInputs(ctx context.Context) (domain.TankInputs, error) {
	ids := []string{
		string(domain.FieldStartingPressure),
		string(domain.FieldEndingPressure),
		string(domain.FieldTankSize),
		string(domain.FieldAverageDepth),
		string(domain.FieldDepthUnit),
	}
	var v map[string]string
	if err := f.doc.eval(ctx, readInputsJS, &v, ids, domain.BottomHoursSelector, domain.BottomMinutesSelector); err != nil {
		return domain.TankInputs{}, err
	}
	return domain.TankInputs{
		StartingPressure: v[string(domain.FieldStartingPressure)],
		EndingPressure:   v[string(domain.FieldEndingPressure)],
		TankSize:         v[string(domain.FieldTankSize)],
		AverageDepth:     v[string(domain.FieldAverageDepth)],
		DepthUnit:        domain.ParseDepthUnit(v[string(domain.FieldDepthUnit)]),
		BottomHours:      v["hours"],
		BottomMinutes:    v["minutes"],
	}, nil
}

func (f *tankForm) WriteSACRate(ctx context.Context, value string) error {
	return f.doc.evalOK(ctx, writeValueJS, string(domain.FieldSACRate), value)
}

// summaryTable carries the rows read when the table was found, so a pass
// reads the page once before deciding whether to insert.
type summaryTable struct {
	doc      *Document
	selector string
	rows     []domain.TableRow
}

func (t *summaryTable) Rows(_ context.Context) ([]domain.TableRow, error) {
	return t.rows, nil
}

func (t *summaryTable) InsertColumn(ctx context.Context, at int, cells []string) error {
	if err := t.doc.evalOK(ctx, insertColumnJS, t.selector, at, cells); err != nil {
		return fmt.Errorf("table changed before insert: %w", err)
	}
	return nil
}

package agent_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
)

// --- in-memory host page ---

type fakeDoc struct {
	mu      sync.Mutex
	form    *fakeForm
	tables  map[string]*fakeTable // keyed by layout name
	findErr error
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{tables: make(map[string]*fakeTable)}
}

func (d *fakeDoc) TankForm(_ context.Context) (domain.TankForm, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findErr != nil {
		return nil, false, d.findErr
	}
	if d.form == nil {
		return nil, false, nil
	}
	return d.form, true, nil
}

func (d *fakeDoc) SummaryTable(_ context.Context, layout domain.TableLayout) (domain.SummaryTable, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findErr != nil {
		return nil, false, d.findErr
	}
	t, ok := d.tables[layout.Name]
	if !ok {
		return nil, false, nil
	}
	return t, true, nil
}

func (d *fakeDoc) setForm(f *fakeForm) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form = f
}

func (d *fakeDoc) setTable(name string, t *fakeTable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[name] = t
}

type fakeForm struct {
	mu       sync.Mutex
	inputs   domain.TankInputs
	wired    bool
	handlers map[domain.FieldID][]domain.InputHandler
	sacRate  string
	writes   int
	readErr  error
	markErr  error
}

func newFakeForm(in domain.TankInputs) *fakeForm {
	return &fakeForm{inputs: in, sacRate: "stale", handlers: make(map[domain.FieldID][]domain.InputHandler)}
}

func (f *fakeForm) Wired(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wired, nil
}

func (f *fakeForm) AttachInputTriggers(_ context.Context, fields []domain.FieldID, h domain.InputHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range fields {
		f.handlers[id] = append(f.handlers[id], h)
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, id := range fields {
			hs := f.handlers[id]
			f.handlers[id] = hs[:len(hs)-1]
		}
	}, nil
}

func (f *fakeForm) MarkWired(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.wired = true
	return nil
}

func (f *fakeForm) ReadInputs(_ context.Context) (domain.TankInputs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs, f.readErr
}

func (f *fakeForm) WriteSACRate(_ context.Context, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sacRate = value
	f.writes++
	return nil
}

// input simulates a user edit of one field.
func (f *fakeForm) input(ctx context.Context, id domain.FieldID, mutate func(*domain.TankInputs)) {
	f.mu.Lock()
	mutate(&f.inputs)
	handlers := append([]domain.InputHandler(nil), f.handlers[id]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(ctx)
	}
}

func (f *fakeForm) result() (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sacRate, f.writes
}

func (f *fakeForm) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, hs := range f.handlers {
		n += len(hs)
	}
	return n
}

type fakeTable struct {
	mu      sync.Mutex
	rows    []domain.TableRow
	inserts int
}

func (t *fakeTable) Rows(_ context.Context) ([]domain.TableRow, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TableRow, len(t.rows))
	for i, r := range t.rows {
		out[i] = append(domain.TableRow(nil), r...)
	}
	return out, nil
}

func (t *fakeTable) InsertColumn(_ context.Context, at int, cells []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inserts++
	for i, c := range cells {
		row := t.rows[i]
		pos := at
		if pos > len(row) {
			pos = len(row)
		}
		row = append(row[:pos], append(domain.TableRow{c}, row[pos:]...)...)
		t.rows[i] = row
	}
	return nil
}

func (t *fakeTable) snapshot() ([]domain.TableRow, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.TableRow(nil), t.rows...), t.inserts
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func viewTable() *fakeTable {
	return &fakeTable{rows: []domain.TableRow{
		{"Tank", "Gas", "Size", "Start", "End", "Used", "Rate"},
		{"Tank 1", "Air", "11.1 L", "200 bar", "50 bar", "150 bar", "2.50"},
		{"Tank 2", "Air", "n/a", "200 bar", "100 bar", "100 bar", "1.80"},
	}}
}

func editTable() *fakeTable {
	return &fakeTable{rows: []domain.TableRow{
		{"Gas", "Size", "Start", "End", "Rate", ""},
		{"Air", "12 L", "200", "50", "2.00", "Edit"},
	}}
}

// Command augment runs the RMV table augmentation, and optionally the SAC
// recalculation, over a saved dive page. It is the offline counterpart of
// the browser agent, useful for checking table layouts against pages saved
// from the host.
//
// Usage:
//
//	go run ./cmd/augment -in dive.html -out dive_rmv.html
//	go run ./cmd/augment -in dive.html -out dive_rmv.html -recalc -watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/couchcryptid/dive-sac-agent/internal/adapter/htmldoc"
	"github.com/couchcryptid/dive-sac-agent/internal/agent"
	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

type options struct {
	in        string
	out       string
	precision int
	recalc    bool
}

// result summarizes one augmentation run.
type result struct {
	table   string // layout name of the augmented table, empty if none changed
	sacRate string
	hasForm bool
}

func main() {
	in := flag.String("in", "", "saved dive page to augment")
	out := flag.String("out", "", "output path (default stdout)")
	precision := flag.Int("precision", 2, "decimal places for SAC and RMV")
	recalc := flag.Bool("recalc", false, "recalculate the SAC field of the tank form")
	watch := flag.Bool("watch", false, "re-run whenever the input file changes")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := options{in: *in, out: *out, precision: *precision, recalc: *recalc}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()

	if !*watch {
		if _, err := runOnce(context.Background(), opts, logger, metrics); err != nil {
			fmt.Fprintf(os.Stderr, "augment: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := watchFile(ctx, opts, logger, metrics); err != nil {
		fmt.Fprintf(os.Stderr, "augment: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, opts options, logger *slog.Logger, metrics *observability.Metrics) (result, error) {
	doc, err := loadPage(opts.in)
	if err != nil {
		return result{}, err
	}

	res, err := augment(ctx, doc, opts, logger, metrics)
	if err != nil {
		return res, err
	}

	if err := writePage(doc, opts.out); err != nil {
		return res, err
	}

	logger.Info("page processed", "in", opts.in, "table", res.table, "tank_form", res.hasForm, "sac_rate", res.sacRate)
	return res, nil
}

func augment(ctx context.Context, doc *htmldoc.Document, opts options, logger *slog.Logger, metrics *observability.Metrics) (result, error) {
	var res result

	layouts := domain.DefaultLayouts()
	before := augmentedLayouts(ctx, doc, layouts)

	augmenter := agent.NewTableAugmenter(doc, layouts, opts.precision, logger, metrics)
	if err := augmenter.Check(ctx); err != nil {
		return res, fmt.Errorf("augment table: %w", err)
	}
	for name := range augmentedLayouts(ctx, doc, layouts) {
		if !before[name] {
			res.table = name
		}
	}

	form, ok, err := doc.TankForm(ctx)
	if err != nil {
		return res, fmt.Errorf("find tank form: %w", err)
	}
	res.hasForm = ok
	if ok && opts.recalc {
		agent.NewRecalculator(opts.precision, logger, metrics).Recalculate(ctx, form)
		res.sacRate = doc.Value(domain.FieldSACRate)
	}
	return res, nil
}

// augmentedLayouts returns the names of layouts whose table already carries
// the RMV column.
func augmentedLayouts(ctx context.Context, doc *htmldoc.Document, layouts []domain.TableLayout) map[string]bool {
	out := make(map[string]bool)
	for _, l := range layouts {
		table, ok, err := doc.SummaryTable(ctx, l)
		if err != nil || !ok {
			continue
		}
		rows, err := table.Rows(ctx)
		if err != nil || len(rows) == 0 {
			continue
		}
		if l.State(len(rows[0])) == domain.TableAugmented {
			out[l.Name] = true
		}
	}
	return out
}

func watchFile(ctx context.Context, opts options, logger *slog.Logger, metrics *observability.Metrics) error {
	if opts.out == "" {
		return errors.New("-watch requires -out")
	}
	if sameFile(opts.in, opts.out) {
		return errors.New("-watch requires -out to differ from -in")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file rather than write it.
	if err := w.Add(filepath.Dir(opts.in)); err != nil {
		return fmt.Errorf("watch %s: %w", opts.in, err)
	}

	if _, err := runOnce(ctx, opts, logger, metrics); err != nil {
		logger.Warn("augment failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !sameFile(ev.Name, opts.in) || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if _, err := runOnce(ctx, opts, logger, metrics); err != nil {
				logger.Warn("augment failed", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func loadPage(path string) (*htmldoc.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return htmldoc.Parse(f)
}

func writePage(doc *htmldoc.Document, path string) error {
	if path == "" {
		return doc.Render(os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".augment-*.html")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := renderTo(doc, tmp); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func renderTo(doc *htmldoc.Document, f *os.File) error {
	var w io.Writer = f
	if err := doc.Render(w); err != nil {
		f.Close()
		return fmt.Errorf("render page: %w", err)
	}
	return f.Close()
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

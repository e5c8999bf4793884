// Package htmldoc implements the host page contract over a parsed HTML
// document. It backs the offline augment tool, and its SetValue method
// stands in for a user typing into the tank form.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
)

var (
	bottomHoursSel   = cascadia.MustCompile(domain.BottomHoursSelector)
	bottomMinutesSel = cascadia.MustCompile(domain.BottomMinutesSelector)
)

// Document is an in-memory page. It is safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	handlers map[*html.Node][]trigger
	nextID   uint64
}

type trigger struct {
	id uint64
	h  domain.InputHandler
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		root:     root,
		handlers: make(map[*html.Node][]trigger),
	}, nil
}

// Render writes the current page, including any augmentation.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// TankForm returns the tank-entry form if its ending pressure input exists.
func (d *Document) TankForm(_ context.Context) (domain.TankForm, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	anchor := d.byID(string(domain.FieldEndingPressure))
	if anchor == nil {
		return nil, false, nil
	}
	return &tankForm{doc: d, anchor: anchor}, true, nil
}

// SummaryTable returns the first table matching the layout selector.
func (d *Document) SummaryTable(_ context.Context, layout domain.TableLayout) (domain.SummaryTable, bool, error) {
	sel, err := cascadia.Compile(layout.Selector)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s selector: %w", layout.Name, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := sel.MatchFirst(d.root)
	if n == nil {
		return nil, false, nil
	}
	return &summaryTable{doc: d, node: n}, true, nil
}

// SetValue sets an input's value and dispatches an input event to the
// triggers attached to it, as a user edit would.
func (d *Document) SetValue(ctx context.Context, id domain.FieldID, value string) error {
	d.mu.Lock()
	n := d.byID(string(id))
	if n == nil {
		d.mu.Unlock()
		return fmt.Errorf("no element with id %q", id)
	}
	setAttr(n, "value", value)
	triggers := append([]trigger(nil), d.handlers[n]...)
	d.mu.Unlock()

	for _, t := range triggers {
		t.h(ctx)
	}
	return nil
}

// Value returns the current value of a form control, or "" if it is absent.
func (d *Document) Value(id domain.FieldID) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return controlValue(d.byID(string(id)))
}

func (d *Document) byID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

type tankForm struct {
	doc    *Document
	anchor *html.Node // ending pressure input of this modal instance
}

func (f *tankForm) Wired(_ context.Context) (bool, error) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	return attr(f.anchor, domain.WiredAttr) == "true", nil
}

func (f *tankForm) AttachInputTriggers(_ context.Context, fields []domain.FieldID, h domain.InputHandler) (func(), error) {
	d := f.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	nodes := make([]*html.Node, len(fields))
	for i, id := range fields {
		n := d.byID(string(id))
		if n == nil {
			return nil, fmt.Errorf("no element with id %q", id)
		}
		nodes[i] = n
	}

	d.nextID++
	t := trigger{id: d.nextID, h: h}
	for _, n := range nodes {
		d.handlers[n] = append(d.handlers[n], t)
	}
	return func() { d.detach(nodes, t.id) }, nil
}

func (d *Document) detach(nodes []*html.Node, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range nodes {
		kept := d.handlers[n][:0]
		for _, t := range d.handlers[n] {
			if t.id != id {
				kept = append(kept, t)
			}
		}
		d.handlers[n] = kept
	}
}

func (f *tankForm) MarkWired(_ context.Context) error {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	setAttr(f.anchor, domain.WiredAttr, "true")
	return nil
}

func (f *tankForm) ReadInputs(_ context.Context) (domain.TankInputs, error) {
	d := f.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	return domain.TankInputs{
		StartingPressure: controlValue(d.byID(string(domain.FieldStartingPressure))),
		EndingPressure:   controlValue(d.byID(string(domain.FieldEndingPressure))),
		TankSize:         controlValue(d.byID(string(domain.FieldTankSize))),
		AverageDepth:     controlValue(d.byID(string(domain.FieldAverageDepth))),
		DepthUnit:        domain.ParseDepthUnit(controlValue(d.byID(string(domain.FieldDepthUnit)))),
		BottomHours:      controlValue(bottomHoursSel.MatchFirst(d.root)),
		BottomMinutes:    controlValue(bottomMinutesSel.MatchFirst(d.root)),
	}, nil
}

func (f *tankForm) WriteSACRate(_ context.Context, value string) error {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	n := f.doc.byID(string(domain.FieldSACRate))
	if n == nil {
		return fmt.Errorf("no element with id %q", domain.FieldSACRate)
	}
	setAttr(n, "value", value)
	return nil
}

type summaryTable struct {
	doc  *Document
	node *html.Node
}

func (t *summaryTable) Rows(_ context.Context) ([]domain.TableRow, error) {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()

	trs := rowsOf(t.node)
	rows := make([]domain.TableRow, len(trs))
	for i, tr := range trs {
		cells := cellsOf(tr)
		row := make(domain.TableRow, len(cells))
		for j, c := range cells {
			row[j] = textContent(c)
		}
		rows[i] = row
	}
	return rows, nil
}

func (t *summaryTable) InsertColumn(_ context.Context, at int, cells []string) error {
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()

	trs := rowsOf(t.node)
	if len(cells) != len(trs) {
		return fmt.Errorf("column has %d cells for %d rows", len(cells), len(trs))
	}

	for i, tr := range trs {
		existing := cellsOf(tr)
		tag := atom.Td
		if len(existing) > 0 && existing[0].DataAtom == atom.Th {
			tag = atom.Th
		}
		cell := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String()}
		cell.AppendChild(&html.Node{Type: html.TextNode, Data: cells[i]})

		if at >= 0 && at < len(existing) {
			tr.InsertBefore(cell, existing[at])
		} else {
			tr.AppendChild(cell)
		}
	}
	return nil
}

// rowsOf returns the rows of a table in document order, skipping rows of
// nested tables.
func rowsOf(table *html.Node) []*html.Node {
	var rows []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				visit(c)
			}
		}
	}
	visit(table)
	return rows
}

func cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

// controlValue returns what the browser would expose as .value: the value
// attribute of an input, or the selected option of a select.
func controlValue(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.DataAtom != atom.Select {
		return attr(n, "value")
	}

	var first, selected *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == atom.Option {
			if first == nil {
				first = c
			}
			if hasAttr(c, "selected") && selected == nil {
				selected = c
			}
		}
		return true
	})
	if selected == nil {
		selected = first
	}
	if selected == nil {
		return ""
	}
	if hasAttr(selected, "value") {
		return attr(selected, "value")
	}
	return textContent(selected)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// walk visits n and its descendants depth-first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

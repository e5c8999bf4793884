// Command genfixture reads a tank CSV and writes saved-page fixtures holding
// the view and edit summary tables, for use with cmd/augment and the adapter
// tests. Expected RMV values are printed using the domain package so test
// assertions can be updated from the output.
//
// Usage:
//
//	go run ./cmd/genfixture -csv testdata/tanks.csv -out-dir testdata/pages
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/dive-sac-agent/internal/domain"
)

// tank is one CSV row. Values keep their unit suffixes as the host shows them.
type tank struct {
	Name  string
	Gas   string
	Size  string
	Start string
	End   string
	Used  string
	Rate  string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<body>
{{- if eq .Layout "view"}}
<table class="tanks-table tanks-table-view">
  <thead>
    <tr><th>Tank</th><th>Gas</th><th>Size</th><th>Start</th><th>End</th><th>Used</th><th>Rate</th></tr>
  </thead>
  <tbody>
{{- range .Tanks}}
    <tr><td>{{.Name}}</td><td>{{.Gas}}</td><td>{{.Size}}</td><td>{{.Start}}</td><td>{{.End}}</td><td>{{.Used}}</td><td>{{.Rate}}</td></tr>
{{- end}}
  </tbody>
</table>
{{- else}}
<table class="tanks-table tanks-table-edit">
  <tr><th>Gas</th><th>Size</th><th>Start</th><th>End</th><th>Rate</th><th></th></tr>
{{- range .Tanks}}
  <tr><td>{{.Gas}}</td><td>{{.Size}}</td><td>{{.Start}}</td><td>{{.End}}</td><td>{{.Rate}}</td><td><button>Edit</button></td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "tank CSV with columns gas,size,start,end,rate")
	outDir := flag.String("out-dir", "", "directory for the generated pages")
	precision := flag.Int("precision", 2, "decimal places for the printed RMV values")
	flag.Parse()

	if *csvPath == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out-dir")
	}

	tanks, err := readTanks(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("read %d tanks", len(tanks))

	for _, layout := range domain.DefaultLayouts() {
		path := filepath.Join(*outDir, layout.Name+"_table.html")
		if err := writePage(path, layout.Name, tanks); err != nil {
			return fmt.Errorf("writing %s page: %w", layout.Name, err)
		}
		log.Printf("wrote %s", path)
	}

	printExpected(tanks, *precision)
	return nil
}

func readTanks(path string) ([]tank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	tanks := make([]tank, 0, len(rows)-1)
	for i, row := range rows[1:] {
		t := tank{
			Name:  fmt.Sprintf("Tank %d", i+1),
			Gas:   get(row, colIdx, "gas"),
			Size:  get(row, colIdx, "size"),
			Start: get(row, colIdx, "start"),
			End:   get(row, colIdx, "end"),
			Rate:  get(row, colIdx, "rate"),
		}
		t.Used = usedPressure(t.Start, t.End)
		tanks = append(tanks, t)
	}
	return tanks, nil
}

// usedPressure derives the "Used" cell, keeping the unit suffix of the
// starting pressure.
func usedPressure(start, end string) string {
	s := domain.ParseField(domain.ExtractNumeric(start))
	e := domain.ParseField(domain.ExtractNumeric(end))
	if s.Kind != domain.FieldValid || e.Kind != domain.FieldValid {
		return domain.RMVPlaceholder
	}
	used := domain.FormatValue(s.Value-e.Value, 1)
	if _, unit, ok := strings.Cut(start, " "); ok {
		return used + " " + unit
	}
	return used
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writePage(path, layout string, tanks []tank) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pageTmpl.Execute(f, struct {
		Layout string
		Tanks  []tank
	}{layout, tanks}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printExpected(tanks []tank, precision int) {
	fmt.Println("\n=== Expected RMV cells ===")
	for _, t := range tanks {
		cell := domain.RMVPlaceholder
		if rmv, ok := domain.ComputeRMV(t.Size, t.Rate); ok {
			cell = domain.FormatValue(rmv, precision)
		}
		fmt.Printf("%s (%s): size=%q rate=%q rmv=%s\n", t.Name, t.Gas, t.Size, t.Rate, cell)
	}
}

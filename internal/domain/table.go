package domain

import "strings"

const (
	// RMVHeader labels the injected column.
	RMVHeader = "RMV"

	// RMVPlaceholder marks a row whose tank size or pressure rate is missing.
	RMVPlaceholder = "--"
)

// TableLayout describes one known shape of the tank summary table.
type TableLayout struct {
	Name            string
	Selector        string // compound class selector locating the table
	BaselineWidth   int    // header cells before augmentation
	TankSizeCol     int
	PressureRateCol int
	InsertAt        int // position of the RMV cell in every row
}

var (
	// ViewLayout is the read-only activity page table:
	// tank, gas, size, start, end, used, rate.
	ViewLayout = TableLayout{
		Name:            "view",
		Selector:        "table.tanks-table.tanks-table-view",
		BaselineWidth:   7,
		TankSizeCol:     2,
		PressureRateCol: 6,
		InsertAt:        7,
	}

	// EditLayout is the edit page table: gas, size, start, end, rate, actions.
	// RMV goes before the actions column.
	EditLayout = TableLayout{
		Name:            "edit",
		Selector:        "table.tanks-table.tanks-table-edit",
		BaselineWidth:   6,
		TankSizeCol:     1,
		PressureRateCol: 4,
		InsertAt:        5,
	}
)

// DefaultLayouts lists the table variants in detection order.
func DefaultLayouts() []TableLayout {
	return []TableLayout{ViewLayout, EditLayout}
}

// TableState is the augmentation state of a table judged by its header width.
type TableState int

const (
	TableUnaugmented TableState = iota
	TableAugmented
	TableUnexpected
)

// State compares the header width against the layout baseline.
func (l TableLayout) State(headerWidth int) TableState {
	switch {
	case headerWidth == l.BaselineWidth:
		return TableUnaugmented
	case headerWidth > l.BaselineWidth:
		return TableAugmented
	default:
		return TableUnexpected
	}
}

// TableRow is the text content of the cells of one table row.
type TableRow []string

func (r TableRow) cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// ComputeRMV multiplies tank size by pressure rate after stripping the cell
// text down to digits and decimal points. ok is false when either value is
// missing or unparseable.
func ComputeRMV(tankSizeText, pressureRateText string) (rmv float64, ok bool) {
	size := ParseField(ExtractNumeric(tankSizeText))
	rate := ParseField(ExtractNumeric(pressureRateText))
	if size.Kind != FieldValid || rate.Kind != FieldValid {
		return 0, false
	}
	return size.Value * rate.Value, true
}

// RMVCell returns the text of the RMV cell for a data row.
func RMVCell(row TableRow, layout TableLayout, precision int) string {
	rmv, ok := ComputeRMV(row.cell(layout.TankSizeCol), row.cell(layout.PressureRateCol))
	if !ok {
		return RMVPlaceholder
	}
	return FormatValue(rmv, precision)
}

// RMVColumn builds the cells to insert into every row of an unaugmented
// table, header first.
func RMVColumn(rows []TableRow, layout TableLayout, precision int) []string {
	if len(rows) == 0 {
		return nil
	}
	cells := make([]string, len(rows))
	cells[0] = RMVHeader
	for i := 1; i < len(rows); i++ {
		cells[i] = RMVCell(rows[i], layout, precision)
	}
	return cells
}

// FormatValue rounds v to precision decimal places and renders it without
// trailing zeros.
func FormatValue(v float64, precision int) string {
	s := toFixed(v, precision)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

package domain

import "context"

// FieldID identifies an input element of the tank-entry form by its id.
type FieldID string

const (
	FieldStartingPressure FieldID = "startingPressure"
	FieldEndingPressure   FieldID = "endingPressure"
	FieldTankSize         FieldID = "tankSize"
	FieldAverageDepth     FieldID = "averageDepth"
	FieldDepthUnit        FieldID = "averageDepthSelect"
	FieldSACRate          FieldID = "sacRate"
)

const (
	// Bottom time inputs carry a generated infix in their ids, e.g.
	// bottomTime_3-time-hour.
	BottomTimeIDPrefix    = "bottomTime_"
	BottomHoursIDSuffix   = "-time-hour"
	BottomMinutesIDSuffix = "-time-minute"

	BottomHoursSelector   = `[id^="` + BottomTimeIDPrefix + `"][id$="` + BottomHoursIDSuffix + `"]`
	BottomMinutesSelector = `[id^="` + BottomTimeIDPrefix + `"][id$="` + BottomMinutesIDSuffix + `"]`

	// WiredAttr is set to "true" on the ending pressure input once the
	// recalculation triggers are attached.
	WiredAttr = "listener"
)

// TriggerFields are the inputs whose changes cause a SAC recalculation.
var TriggerFields = []FieldID{FieldTankSize, FieldStartingPressure, FieldEndingPressure}

// InputHandler runs after an input event on a wired field.
type InputHandler func(ctx context.Context)

// Document is the externally rendered page. Lookups report ok=false while
// the element does not exist; an error means the page itself could not be
// queried.
type Document interface {
	TankForm(ctx context.Context) (form TankForm, ok bool, err error)
	SummaryTable(ctx context.Context, layout TableLayout) (table SummaryTable, ok bool, err error)
}

// TankForm is one instance of the tank-entry modal.
type TankForm interface {
	// Wired reports whether the wiring mark is present.
	Wired(ctx context.Context) (bool, error)
	// AttachInputTriggers calls h after every input event on the fields
	// until detach is called.
	AttachInputTriggers(ctx context.Context, fields []FieldID, h InputHandler) (detach func(), err error)
	// MarkWired sets the wiring mark.
	MarkWired(ctx context.Context) error
	ReadInputs(ctx context.Context) (TankInputs, error)
	WriteSACRate(ctx context.Context, value string) error
}

// SummaryTable is one instance of the tank summary table.
type SummaryTable interface {
	// Rows returns the text of every cell, header row first.
	Rows(ctx context.Context) ([]TableRow, error)
	// InsertColumn inserts cells[i] at position at of row i. Rows shorter
	// than at receive the cell at their end.
	InsertColumn(ctx context.Context, at int, cells []string) error
}

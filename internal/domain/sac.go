package domain

import "errors"

var (
	// ErrIncompleteInput means the form is still being filled in: a required
	// field is blank or some field does not parse as a number.
	ErrIncompleteInput = errors.New("incomplete tank input")

	// ErrNoGasConsumed means the ending pressure is not below the starting
	// pressure.
	ErrNoGasConsumed = errors.New("no gas consumed")
)

// DepthUnit selects how average depth is converted to ambient pressure.
type DepthUnit int

const (
	UnitImperial DepthUnit = iota
	UnitMetric
)

// ParseDepthUnit maps the averageDepthSelect value to a unit. Anything other
// than "metric" is imperial.
func ParseDepthUnit(s string) DepthUnit {
	if s == "metric" {
		return UnitMetric
	}
	return UnitImperial
}

func (u DepthUnit) String() string {
	if u == UnitMetric {
		return "metric"
	}
	return "imperial"
}

// TankInputs holds the raw values of the tank-entry form at one instant.
type TankInputs struct {
	StartingPressure string
	EndingPressure   string
	TankSize         string
	AverageDepth     string
	DepthUnit        DepthUnit
	BottomHours      string
	BottomMinutes    string
}

// ATA returns the absolute ambient pressure in atmospheres at depth.
func ATA(depth float64, unit DepthUnit) float64 {
	if unit == UnitMetric {
		return depth/10 + 1
	}
	return depth/33 + 1
}

// ComputeSAC derives the surface air consumption rate from the form values.
// Blank values count as zero except ending pressure and average depth, which
// are required.
func ComputeSAC(in TankInputs) (float64, error) {
	start := ParseField(in.StartingPressure)
	end := ParseField(in.EndingPressure)
	tank := ParseField(in.TankSize)
	depth := ParseField(in.AverageDepth)
	hours := ParseField(in.BottomHours)
	minutes := ParseField(in.BottomMinutes)

	for _, f := range []Field{start, end, tank, depth, hours, minutes} {
		if f.Kind == FieldInvalid {
			return 0, ErrIncompleteInput
		}
	}
	if end.Kind == FieldBlank || depth.Kind == FieldBlank {
		return 0, ErrIncompleteInput
	}

	totalMinutes := minutes.Or(0) + hours.Or(0)*60
	ata := ATA(depth.Value, in.DepthUnit)

	gas := start.Or(0) - end.Value
	if gas <= 0 {
		return 0, ErrNoGasConsumed
	}

	// Zero bottom time or a depth above the surface has no meaningful rate.
	denom := totalMinutes * ata
	if denom <= 0 {
		return 0, ErrIncompleteInput
	}

	return gas / denom, nil
}

// FormatRate renders a rate with a fixed number of decimal places, rounding
// exact halves up.
func FormatRate(v float64, precision int) string {
	return toFixed(v, precision)
}

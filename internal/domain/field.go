package domain

import (
	"math"
	"strconv"
	"strings"
)

// FieldKind classifies a raw form value.
type FieldKind int

const (
	FieldBlank FieldKind = iota
	FieldInvalid
	FieldValid
)

func (k FieldKind) String() string {
	switch k {
	case FieldBlank:
		return "blank"
	case FieldInvalid:
		return "invalid"
	case FieldValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Field is the parsed form of a numeric input value.
type Field struct {
	Kind  FieldKind
	Value float64
}

// Or returns the parsed value, or def when the field is blank or invalid.
func (f Field) Or(def float64) float64 {
	if f.Kind != FieldValid {
		return def
	}
	return f.Value
}

// ParseField classifies a raw input value. Only the empty string is blank;
// surrounding whitespace is ignored, so a whitespace-only value reads as zero.
// NaN or infinite values are invalid.
func ParseField(s string) Field {
	if s == "" {
		return Field{Kind: FieldBlank}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Field{Kind: FieldValid}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Field{Kind: FieldInvalid}
	}
	return Field{Kind: FieldValid, Value: v}
}

// ExtractNumeric keeps only the digits and decimal points of cell text,
// e.g. "11.1 L" -> "11.1".
func ExtractNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

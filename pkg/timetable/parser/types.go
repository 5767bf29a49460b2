package parser

import (
	"math"

	"github.com/ukaji3/timetable-go/pkg/timetable/models"
)

// maxExactFloat is the largest magnitude at which every whole float64 is an
// exact int64.
const maxExactFloat = 1 << 53

// ColumnInference is the outcome of InferColumn.
type ColumnInference struct {
	Type models.ColumnType
	// Values holds one typed value per input (nil for empty cells).
	Values []any
	// Numeric counts values that parsed as numbers.
	Numeric int
	// FirstUnparseable is the index of the first non-numeric value, or -1.
	FirstUnparseable int
}

// Degraded reports whether the column held numbers but fell back to text.
func (c ColumnInference) Degraded() bool {
	return c.Type == models.TypeText && c.Numeric > 0 && c.FirstUnparseable >= 0
}

// InferColumn decides a single type for a column and converts its values.
// The first pass parses every non-empty value; the second applies the
// decision. A column is INTEGER when every value is a whole number, REAL
// when every value is numeric, TEXT otherwise. TEXT keeps the original
// strings untouched.
func InferColumn(values []string) ColumnInference {
	inf := ColumnInference{FirstUnparseable: -1}
	parsed := make([]interface{}, len(values))
	nonEmpty := 0
	fractional := false

	for i, v := range values {
		if models.IsEmpty(v) {
			continue
		}
		nonEmpty++
		parsed[i] = parseValue(v)
		switch p := parsed[i].(type) {
		case int64:
			inf.Numeric++
		case float64:
			inf.Numeric++
			if !whole(p) {
				fractional = true
			}
		default:
			if inf.FirstUnparseable < 0 {
				inf.FirstUnparseable = i
			}
		}
	}

	switch {
	case nonEmpty == 0 || inf.FirstUnparseable >= 0:
		inf.Type = models.TypeText
	case fractional:
		inf.Type = models.TypeFloat
	default:
		inf.Type = models.TypeInteger
	}

	inf.Values = make([]any, len(values))
	for i, v := range values {
		if models.IsEmpty(v) {
			continue
		}
		switch inf.Type {
		case models.TypeInteger:
			switch p := parsed[i].(type) {
			case int64:
				inf.Values[i] = p
			case float64:
				inf.Values[i] = int64(p)
			}
		case models.TypeFloat:
			switch p := parsed[i].(type) {
			case int64:
				inf.Values[i] = float64(p)
			case float64:
				inf.Values[i] = p
			}
		default:
			inf.Values[i] = v
		}
	}

	return inf
}

func whole(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < maxExactFloat
}

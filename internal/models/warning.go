package models

import "fmt"

// WarningKind classifies a non-fatal condition found while projecting a plan.
type WarningKind string

const (
	WarnUnrepresentablePlates WarningKind = "unrepresentable_plates"
	WarnWeekCountMismatch     WarningKind = "week_count_mismatch"
)

// Warning is a condition the caller should show the user. It never stops
// an outline or workbook from being produced.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Exercise int         `json:"exercise"`
	Week     int         `json:"week"` // zero-based; -1 when the warning covers the whole row
	Message  string      `json:"message"`
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

// WeekMismatch builds the warning for an exercise whose week count is off.
func WeekMismatch(exercise int, name string, got, want int) Warning {
	return Warning{
		Kind:     WarnWeekCountMismatch,
		Exercise: exercise,
		Week:     -1,
		Message:  fmt.Sprintf("%s has %d weeks, plan has %d", name, got, want),
	}
}

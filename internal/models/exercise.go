package models

import (
	"strings"

	"github.com/google/uuid"
)

// UnnamedExercise is shown wherever an exercise has no name yet.
const UnnamedExercise = "Unnamed"

// WeekDetail is one week's target for an exercise.
type WeekDetail struct {
	Pct  Number `json:"pct" yaml:"pct"`
	Sets Number `json:"sets" yaml:"sets"`
	Reps Number `json:"reps" yaml:"reps"`
}

// WeekField names one of the three WeekDetail fields.
type WeekField string

const (
	FieldPct  WeekField = "pct"
	FieldSets WeekField = "sets"
	FieldReps WeekField = "reps"
)

// Valid reports whether f is one of the known week fields.
func (f WeekField) Valid() bool {
	switch f {
	case FieldPct, FieldSets, FieldReps:
		return true
	}
	return false
}

// Get returns the value of field f.
func (w WeekDetail) Get(f WeekField) Number {
	switch f {
	case FieldPct:
		return w.Pct
	case FieldSets:
		return w.Sets
	case FieldReps:
		return w.Reps
	}
	return ""
}

// Set returns a copy of w with field f replaced.
func (w WeekDetail) Set(f WeekField, v Number) WeekDetail {
	switch f {
	case FieldPct:
		w.Pct = v
	case FieldSets:
		w.Sets = v
	case FieldReps:
		w.Reps = v
	}
	return w
}

// Exercise is one row of the plan: a lift, its training max and its weekly targets.
// WeekDetails is index-aligned with every other exercise in the same plan.
type Exercise struct {
	ID          uuid.UUID    `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	TrainingMax Number       `json:"trainingMax" yaml:"trainingMax"`
	WeekDetails []WeekDetail `json:"weekDetails" yaml:"weekDetails"`
}

// NewExercise returns a blank exercise with a fresh ID and the given number of blank weeks.
func NewExercise(weeks int) Exercise {
	if weeks < 0 {
		weeks = 0
	}
	return Exercise{
		ID:          uuid.New(),
		WeekDetails: make([]WeekDetail, weeks),
	}
}

// DisplayName returns the name, or UnnamedExercise when it is blank.
func (e Exercise) DisplayName() string {
	if strings.TrimSpace(e.Name) == "" {
		return UnnamedExercise
	}
	return e.Name
}

// Week returns week i and whether the exercise has it.
func (e Exercise) Week(i int) (WeekDetail, bool) {
	if i < 0 || i >= len(e.WeekDetails) {
		return WeekDetail{}, false
	}
	return e.WeekDetails[i], true
}

// Clone returns a deep copy so edits never alias another plan's weeks.
func (e Exercise) Clone() Exercise {
	c := e
	c.WeekDetails = append([]WeekDetail(nil), e.WeekDetails...)
	if c.WeekDetails == nil {
		c.WeekDetails = []WeekDetail{}
	}
	return c
}

// WeekCount returns the shared week count of an exercise list: the first
// exercise's count, or 0 for an empty list.
func WeekCount(exercises []Exercise) int {
	if len(exercises) == 0 {
		return 0
	}
	return len(exercises[0].WeekDetails)
}

// CheckWeeks returns a week_count_mismatch warning for every exercise whose
// week count differs from the first exercise's.
func CheckWeeks(exercises []Exercise) []Warning {
	want := WeekCount(exercises)
	var warnings []Warning
	for i, ex := range exercises {
		if got := len(ex.WeekDetails); got != want {
			warnings = append(warnings, WeekMismatch(i, ex.DisplayName(), got, want))
		}
	}
	return warnings
}

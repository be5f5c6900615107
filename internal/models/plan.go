package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormatVersion tags every stored plan. Stored plans with a different tag
// are discarded instead of being decoded into the wrong shape.
const FormatVersion = 1

// DefaultWeeks is the week count of a fresh plan.
const DefaultWeeks = 3

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrIndexOutOfRange  = errors.New("exercise index out of range")
	ErrWeekOutOfRange   = errors.New("week out of range")
	ErrWeekCountChanged = errors.New("exercise week count differs from plan")
	ErrUnknownField     = errors.New("unknown week field")
)

// Plan is an editing session's document: an ordered exercise list that
// shares one week count. Weeks holds that count so it survives the plan
// being emptied of exercises.
type Plan struct {
	ID        uuid.UUID  `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Format    int        `json:"format" yaml:"format"`
	Weeks     int        `json:"weeks" yaml:"weeks"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// PlanSummary is the list view of a stored plan.
type PlanSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Exercises int       `json:"exercises"`
	Weeks     int       `json:"weeks"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPlan returns a plan holding one blank placeholder exercise.
// A non-positive weeks value falls back to DefaultWeeks.
func NewPlan(name string, weeks int) *Plan {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	now := time.Now().UTC()
	return &Plan{
		ID:        uuid.New(),
		Name:      name,
		Format:    FormatVersion,
		Weeks:     weeks,
		Exercises: []Exercise{NewExercise(weeks)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Summary returns the list view of p.
func (p *Plan) Summary() PlanSummary {
	return PlanSummary{
		ID:        p.ID,
		Name:      p.Name,
		Exercises: len(p.Exercises),
		Weeks:     p.WeekCount(),
		UpdatedAt: p.UpdatedAt,
	}
}

// WeekCount returns the plan's shared week count: the first exercise's, or
// the remembered count when there are no exercises.
func (p *Plan) WeekCount() int {
	if len(p.Exercises) == 0 {
		return p.Weeks
	}
	return WeekCount(p.Exercises)
}

// Snapshot returns a deep copy of the exercise list for the read-side
// projections.
func (p *Plan) Snapshot() []Exercise {
	out := make([]Exercise, len(p.Exercises))
	for i, ex := range p.Exercises {
		out[i] = ex.Clone()
	}
	return out
}

// Validate checks the uniform week count and records it in Weeks.
func (p *Plan) Validate() error {
	if w := CheckWeeks(p.Exercises); len(w) > 0 {
		return fmt.Errorf("%w: %s", ErrWeekCountChanged, w[0].Message)
	}
	p.Weeks = p.WeekCount()
	return nil
}

func (p *Plan) indexOf(id uuid.UUID) int {
	for i, ex := range p.Exercises {
		if ex.ID == id {
			return i
		}
	}
	return -1
}

// AddExercise appends a blank exercise sized to the current week count.
// A plan that never had a week count gets DefaultWeeks weeks.
func (p *Plan) AddExercise() Exercise {
	weeks := p.WeekCount()
	if len(p.Exercises) == 0 && weeks <= 0 {
		weeks = DefaultWeeks
	}
	ex := NewExercise(weeks)
	p.Exercises = append(p.Exercises, ex)
	p.Weeks = weeks
	return ex
}

// RemoveExercise deletes the exercise with the given ID.
func (p *Plan) RemoveExercise(id uuid.UUID) error {
	i := p.indexOf(id)
	if i < 0 {
		return ErrExerciseNotFound
	}
	p.Weeks = p.WeekCount()
	p.Exercises = append(p.Exercises[:i], p.Exercises[i+1:]...)
	return nil
}

// MoveExercise removes the exercise at from and reinserts it at to.
func (p *Plan) MoveExercise(from, to int) error {
	n := len(p.Exercises)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d exercises", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	ex := p.Exercises[from]
	p.Exercises = append(p.Exercises[:from], p.Exercises[from+1:]...)
	p.Exercises = append(p.Exercises[:to], append([]Exercise{ex}, p.Exercises[to:]...)...)
	return nil
}

// UpdateExercise replaces the exercise with the same ID. The replacement
// must keep the plan's week count; week structure only changes through the
// week operations.
func (p *Plan) UpdateExercise(ex Exercise) error {
	i := p.indexOf(ex.ID)
	if i < 0 {
		return ErrExerciseNotFound
	}
	if len(ex.WeekDetails) != p.WeekCount() {
		return fmt.Errorf("%w: got %d weeks, want %d", ErrWeekCountChanged, len(ex.WeekDetails), p.WeekCount())
	}
	p.Exercises[i] = ex.Clone()
	return nil
}

// AddWeek appends a blank week to every exercise.
func (p *Plan) AddWeek() {
	p.Weeks = p.WeekCount() + 1
	for i := range p.Exercises {
		p.Exercises[i].WeekDetails = append(p.Exercises[i].WeekDetails, WeekDetail{})
	}
}

func (p *Plan) checkWeek(week int) error {
	if n := p.WeekCount(); week < 0 || week >= n {
		return fmt.Errorf("%w: week %d of %d", ErrWeekOutOfRange, week+1, n)
	}
	return nil
}

// DeleteWeek removes week from every exercise.
func (p *Plan) DeleteWeek(week int) error {
	if err := p.checkWeek(week); err != nil {
		return err
	}
	p.Weeks = p.WeekCount() - 1
	for i := range p.Exercises {
		wd := p.Exercises[i].WeekDetails
		if week < len(wd) {
			p.Exercises[i].WeekDetails = append(wd[:week:week], wd[week+1:]...)
		}
	}
	return nil
}

// DuplicateWeek inserts a copy of week directly after it, for every exercise.
func (p *Plan) DuplicateWeek(week int) error {
	if err := p.checkWeek(week); err != nil {
		return err
	}
	p.Weeks = p.WeekCount() + 1
	for i := range p.Exercises {
		wd := p.Exercises[i].WeekDetails
		if week >= len(wd) {
			continue
		}
		out := make([]WeekDetail, 0, len(wd)+1)
		out = append(out, wd[:week+1]...)
		out = append(out, wd[week])
		out = append(out, wd[week+1:]...)
		p.Exercises[i].WeekDetails = out
	}
	return nil
}

// FillDown copies the top exercise's value of field for week to every
// exercise. It reports false and changes nothing when that value is blank.
func (p *Plan) FillDown(week int, field WeekField) (bool, error) {
	if !field.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if err := p.checkWeek(week); err != nil {
		return false, err
	}
	if len(p.Exercises) == 0 {
		return false, nil
	}
	top := p.Exercises[0].WeekDetails[week].Get(field)
	if top.IsBlank() {
		return false, nil
	}
	for i := range p.Exercises {
		if week < len(p.Exercises[i].WeekDetails) {
			p.Exercises[i].WeekDetails[week] = p.Exercises[i].WeekDetails[week].Set(field, top)
		}
	}
	return true, nil
}

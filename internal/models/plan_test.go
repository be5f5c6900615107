package models

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func weeks(n int) []WeekDetail {
	return make([]WeekDetail, n)
}

func samplePlan() *Plan {
	p := NewPlan("test", 3)
	p.Exercises[0].Name = "Squat"
	p.Exercises[0].TrainingMax = "300"
	p.Exercises[0].WeekDetails[0] = WeekDetail{Pct: "65", Sets: "3", Reps: "5"}
	p.Exercises[0].WeekDetails[1] = WeekDetail{Pct: "75", Sets: "3", Reps: "3"}
	b := p.AddExercise()
	b.Name = "Bench Press"
	_ = p.UpdateExercise(b)
	c := p.AddExercise()
	c.Name = "Deadlift"
	_ = p.UpdateExercise(c)
	return p
}

func names(p *Plan) []string {
	var out []string
	for _, ex := range p.Exercises {
		out = append(out, ex.Name)
	}
	return out
}

// TestNewPlan verifies a fresh plan starts with one blank placeholder row
// and the default week count.
func TestNewPlan(t *testing.T) {
	p := NewPlan("", 0)
	if len(p.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(p.Exercises))
	}
	if p.WeekCount() != DefaultWeeks {
		t.Errorf("weeks = %d, want %d", p.WeekCount(), DefaultWeeks)
	}
	if p.Format != FormatVersion {
		t.Errorf("format = %d, want %d", p.Format, FormatVersion)
	}
	if p.Exercises[0].DisplayName() != UnnamedExercise {
		t.Errorf("display name = %q, want %q", p.Exercises[0].DisplayName(), UnnamedExercise)
	}
	if p.Exercises[0].Name != "" {
		t.Errorf("stored name = %q, want blank", p.Exercises[0].Name)
	}
}

// TestAddExerciseUsesPlanWeeks verifies new rows join with the plan's week count.
func TestAddExerciseUsesPlanWeeks(t *testing.T) {
	p := NewPlan("", 5)
	ex := p.AddExercise()
	if len(ex.WeekDetails) != 5 {
		t.Errorf("new exercise weeks = %d, want 5", len(ex.WeekDetails))
	}
	if ex.ID == p.Exercises[0].ID {
		t.Error("new exercise reused an existing ID")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestRemoveExercise verifies removal by ID and the not-found error.
func TestRemoveExercise(t *testing.T) {
	p := samplePlan()
	id := p.Exercises[1].ID
	if err := p.RemoveExercise(id); err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	if diff := cmp.Diff([]string{"Squat", "Deadlift"}, names(p)); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if err := p.RemoveExercise(id); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("second remove err = %v, want ErrExerciseNotFound", err)
	}
}

// TestMoveExercise verifies drag-reorder semantics in both directions.
func TestMoveExercise(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"down", 0, 2, []string{"Bench Press", "Deadlift", "Squat"}},
		{"up", 2, 0, []string{"Deadlift", "Squat", "Bench Press"}},
		{"same", 1, 1, []string{"Squat", "Bench Press", "Deadlift"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePlan()
			if err := p.MoveExercise(tt.from, tt.to); err != nil {
				t.Fatalf("MoveExercise: %v", err)
			}
			if diff := cmp.Diff(tt.want, names(p)); diff != "" {
				t.Errorf("order (-want +got):\n%s", diff)
			}
		})
	}

	p := samplePlan()
	if err := p.MoveExercise(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out of range move err = %v", err)
	}
}

// TestUpdateExerciseRejectsWeekChange verifies a row edit cannot break the
// shared week count.
func TestUpdateExerciseRejectsWeekChange(t *testing.T) {
	p := samplePlan()
	ex := p.Exercises[0]
	ex.WeekDetails = weeks(2)
	if err := p.UpdateExercise(ex); !errors.Is(err, ErrWeekCountChanged) {
		t.Errorf("err = %v, want ErrWeekCountChanged", err)
	}
}

// TestEmptyPlanKeepsWeeks verifies a plan emptied of exercises still
// remembers its week count, including week edits made while empty.
func TestEmptyPlanKeepsWeeks(t *testing.T) {
	p := NewPlan("", 2)
	if err := p.RemoveExercise(p.Exercises[0].ID); err != nil {
		t.Fatal(err)
	}
	if p.WeekCount() != 2 {
		t.Fatalf("weeks after emptying = %d, want 2", p.WeekCount())
	}

	p.AddWeek()
	p.AddWeek()
	if p.WeekCount() != 4 {
		t.Fatalf("weeks after two adds = %d, want 4", p.WeekCount())
	}
	if ok, err := p.FillDown(0, FieldPct); err != nil || ok {
		t.Errorf("FillDown on empty plan = %v, %v", ok, err)
	}

	ex := p.AddExercise()
	if len(ex.WeekDetails) != 4 {
		t.Errorf("new exercise weeks = %d, want 4", len(ex.WeekDetails))
	}
	if err := p.Validate(); err != nil || p.Weeks != 4 {
		t.Errorf("Validate = %v, Weeks = %d", err, p.Weeks)
	}

	if err := p.RemoveExercise(ex.ID); err != nil {
		t.Fatal(err)
	}
	if err := p.DeleteWeek(3); err != nil {
		t.Fatal(err)
	}
	if got := p.AddExercise(); len(got.WeekDetails) != 3 {
		t.Errorf("exercise after delete = %d weeks, want 3", len(got.WeekDetails))
	}
}

// TestWeekOperations verifies add, duplicate and delete apply to every
// exercise at once.
func TestWeekOperations(t *testing.T) {
	p := samplePlan()

	p.AddWeek()
	if p.WeekCount() != 4 {
		t.Fatalf("weeks after add = %d, want 4", p.WeekCount())
	}

	if err := p.DuplicateWeek(0); err != nil {
		t.Fatalf("DuplicateWeek: %v", err)
	}
	if p.WeekCount() != 5 {
		t.Fatalf("weeks after duplicate = %d, want 5", p.WeekCount())
	}
	sq := p.Exercises[0].WeekDetails
	if sq[1] != sq[0] {
		t.Errorf("duplicated week = %+v, want %+v", sq[1], sq[0])
	}
	if sq[2].Pct != "75" {
		t.Errorf("week after duplicate pct = %q, want 75", sq[2].Pct)
	}

	if err := p.DeleteWeek(1); err != nil {
		t.Fatalf("DeleteWeek: %v", err)
	}
	if p.WeekCount() != 4 {
		t.Fatalf("weeks after delete = %d, want 4", p.WeekCount())
	}
	if p.Exercises[0].WeekDetails[1].Pct != "75" {
		t.Errorf("week 2 pct = %q, want 75", p.Exercises[0].WeekDetails[1].Pct)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if err := p.DeleteWeek(4); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("delete past end err = %v", err)
	}
	if err := p.DuplicateWeek(-1); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("duplicate negative err = %v", err)
	}
}

// TestDeleteWeekDoesNotAlias verifies deleting a week does not rewrite a
// snapshot taken beforehand.
func TestDeleteWeekDoesNotAlias(t *testing.T) {
	p := samplePlan()
	snap := p.Snapshot()
	if err := p.DeleteWeek(0); err != nil {
		t.Fatal(err)
	}
	if snap[0].WeekDetails[0].Pct != "65" {
		t.Errorf("snapshot week 1 pct = %q, want 65", snap[0].WeekDetails[0].Pct)
	}
}

// TestFillDown verifies the top row's value is copied down and that a blank
// top value is a no-op.
func TestFillDown(t *testing.T) {
	p := samplePlan()
	changed, err := p.FillDown(0, FieldPct)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("expected change")
	}
	for i, ex := range p.Exercises {
		if ex.WeekDetails[0].Pct != "65" {
			t.Errorf("exercise %d week 1 pct = %q, want 65", i, ex.WeekDetails[0].Pct)
		}
	}

	changed, err = p.FillDown(2, FieldReps)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("blank top value should not fill down")
	}

	if _, err := p.FillDown(0, "weight"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown field err = %v", err)
	}
	if _, err := p.FillDown(9, FieldPct); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("week out of range err = %v", err)
	}
}

// TestCheckWeeks verifies mismatched rows are reported against the first
// exercise's week count.
func TestCheckWeeks(t *testing.T) {
	exs := []Exercise{
		{Name: "A", WeekDetails: weeks(3)},
		{Name: "B", WeekDetails: weeks(2)},
		{Name: "", WeekDetails: weeks(4)},
	}
	got := CheckWeeks(exs)
	if len(got) != 2 {
		t.Fatalf("warnings = %d, want 2", len(got))
	}
	if got[0].Exercise != 1 || got[1].Exercise != 2 {
		t.Errorf("warned exercises = %d, %d", got[0].Exercise, got[1].Exercise)
	}
	if got[1].Message != "Unnamed has 4 weeks, plan has 3" {
		t.Errorf("message = %q", got[1].Message)
	}
	if WeekCount(nil) != 0 {
		t.Error("WeekCount(nil) != 0")
	}
}

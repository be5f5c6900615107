package plan

import (
	"fmt"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/uuid"
)

// OutlineCell is one exercise/week entry of the printable outline.
// Missing is set when the exercise has no entry for a week the plan header
// shows; the cell is then blank.
type OutlineCell struct {
	Pct          models.Number  `json:"pct"`
	TargetWeight float64        `json:"targetWeight"`
	Sets         models.Number  `json:"sets"`
	Reps         models.Number  `json:"reps"`
	Plates       PlateBreakdown `json:"plates"`
	PlatesText   string         `json:"platesText"`
	Missing      bool           `json:"missing,omitempty"`
}

// Lines renders the cell the way the printed outline shows it.
func (c OutlineCell) Lines() []string {
	if c.Missing {
		return nil
	}
	return []string{
		fmt.Sprintf("%s%%", c.Pct),
		fmt.Sprintf("Weight: %s", formatWeight(c.TargetWeight)),
		fmt.Sprintf("Sets: %s", c.Sets),
		fmt.Sprintf("Reps: %s", c.Reps),
		fmt.Sprintf("Plates: %s", c.PlatesText),
	}
}

// OutlineRow is one exercise of the outline.
type OutlineRow struct {
	ExerciseID  uuid.UUID     `json:"exerciseId"`
	Name        string        `json:"name"`
	TrainingMax models.Number `json:"trainingMax"`
	Cells       []OutlineCell `json:"cells"`
}

// Outline is the exercise × week grid handed to a rendering surface.
type Outline struct {
	Weeks    int              `json:"weeks"`
	Rows     []OutlineRow     `json:"rows"`
	Warnings []models.Warning `json:"warnings"`
}

// Headers returns the column labels: Exercise, Training Max, Week 1..N.
func (o Outline) Headers() []string {
	h := make([]string, 0, 2+o.Weeks)
	h = append(h, "Exercise", "Training Max")
	for i := 0; i < o.Weeks; i++ {
		h = append(h, fmt.Sprintf("Week %d", i+1))
	}
	return h
}

// Outline projects exercises into outline rows. The first exercise's week
// count sets the columns; rows with fewer weeks get blank cells and rows
// with more are cut, both with a warning.
func (l Loadout) Outline(exercises []models.Exercise) Outline {
	o := Outline{
		Weeks:    models.WeekCount(exercises),
		Rows:     make([]OutlineRow, 0, len(exercises)),
		Warnings: models.CheckWeeks(exercises),
	}

	for i, ex := range exercises {
		row := OutlineRow{
			ExerciseID:  ex.ID,
			Name:        ex.DisplayName(),
			TrainingMax: ex.TrainingMax,
			Cells:       make([]OutlineCell, o.Weeks),
		}
		tm := ex.TrainingMax.Float()
		for w := 0; w < o.Weeks; w++ {
			detail, ok := ex.Week(w)
			if !ok {
				row.Cells[w] = OutlineCell{Missing: true}
				continue
			}
			week := l.Week(tm, detail.Pct.Float())
			row.Cells[w] = OutlineCell{
				Pct:          detail.Pct,
				TargetWeight: week.TargetWeight,
				Sets:         detail.Sets,
				Reps:         detail.Reps,
				Plates:       week.Plates,
				PlatesText:   week.Plates.String(),
			}
			if !week.Plates.Exact() {
				o.Warnings = append(o.Warnings, models.Warning{
					Kind:     models.WarnUnrepresentablePlates,
					Exercise: i,
					Week:     w,
					Message:  fmt.Sprintf("%s week %d: %s", row.Name, w+1, week.Plates.shortfall()),
				})
			}
		}
		o.Rows = append(o.Rows, row)
	}
	if o.Warnings == nil {
		o.Warnings = []models.Warning{}
	}
	return o
}

// BuildOutline projects exercises using StandardLoadout.
func BuildOutline(exercises []models.Exercise) Outline {
	return StandardLoadout.Outline(exercises)
}

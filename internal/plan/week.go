// Package plan computes target weights and plate loading for a workout plan
// and projects an exercise list into printable outline rows.
package plan

import (
	"math"

	"github.com/claude/liftplan/internal/models"
)

// Week is the computed target for one exercise in one week.
type Week struct {
	TargetWeight float64        `json:"targetWeight"`
	Plates       PlateBreakdown `json:"plates"`
}

// RoundToNearest5 rounds w to the nearest multiple of 5, halves away from
// zero. NaN and Inf round to 0.
func RoundToNearest5(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	r := math.Round(w/5) * 5
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// TargetWeight returns trainingMax*pct/100 rounded to the nearest 5.
func TargetWeight(trainingMax, pct float64) float64 {
	return RoundToNearest5(finite(trainingMax) * finite(pct) / 100)
}

// Week computes the target weight and plate breakdown for one week.
func (l Loadout) Week(trainingMax, pct float64) Week {
	w := TargetWeight(trainingMax, pct)
	return Week{TargetWeight: w, Plates: l.Breakdown(w)}
}

// Warnings reports a target the plates cannot load exactly. The result is
// empty, never nil, for a loadable target.
func (w Week) Warnings() []models.Warning {
	if w.Plates.Exact() {
		return []models.Warning{}
	}
	return []models.Warning{{
		Kind:    models.WarnUnrepresentablePlates,
		Week:    -1,
		Message: w.Plates.shortfall(),
	}}
}

// ComputeWeek computes a week against StandardLoadout.
func ComputeWeek(trainingMax, pct float64) Week {
	return StandardLoadout.Week(trainingMax, pct)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

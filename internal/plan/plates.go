package plan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxTarget is the heaviest target that gets a plate breakdown. Heavier
// targets are reported out of range with no plates.
const MaxTarget = 1e7

// compactCount is the per-denomination count above which String switches
// from listing plates to "45 x N".
const compactCount = 10

// Loadout is a bar and the plate denominations available to load it.
type Loadout struct {
	Bar    float64   `json:"bar" yaml:"bar"`
	Plates []float64 `json:"plates" yaml:"plates"`
}

// StandardLoadout is a 45 lb bar with the usual gym plate set. Greedy
// allocation over this set always yields the fewest plates.
var StandardLoadout = Loadout{
	Bar:    45,
	Plates: []float64{45, 25, 10, 5, 2.5},
}

// Validate checks the bar is non-negative and the plates are positive,
// strictly descending and expressible in hundredths.
func (l Loadout) Validate() error {
	if l.Bar < 0 || math.IsNaN(l.Bar) || math.IsInf(l.Bar, 0) {
		return fmt.Errorf("bar weight must be a non-negative number, got %v", l.Bar)
	}
	if l.Bar > MaxTarget {
		return fmt.Errorf("bar weight %v exceeds %v", l.Bar, MaxTarget)
	}
	if len(l.Plates) == 0 {
		return errors.New("at least one plate denomination is required")
	}
	for i, p := range l.Plates {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("plate %v must be positive", p)
		}
		if p > MaxTarget {
			return fmt.Errorf("plate %v exceeds %v", p, MaxTarget)
		}
		if math.Abs(p*100-math.Round(p*100)) > 1e-9 {
			return fmt.Errorf("plate %v is finer than 0.01", p)
		}
		if i > 0 && p >= l.Plates[i-1] {
			return fmt.Errorf("plates must be strictly descending: %v after %v", p, l.Plates[i-1])
		}
	}
	return nil
}

// PlateCount is how many plates of one denomination go on each side.
type PlateCount struct {
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
}

// PlateBreakdown is the per-side plate selection for a target weight.
// Remainder is the per-side weight the plate set could not represent;
// it is zero whenever the target is loadable exactly. OutOfRange marks a
// target above MaxTarget, left unloaded with the whole side as Remainder.
type PlateBreakdown struct {
	Bar           float64      `json:"bar"`
	Target        float64      `json:"target"`
	PerSideTarget float64      `json:"perSideTarget"`
	Plates        []PlateCount `json:"plates"`
	Remainder     float64      `json:"remainder"`
	OutOfRange    bool         `json:"outOfRange,omitempty"`
}

// Exact reports whether the plates load the target exactly.
func (b PlateBreakdown) Exact() bool {
	return !b.OutOfRange && b.Remainder == 0
}

// shortfall describes why the target cannot be loaded exactly.
func (b PlateBreakdown) shortfall() string {
	if b.OutOfRange {
		return fmt.Sprintf("%s is beyond the %s loading limit", formatWeight(b.Target), formatWeight(MaxTarget))
	}
	return fmt.Sprintf("%s cannot be loaded exactly, %s short per side", formatWeight(b.Target), formatWeight(b.Remainder))
}

// PerSide returns the weight loaded on one side of the bar.
func (b PlateBreakdown) PerSide() float64 {
	var cents int64
	for _, p := range b.Plates {
		cents += toCents(p.Weight) * int64(p.Count)
	}
	return fromCents(cents)
}

// Total returns bar plus both sides. For targets lighter than the bar this
// is the bar alone.
func (b PlateBreakdown) Total() float64 {
	return fromCents(toCents(b.Bar) + 2*toCents(b.PerSide()))
}

// Count returns the number of plates on one side.
func (b PlateBreakdown) Count() int {
	n := 0
	for _, p := range b.Plates {
		n += p.Count
	}
	return n
}

// Flat lists every plate on one side, heaviest first.
func (b PlateBreakdown) Flat() []float64 {
	out := make([]float64, 0, b.Count())
	for _, p := range b.Plates {
		for i := 0; i < p.Count; i++ {
			out = append(out, p.Weight)
		}
	}
	return out
}

// String renders the side as "45, 25, 2.5"; an empty bar renders as "".
// A denomination used more than a handful of times renders as "45 x 30".
func (b PlateBreakdown) String() string {
	var parts []string
	for _, p := range b.Plates {
		w := formatWeight(p.Weight)
		if p.Count > compactCount {
			parts = append(parts, w+" x "+strconv.Itoa(p.Count))
			continue
		}
		for i := 0; i < p.Count; i++ {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, ", ")
}

// Breakdown splits target across both sides of the bar, greedily from the
// heaviest denomination. Targets at or below the bar need no plates.
func (l Loadout) Breakdown(target float64) PlateBreakdown {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		target = 0
	}
	b := PlateBreakdown{Bar: l.Bar, Target: target, Plates: []PlateCount{}}

	if target > MaxTarget {
		b.OutOfRange = true
		b.PerSideTarget = (target - l.Bar) / 2
		b.Remainder = b.PerSideTarget
		return b
	}

	loadable := toCents(target) - toCents(l.Bar)
	if loadable <= 0 {
		return b
	}
	// An odd hundredth splits into half a hundredth per side that no plate
	// can carry; it stays in the remainder.
	remaining, odd := loadable/2, loadable%2
	b.PerSideTarget = float64(loadable) / 200

	for _, plate := range l.Plates {
		pc := toCents(plate)
		if n := remaining / pc; n > 0 {
			b.Plates = append(b.Plates, PlateCount{Weight: plate, Count: int(n)})
			remaining -= n * pc
		}
	}
	b.Remainder = float64(2*remaining+odd) / 200
	return b
}

// ComputePlates splits target using StandardLoadout.
func ComputePlates(target float64) PlateBreakdown {
	return StandardLoadout.Breakdown(target)
}

func toCents(w float64) int64 {
	return int64(math.Round(w * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

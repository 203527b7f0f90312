// Package rewards holds the pure scoring rules: points and XP for a finished
// round, and the running-average update used for per-player stats. Nothing in
// here touches storage or session state.
package rewards

import "math"

const (
	BasePoints = 300
	MinPoints  = 10
	BaseXPWin  = 20
	BaseXPLose = 5
)

// Bonus is one threshold entry of a bonus table.
type Bonus struct {
	Limit float64
	XP    int
}

// Bonus tables are kept in ascending threshold order; only the first matching
// entry applies.
var (
	TimeBonuses = []Bonus{
		{Limit: 30, XP: 15},
		{Limit: 60, XP: 10},
		{Limit: 120, XP: 5},
	}
	ClickBonuses = []Bonus{
		{Limit: 3, XP: 20},
		{Limit: 5, XP: 10},
		{Limit: 10, XP: 5},
	}
)

// Points converts a winning run into points. Slower runs and more clicks both
// scale the award down; the result never drops below MinPoints.
func Points(elapsedSeconds float64, clicks int) int {
	timeFactor := math.Max(1, elapsedSeconds/100)
	clickFactor := math.Max(1, float64(clicks)/3)
	raw := (BasePoints / timeFactor / clickFactor) * 7
	pts := int(math.Round(raw))
	if pts < MinPoints {
		return MinPoints
	}
	return pts
}

// XPGain computes the XP for a round. At most one time bonus and one click
// bonus apply, each taken from the first matching threshold.
func XPGain(elapsedSeconds float64, clicks int, win bool) int {
	xp := BaseXPLose
	if win {
		xp = BaseXPWin
	}
	for _, b := range TimeBonuses {
		if elapsedSeconds < b.Limit {
			xp += b.XP
			break
		}
	}
	for _, b := range ClickBonuses {
		if float64(clicks) <= b.Limit {
			xp += b.XP
			break
		}
	}
	return xp
}

// Average folds a new sample into a running average. count is the number of
// samples including this one: callers increment their counter first, then
// call Average with the updated count.
func Average(newValue float64, count int, prevAverage float64) float64 {
	if count == 0 {
		return newValue
	}
	avg := (prevAverage*float64(count-1) + newValue) / float64(count)
	return math.Round(avg*100) / 100
}

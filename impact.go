package main

import "math"

// computeImpactPercentage returns the share of the daily target one meal
// represents, as a whole percentage in [0, 100]. A zero target is the
// degenerate case and yields 0.
func computeImpactPercentage(mealCalories, dailyTarget int) int {
	if dailyTarget <= 0 {
		return 0
	}
	pct := int(math.Round(float64(mealCalories) / float64(dailyTarget) * 100))
	return min(max(pct, 0), 100)
}

// computeProgressRatio returns the fill level of the daily progress bar in
// [0.0, 1.0]. A zero target yields 0.
func computeProgressRatio(mealCalories, dailyTarget int) float64 {
	if dailyTarget <= 0 {
		return 0
	}
	ratio := float64(mealCalories) / float64(dailyTarget)
	return min(max(ratio, 0), 1.0)
}

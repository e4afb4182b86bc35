package main

import (
	"fmt"
)

// activityMultipliers holds the TDEE multiplier for each activity tier,
// indexed by ActivityLevel (sedentary, light, moderate, active).
var activityMultipliers = [...]float64{1.20, 1.375, 1.55, 1.725}

// goalOffsets holds the calorie adjustment applied to TDEE for each Goal
// (maintain, lose, gain).
var goalOffsets = [...]float64{0, -500, 400}

// genderCount is the number of BMR formulas: index 0 is the reference-male
// constant, index 1 the reference-female constant.
const genderCount = 2

// computeDailyTarget computes the daily calorie target from biometric
// inputs: Mifflin-St Jeor BMR, scaled by the activity multiplier, shifted by
// the goal offset, truncated toward zero.
//
// Every index is checked before any arithmetic; an out-of-range index returns
// ErrIndexOutOfRange and no value. Weight is in kg, height in cm.
func computeDailyTarget(genderIndex, age int, weight, height float64, activityIndex, goalIndex int) (int, error) {
	if genderIndex < 0 || genderIndex >= genderCount {
		return 0, fmt.Errorf("%w: gender index %d", ErrIndexOutOfRange, genderIndex)
	}
	if activityIndex < 0 || activityIndex >= len(activityMultipliers) {
		return 0, fmt.Errorf("%w: activity index %d", ErrIndexOutOfRange, activityIndex)
	}
	if goalIndex < 0 || goalIndex >= len(goalOffsets) {
		return 0, fmt.Errorf("%w: goal index %d", ErrIndexOutOfRange, goalIndex)
	}

	// The explicit float64 conversions round each product on its own so the
	// compiler cannot fuse them into FMA instructions (arm64, ppc64), which
	// would move results like 1642.5*1.2 off the whole number.
	bmr := float64(10*weight) + float64(6.25*height) - float64(5*float64(age))
	if genderIndex == 0 {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := float64(bmr * activityMultipliers[activityIndex])
	target := tdee + goalOffsets[goalIndex]

	// int() truncates toward zero. A daily target is never negative.
	if t := int(target); t > 0 {
		return t, nil
	}
	return 0, nil
}

// dailyTarget runs computeDailyTarget on a profile whose selections have
// already been resolved to enum values.
func (p resolvedProfile) dailyTarget() (int, error) {
	return computeDailyTarget(int(p.Gender), p.Age, p.WeightKG, p.HeightCM, int(p.Activity), int(p.Goal))
}

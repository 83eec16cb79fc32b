package domain

// Activity multipliers applied to the basal metabolic rate.
var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// Daily kcal adjustments per goal.
var goalAdjustments = map[Goal]float64{
	GoalExtremeWeightLoss: -1000,
	GoalWeightLoss:        -500,
	GoalMildWeightLoss:    -250,
	GoalMaintenance:       0,
	GoalMuscleGain:        400,
}

const minCalorieTarget = 1200

// CalorieTarget computes the recommended daily intake from the profile
// using the Mifflin-St Jeor equation. Returns 0 when height, weight or age
// is missing; unknown activity levels fall back to sedentary.
func CalorieTarget(u User) float64 {
	if u.HeightCm <= 0 || u.WeightKg <= 0 || u.Age <= 0 {
		return 0
	}

	bmr := 10*u.WeightKg + 6.25*u.HeightCm - 5*float64(u.Age)
	switch u.Gender {
	case GenderMale:
		bmr += 5
	case GenderFemale:
		bmr -= 161
	default:
		bmr -= 78
	}

	factor, ok := activityFactors[u.ActivityLevel]
	if !ok {
		factor = activityFactors[ActivitySedentary]
	}

	target := bmr*factor + goalAdjustments[u.Goal]
	if target < minCalorieTarget {
		target = minCalorieTarget
	}
	return target
}

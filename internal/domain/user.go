// Package domain contains the core business entities and interfaces.
package domain

// Gender is the user's self-reported gender, used by the calorie formula.
type Gender string

// Gender values recognised by the calorie formula.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Goal is the user's nutrition goal.
type Goal string

// Goal values.
const (
	GoalExtremeWeightLoss Goal = "extreme_weight_loss"
	GoalWeightLoss        Goal = "weight_loss"
	GoalMildWeightLoss    Goal = "mild_weight_loss"
	GoalMaintenance       Goal = "maintenance"
	GoalMuscleGain        Goal = "muscle_gain"
)

// ActivityLevel is the user's habitual activity level.
type ActivityLevel string

// ActivityLevel values, least to most active.
const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// User is the authenticated identity plus its profile document.
// The session manager owns the canonical value; everyone else gets copies.
type User struct {
	ID            string        `json:"id"`
	Email         string        `json:"email"`
	Name          string        `json:"name,omitempty"`
	Age           int           `json:"age,omitempty"`
	HeightCm      float64       `json:"height,omitempty"`
	WeightKg      float64       `json:"weight,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	Goal          Goal          `json:"goal,omitempty"`
	ActivityLevel ActivityLevel `json:"activityLevel,omitempty"`
	CalorieTarget float64       `json:"calorieTarget,omitempty"`
	Image         string        `json:"image,omitempty"`
}

// Identity is what the auth source knows about a signed-in user.
type Identity struct {
	ID    string
	Email string
}

// GoalText returns a human-readable label for a goal.
func GoalText(g Goal) string {
	switch g {
	case GoalExtremeWeightLoss:
		return "Extreme weight loss"
	case GoalWeightLoss:
		return "Weight loss"
	case GoalMildWeightLoss:
		return "Mild weight loss"
	case GoalMaintenance:
		return "Maintenance"
	case GoalMuscleGain:
		return "Muscle gain"
	}
	return string(g)
}

// ActivityLevelText returns a human-readable label for an activity level.
func ActivityLevelText(a ActivityLevel) string {
	switch a {
	case ActivitySedentary:
		return "Sedentary (little or no exercise)"
	case ActivityLight:
		return "Light (1-3 days/week)"
	case ActivityModerate:
		return "Moderate (3-5 days/week)"
	case ActivityActive:
		return "Active (6-7 days/week)"
	case ActivityVeryActive:
		return "Very active (hard exercise daily)"
	}
	return string(a)
}

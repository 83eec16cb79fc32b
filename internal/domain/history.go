package domain

// DayFormat is the ISO calendar-date layout used as the history key.
const DayFormat = "2006-01-02"

// CalorieDay is one calendar day's calorie aggregate. At most one record
// exists per date per user; TotalCalories only grows within a day.
type CalorieDay struct {
	Date          string  `json:"date"`
	TotalCalories float64 `json:"totalCalories"`
}

// WaterEntry is a single water-intake history entry. Amount is nil for
// free-text entries, which stay in history but never chart.
type WaterEntry struct {
	Date   string   `json:"date"`
	Amount *float64 `json:"amount,omitempty"`
	Note   string   `json:"note,omitempty"`
}

// WeightMark is one marked calendar day. Weight is kept as text because the
// calendar stores whatever the user typed.
type WeightMark struct {
	Weight string `json:"weight,omitempty"`
	Note   string `json:"note,omitempty"`
}

// SeriesPoint is one (date, value) point of a chart series.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

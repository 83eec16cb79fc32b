package app

import (
	"context"
	"errors"
	"time"

	"nutrigo/internal/domain"
)

// CalorieService encapsulates intraday calorie tracking.
type CalorieService struct {
	hist *HistoryStore
	loc  *time.Location
}

// NewCalorieService creates a CalorieService resolving days in loc.
func NewCalorieService(hist *HistoryStore, loc *time.Location) *CalorieService {
	if loc == nil {
		loc = time.Local
	}
	return &CalorieService{hist: hist, loc: loc}
}

// AddCalories accumulates kcal into today's aggregate, creating the record
// lazily on first write. Returns the new total for the day.
func (s *CalorieService) AddCalories(ctx context.Context, userID string, kcal float64, now time.Time) (float64, error) {
	if kcal <= 0 || kcal > 10000 {
		return 0, errors.New("kcal must be within (0, 10000]")
	}

	today := now.In(s.loc).Format(domain.DayFormat)
	days, err := s.hist.LoadCalories(ctx, userID)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range days {
		if days[i].Date == today {
			idx = i
			break
		}
	}
	if idx == -1 {
		days = append(days, domain.CalorieDay{Date: today})
		idx = len(days) - 1
	}
	days[idx].TotalCalories += kcal

	if err := s.hist.SaveCalories(ctx, userID, days); err != nil {
		return 0, err
	}
	return days[idx].TotalCalories, nil
}

// TodayTotal returns the accumulated total for now's local date, 0 when no
// record exists yet.
func (s *CalorieService) TodayTotal(ctx context.Context, userID string, now time.Time) (float64, error) {
	today := now.In(s.loc).Format(domain.DayFormat)
	days, err := s.hist.LoadCalories(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, d := range days {
		if d.Date == today {
			return d.TotalCalories, nil
		}
	}
	return 0, nil
}

package app

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"nutrigo/internal/domain"
)

// SeriesService turns raw per-day histories into ordered chart series.
// All three series are pure projections of the current history snapshot,
// recomputed on every call and never cached.
type SeriesService struct {
	hist *HistoryStore
}

// NewSeriesService creates a SeriesService reading from hist.
func NewSeriesService(hist *HistoryStore) *SeriesService {
	return &SeriesService{hist: hist}
}

// CaloriesSeries returns one point per date in the calorie history.
func (s *SeriesService) CaloriesSeries(ctx context.Context, userID string) ([]domain.SeriesPoint, error) {
	days, err := s.hist.LoadCalories(ctx, userID)
	if err != nil {
		return nil, err
	}
	points := make([]domain.SeriesPoint, 0, len(days))
	for _, d := range days {
		points = append(points, domain.SeriesPoint{Date: d.Date, Value: d.TotalCalories})
	}
	sortByParsedDate(points)
	return points, nil
}

// WaterSeries returns one point per history entry with a defined amount.
// Free-text entries stay in history but are excluded here.
func (s *SeriesService) WaterSeries(ctx context.Context, userID string) ([]domain.SeriesPoint, error) {
	entries, err := s.hist.LoadWater(ctx, userID)
	if err != nil {
		return nil, err
	}
	points := make([]domain.SeriesPoint, 0, len(entries))
	for _, e := range entries {
		if e.Amount == nil {
			continue
		}
		points = append(points, domain.SeriesPoint{Date: e.Date, Value: *e.Amount})
	}
	return points, nil
}

// WeightSeries returns the marked-dates weights sorted ascending by parsed
// calendar date. A mark contributes a point only when its weight parses as a
// finite number and its date parses at all; everything else drops silently.
func (s *SeriesService) WeightSeries(ctx context.Context, userID string) ([]domain.SeriesPoint, error) {
	marks, err := s.hist.LoadWeightMarks(ctx, userID)
	if err != nil {
		return nil, err
	}
	points := make([]domain.SeriesPoint, 0, len(marks))
	for date, mark := range marks {
		if mark.Weight == "" {
			continue
		}
		v, err := strconv.ParseFloat(mark.Weight, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if _, err := time.Parse(domain.DayFormat, date); err != nil {
			continue
		}
		points = append(points, domain.SeriesPoint{Date: date, Value: v})
	}
	sortByParsedDate(points)
	return points, nil
}

// DailyCalorieTarget returns the user's stored target if present, otherwise
// the computed recommendation.
func (s *SeriesService) DailyCalorieTarget(u domain.User) float64 {
	if u.CalorieTarget > 0 {
		return u.CalorieTarget
	}
	return domain.CalorieTarget(u)
}

// sortByParsedDate orders points by calendar date, not storage order.
// Unparseable dates sort to the front but callers filter those beforehand.
func sortByParsedDate(points []domain.SeriesPoint) {
	sort.Slice(points, func(i, j int) bool {
		ti, _ := time.Parse(domain.DayFormat, points[i].Date)
		tj, _ := time.Parse(domain.DayFormat, points[j].Date)
		return ti.Before(tj)
	})
}

package app_test

import (
	"context"
	"testing"

	"nutrigo/internal/app"
	"nutrigo/internal/domain"

	"github.com/rs/zerolog"
)

func newSeries(cache *mockCache) *app.SeriesService {
	return app.NewSeriesService(app.NewHistoryStore(cache, zerolog.Nop()))
}

func TestWaterSeries_ExcludesEntriesWithoutAmount(t *testing.T) {
	cache := newMockCache()
	cache.put("waterIntake_u1", `[{"date":"2024-01-01","amount":500},{"date":"2024-01-02","note":"felt sick"}]`)

	points, err := newSeries(cache).WaterSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("water series: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected exactly one point, got %d", len(points))
	}
	if points[0].Date != "2024-01-01" || points[0].Value != 500 {
		t.Fatalf("expected (2024-01-01, 500), got %+v", points[0])
	}
}

func TestWeightSeries_DropsMalformedSortsAscending(t *testing.T) {
	cache := newMockCache()
	cache.put("markedDates_u1", `{"2024-02-01":{"weight":"70.5"},"2024-02-03":{"weight":"abc"}}`)

	points, err := newSeries(cache).WeightSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("weight series: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected exactly one valid point, got %+v", points)
	}
	if points[0].Date != "2024-02-01" || points[0].Value != 70.5 {
		t.Fatalf("expected (2024-02-01, 70.5), got %+v", points[0])
	}
}

func TestWeightSeries_SortsByParsedDateNotStorageOrder(t *testing.T) {
	cache := newMockCache()
	cache.put("markedDates_u1", `{"2024-02-10":{"weight":"71"},"2024-01-05":{"weight":"73"},"2024-02-01":{"weight":"72"}}`)

	points, err := newSeries(cache).WeightSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("weight series: %v", err)
	}
	want := []string{"2024-01-05", "2024-02-01", "2024-02-10"}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, d := range want {
		if points[i].Date != d {
			t.Fatalf("expected ascending dates %v, got %+v", want, points)
		}
	}
}

func TestWeightSeries_DropsUnparseableDates(t *testing.T) {
	cache := newMockCache()
	cache.put("markedDates_u1", `{"not-a-date":{"weight":"70"},"2024-02-01":{"weight":"71"}}`)

	points, err := newSeries(cache).WeightSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("weight series: %v", err)
	}
	if len(points) != 1 || points[0].Date != "2024-02-01" {
		t.Fatalf("expected unparseable date dropped, got %+v", points)
	}
}

func TestCaloriesSeries_MalformedTotalsCountAsZero(t *testing.T) {
	cache := newMockCache()
	cache.put("dailyCalories_u1", `[{"date":"2024-01-02","totalCalories":1800},{"date":"2024-01-03","totalCalories":"oops"},{"date":"2024-01-01"}]`)

	points, err := newSeries(cache).CaloriesSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("calories series: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %+v", points)
	}
	if points[0].Date != "2024-01-01" || points[0].Value != 0 {
		t.Fatalf("absent total must read 0, got %+v", points[0])
	}
	if points[1].Value != 1800 {
		t.Fatalf("expected 1800, got %+v", points[1])
	}
	if points[2].Value != 0 {
		t.Fatalf("malformed total must read 0, got %+v", points[2])
	}
}

func TestSeries_EmptyHistories(t *testing.T) {
	cache := newMockCache()
	svc := newSeries(cache)

	if pts, err := svc.CaloriesSeries(context.Background(), "u1"); err != nil || len(pts) != 0 {
		t.Fatalf("empty calories: %v %v", pts, err)
	}
	if pts, err := svc.WaterSeries(context.Background(), "u1"); err != nil || len(pts) != 0 {
		t.Fatalf("empty water: %v %v", pts, err)
	}
	if pts, err := svc.WeightSeries(context.Background(), "u1"); err != nil || len(pts) != 0 {
		t.Fatalf("empty weight: %v %v", pts, err)
	}
}

func TestDailyCalorieTarget_PrefersStoredValue(t *testing.T) {
	svc := newSeries(newMockCache())

	stored := domain.User{CalorieTarget: 2100}
	if got := svc.DailyCalorieTarget(stored); got != 2100 {
		t.Fatalf("expected stored target, got %v", got)
	}

	computed := domain.User{
		HeightCm:      180,
		WeightKg:      80,
		Age:           30,
		Gender:        domain.GenderMale,
		ActivityLevel: domain.ActivityModerate,
		Goal:          domain.GoalMaintenance,
	}
	if got := svc.DailyCalorieTarget(computed); got <= 0 {
		t.Fatalf("expected computed target, got %v", got)
	}
}

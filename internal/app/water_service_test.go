package app_test

import (
	"context"
	"testing"
	"time"

	"nutrigo/internal/app"

	"github.com/rs/zerolog"
)

func newWater(cache *mockCache) *app.WaterService {
	return app.NewWaterService(app.NewHistoryStore(cache, zerolog.Nop()), time.UTC)
}

func TestAddIntake_Validation(t *testing.T) {
	svc := newWater(newMockCache())
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		amount float64
		note   string
	}{
		{"empty", 0, ""},
		{"negative", -100, ""},
		{"too large", 5001, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AddIntake(context.Background(), "u1", tc.amount, tc.note, now); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestAddIntake_RecordsAmount(t *testing.T) {
	cache := newMockCache()
	svc := newWater(cache)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	entry, err := svc.AddIntake(context.Background(), "u1", 500, "", now)
	if err != nil {
		t.Fatalf("add intake: %v", err)
	}
	if entry.Date != "2024-03-02" || entry.Amount == nil || *entry.Amount != 500 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestAddIntake_NoteOnlyEntryStaysOutOfSeries(t *testing.T) {
	cache := newMockCache()
	svc := newWater(cache)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	if _, err := svc.AddIntake(context.Background(), "u1", 0, "felt sick", now); err != nil {
		t.Fatalf("note entry: %v", err)
	}
	if _, err := svc.AddIntake(context.Background(), "u1", 250, "", now); err != nil {
		t.Fatalf("amount entry: %v", err)
	}

	points, err := newSeries(cache).WaterSeries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(points) != 1 || points[0].Value != 250 {
		t.Fatalf("note entry must stay in history but out of the series, got %+v", points)
	}

	hist := app.NewHistoryStore(cache, zerolog.Nop())
	entries, err := hist.LoadWater(context.Background(), "u1")
	if err != nil || len(entries) != 2 {
		t.Fatalf("both entries must remain in history, got %v %v", entries, err)
	}
}

func TestWaterTodayTotal_SumsOnlyToday(t *testing.T) {
	cache := newMockCache()
	cache.put("waterIntake_u1", `[{"date":"2024-03-01","amount":500},{"date":"2024-03-02","amount":300},{"date":"2024-03-02","note":"n"},{"date":"2024-03-02","amount":200}]`)
	svc := newWater(cache)

	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	total, err := svc.TodayTotal(context.Background(), "u1", now)
	if err != nil {
		t.Fatalf("today total: %v", err)
	}
	if total != 500 {
		t.Fatalf("expected 500, got %v", total)
	}
}

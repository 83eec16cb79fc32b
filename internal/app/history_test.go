package app_test

import (
	"context"
	"errors"
	"testing"

	"nutrigo/internal/app"
	"nutrigo/internal/domain"

	"github.com/rs/zerolog"
)

func TestHistory_MalformedJSONTreatedAsEmpty(t *testing.T) {
	cache := newMockCache()
	cache.put("dailyCalories_u1", `{not json`)
	cache.put("waterIntake_u1", `42`)
	cache.put("markedDates_u1", `[]`)

	hist := app.NewHistoryStore(cache, zerolog.Nop())

	if days, err := hist.LoadCalories(context.Background(), "u1"); err != nil || len(days) != 0 {
		t.Fatalf("malformed calories must read empty, got %v %v", days, err)
	}
	if entries, err := hist.LoadWater(context.Background(), "u1"); err != nil || len(entries) != 0 {
		t.Fatalf("malformed water must read empty, got %v %v", entries, err)
	}
	if marks, err := hist.LoadWeightMarks(context.Background(), "u1"); err != nil || len(marks) != 0 {
		t.Fatalf("malformed marks must read empty, got %v %v", marks, err)
	}
}

func TestHistory_TransientCacheErrorPropagates(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("disk unavailable")

	hist := app.NewHistoryStore(cache, zerolog.Nop())
	if _, err := hist.LoadCalories(context.Background(), "u1"); err == nil {
		t.Fatal("cache I/O failure must propagate, not read as empty")
	}
}

func TestHistory_RoundTrip(t *testing.T) {
	cache := newMockCache()
	hist := app.NewHistoryStore(cache, zerolog.Nop())
	ctx := context.Background()

	amount := 500.0
	if err := hist.SaveWater(ctx, "u1", []domain.WaterEntry{{Date: "2024-01-01", Amount: &amount}}); err != nil {
		t.Fatalf("save water: %v", err)
	}
	entries, err := hist.LoadWater(ctx, "u1")
	if err != nil || len(entries) != 1 || entries[0].Amount == nil || *entries[0].Amount != 500 {
		t.Fatalf("water round trip failed: %v %v", entries, err)
	}

	if err := hist.SaveWeightMarks(ctx, "u1", map[string]domain.WeightMark{"2024-01-01": {Weight: "70.5"}}); err != nil {
		t.Fatalf("save marks: %v", err)
	}
	marks, err := hist.LoadWeightMarks(ctx, "u1")
	if err != nil || marks["2024-01-01"].Weight != "70.5" {
		t.Fatalf("marks round trip failed: %v %v", marks, err)
	}
}

func TestHistory_KeysAreUserScoped(t *testing.T) {
	cache := newMockCache()
	hist := app.NewHistoryStore(cache, zerolog.Nop())
	ctx := context.Background()

	if err := hist.SaveCalories(ctx, "u1", []domain.CalorieDay{{Date: "2024-01-01", TotalCalories: 100}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if days, err := hist.LoadCalories(ctx, "u2"); err != nil || len(days) != 0 {
		t.Fatalf("u2 must not see u1's history, got %v %v", days, err)
	}
}

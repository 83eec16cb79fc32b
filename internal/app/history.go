package app

import (
	"context"
	"encoding/json"
	"fmt"

	"nutrigo/internal/domain"

	"github.com/rs/zerolog"
)

// HistoryStore reads and writes the per-user metric histories through the
// durable cache. Keys are user-and-stream scoped. Malformed stored JSON is
// treated as an empty history and logged, never returned as an error.
type HistoryStore struct {
	cache domain.Cache
	log   zerolog.Logger
}

// NewHistoryStore creates a HistoryStore backed by the given cache.
func NewHistoryStore(cache domain.Cache, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{cache: cache, log: log}
}

func caloriesKey(userID string) string { return "dailyCalories_" + userID }
func waterKey(userID string) string    { return "waterIntake_" + userID }
func weightKey(userID string) string   { return "markedDates_" + userID }

// LoadCalories returns the calorie history for the user. Entries that do not
// decode or carry no date are dropped; a totalCalories that does not decode
// counts as 0.
func (h *HistoryStore) LoadCalories(ctx context.Context, userID string) ([]domain.CalorieDay, error) {
	raw, ok, err := h.cache.Get(ctx, caloriesKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load calories history: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.log.Warn().Err(err).Str("user", userID).Msg("calorie history unreadable, starting empty")
		return nil, nil
	}

	days := make([]domain.CalorieDay, 0, len(entries))
	for _, e := range entries {
		var loose struct {
			Date          string          `json:"date"`
			TotalCalories json.RawMessage `json:"totalCalories"`
		}
		if err := json.Unmarshal(e, &loose); err != nil || loose.Date == "" {
			h.log.Warn().Str("user", userID).Msg("dropping malformed calorie entry")
			continue
		}
		day := domain.CalorieDay{Date: loose.Date}
		// Non-numeric totals count as zero rather than poisoning the stream.
		_ = json.Unmarshal(loose.TotalCalories, &day.TotalCalories)
		days = append(days, day)
	}
	return days, nil
}

// SaveCalories persists the calorie history for the user.
func (h *HistoryStore) SaveCalories(ctx context.Context, userID string, days []domain.CalorieDay) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode calories history: %w", err)
	}
	return h.cache.Set(ctx, caloriesKey(userID), string(raw))
}

// LoadWater returns the water-intake history for the user.
func (h *HistoryStore) LoadWater(ctx context.Context, userID string) ([]domain.WaterEntry, error) {
	raw, ok, err := h.cache.Get(ctx, waterKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load water history: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var entries []domain.WaterEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.log.Warn().Err(err).Str("user", userID).Msg("water history unreadable, starting empty")
		return nil, nil
	}
	return entries, nil
}

// SaveWater persists the water-intake history for the user.
func (h *HistoryStore) SaveWater(ctx context.Context, userID string, entries []domain.WaterEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode water history: %w", err)
	}
	return h.cache.Set(ctx, waterKey(userID), string(raw))
}

// LoadWeightMarks returns the marked-dates map for the user.
func (h *HistoryStore) LoadWeightMarks(ctx context.Context, userID string) (map[string]domain.WeightMark, error) {
	raw, ok, err := h.cache.Get(ctx, weightKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load weight marks: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var marks map[string]domain.WeightMark
	if err := json.Unmarshal([]byte(raw), &marks); err != nil {
		h.log.Warn().Err(err).Str("user", userID).Msg("weight marks unreadable, starting empty")
		return nil, nil
	}
	return marks, nil
}

// SaveWeightMarks persists the marked-dates map for the user.
func (h *HistoryStore) SaveWeightMarks(ctx context.Context, userID string, marks map[string]domain.WeightMark) error {
	raw, err := json.Marshal(marks)
	if err != nil {
		return fmt.Errorf("encode weight marks: %w", err)
	}
	return h.cache.Set(ctx, weightKey(userID), string(raw))
}

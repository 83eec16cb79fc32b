package app

import (
	"context"
	"errors"
	"time"

	"nutrigo/internal/domain"
)

// WaterService encapsulates water-intake tracking.
type WaterService struct {
	hist *HistoryStore
	loc  *time.Location
}

// NewWaterService creates a WaterService resolving days in loc.
func NewWaterService(hist *HistoryStore, loc *time.Location) *WaterService {
	if loc == nil {
		loc = time.Local
	}
	return &WaterService{hist: hist, loc: loc}
}

// AddIntake appends a water history entry for now's local date. amountMl of
// 0 records a free-text note (which never charts); otherwise the amount must
// be within (0, 5000].
func (s *WaterService) AddIntake(ctx context.Context, userID string, amountMl float64, note string, now time.Time) (domain.WaterEntry, error) {
	if amountMl == 0 && note == "" {
		return domain.WaterEntry{}, errors.New("either an amount or a note is required")
	}
	if amountMl < 0 || amountMl > 5000 {
		return domain.WaterEntry{}, errors.New("amount must be within (0, 5000] ml")
	}

	entry := domain.WaterEntry{
		Date: now.In(s.loc).Format(domain.DayFormat),
		Note: note,
	}
	if amountMl > 0 {
		amount := amountMl
		entry.Amount = &amount
	}

	entries, err := s.hist.LoadWater(ctx, userID)
	if err != nil {
		return domain.WaterEntry{}, err
	}
	entries = append(entries, entry)
	if err := s.hist.SaveWater(ctx, userID, entries); err != nil {
		return domain.WaterEntry{}, err
	}
	return entry, nil
}

// TodayTotal sums the charted amounts recorded for now's local date.
func (s *WaterService) TodayTotal(ctx context.Context, userID string, now time.Time) (float64, error) {
	today := now.In(s.loc).Format(domain.DayFormat)
	entries, err := s.hist.LoadWater(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		if e.Date == today && e.Amount != nil {
			total += *e.Amount
		}
	}
	return total, nil
}

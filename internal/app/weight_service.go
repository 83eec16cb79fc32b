package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"nutrigo/internal/domain"
)

// WeightService encapsulates the marked-dates weight log.
type WeightService struct {
	hist *HistoryStore
}

// NewWeightService creates a WeightService reading and writing through hist.
func NewWeightService(hist *HistoryStore) *WeightService {
	return &WeightService{hist: hist}
}

// MarkWeight records a weight for the given calendar date. The value is kept
// as text, the way the calendar stores it, but must parse as a positive
// number on the way in.
func (s *WeightService) MarkWeight(ctx context.Context, userID, date, weight, note string) error {
	if _, err := time.Parse(domain.DayFormat, date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	v, err := strconv.ParseFloat(weight, 64)
	if err != nil || v <= 0 {
		return errors.New("weight must be a positive number")
	}

	marks, err := s.hist.LoadWeightMarks(ctx, userID)
	if err != nil {
		return err
	}
	if marks == nil {
		marks = make(map[string]domain.WeightMark)
	}
	mark := marks[date]
	mark.Weight = weight
	if note != "" {
		mark.Note = note
	}
	marks[date] = mark
	return s.hist.SaveWeightMarks(ctx, userID, marks)
}

// Unmark removes the entry for the given calendar date, if any.
func (s *WeightService) Unmark(ctx context.Context, userID, date string) error {
	marks, err := s.hist.LoadWeightMarks(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := marks[date]; !ok {
		return nil
	}
	delete(marks, date)
	return s.hist.SaveWeightMarks(ctx, userID, marks)
}

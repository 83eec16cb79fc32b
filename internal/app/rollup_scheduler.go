package app

import (
	"context"
	"sync"
	"time"

	"nutrigo/internal/domain"

	"github.com/rs/zerolog"
)

// RollupScheduler guarantees that each user's "today" calorie aggregate
// resets exactly once per local calendar day, no matter when the process
// happens to be running. The midnight timer is an optimization; the
// activation check is the mechanism of record, because a suspended process
// never sees the timer fire.
type RollupScheduler struct {
	hist *HistoryStore
	loc  *time.Location
	log  zerolog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	userID string

	// memo of the last applied check, written only by ResetIfNeeded.
	memoUser string
	memoDay  string
}

// NewRollupScheduler creates a scheduler resolving day boundaries in loc.
func NewRollupScheduler(hist *HistoryStore, loc *time.Location, log zerolog.Logger) *RollupScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &RollupScheduler{hist: hist, loc: loc, log: log}
}

// Activate runs the rollover check for the user and (re)arms the midnight
// timer. Call it whenever the user becomes present or the app returns to the
// foreground; re-validating here is what compensates for timer fires missed
// while suspended.
func (s *RollupScheduler) Activate(ctx context.Context, userID string, now time.Time) error {
	if err := s.ResetIfNeeded(ctx, userID, now); err != nil {
		return err
	}
	s.armTimer(userID, now)
	return nil
}

// Stop cancels the pending midnight timer.
func (s *RollupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.userID = ""
}

// ResetIfNeeded appends a zero-valued aggregate for now's local date if the
// stored history has none. Prior dates are retained unchanged. Running it
// twice for the same date is a no-op after the first application.
func (s *RollupScheduler) ResetIfNeeded(ctx context.Context, userID string, now time.Time) error {
	today := now.In(s.loc).Format(domain.DayFormat)

	s.mu.Lock()
	if s.memoUser == userID && s.memoDay == today {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	days, err := s.hist.LoadCalories(ctx, userID)
	if err != nil {
		return err
	}

	applied := false
	if !hasDay(days, today) {
		days = append(days, domain.CalorieDay{Date: today})
		if err := s.hist.SaveCalories(ctx, userID, days); err != nil {
			return err
		}
		applied = true
	}

	s.mu.Lock()
	s.memoUser = userID
	s.memoDay = today
	s.mu.Unlock()

	if applied {
		s.log.Info().Str("user", userID).Str("day", today).Msg("daily calorie aggregate rolled over")
	}
	return nil
}

func hasDay(days []domain.CalorieDay, date string) bool {
	for _, d := range days {
		if d.Date == date {
			return true
		}
	}
	return false
}

// armTimer schedules a single-shot check for the next local midnight,
// replacing any pending timer. At most one timer is pending per session.
func (s *RollupScheduler) armTimer(userID string, now time.Time) {
	local := now.In(s.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, s.loc)
	delay := midnight.Sub(local)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.userID = userID
	s.timer = time.AfterFunc(delay, func() { s.onMidnight(userID) })
}

func (s *RollupScheduler) onMidnight(userID string) {
	s.mu.Lock()
	if s.userID != userID {
		// Session changed while the timer was pending.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	now := time.Now()
	if err := s.ResetIfNeeded(context.Background(), userID, now); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("midnight rollover failed, will retry on activation")
	}
	s.armTimer(userID, now)
}

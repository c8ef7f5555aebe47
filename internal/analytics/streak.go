package analytics

import (
	"fmt"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

const day = 24 * time.Hour

// CalendarDay strips the time of day, returning midnight UTC of the same date.
// All streak and bucketing math operates on these normalized days.
func CalendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AdvanceStreak applies one study event to the streak state machine and
// returns the new state. It is a pure transition over
// {current, longest, lastStudyDate} plus the event time; callers invoke it
// exactly once per qualifying event.
//
// Rules, on the event's calendar day vs the last recorded study day:
//   - no previous day: current=1, longest=max(longest,1)
//   - same day: unchanged (same-day activity never double-increments)
//   - next day: current+1, longest raised if surpassed
//   - gap of 2+ days, or an out-of-order earlier day: current resets to 1,
//     the resetting event itself counts as day 1; longest never decreases
func AdvanceStreak(s models.Streak, eventTime time.Time) (models.Streak, error) {
	today := CalendarDay(eventTime)

	if s.LastStudyDate == nil {
		s.Current = 1
		if s.Longest < 1 {
			s.Longest = 1
		}
		s.LastStudyDate = &today
		return s, checkStreak(s)
	}

	last := CalendarDay(*s.LastStudyDate)
	daysDiff := int(today.Sub(last) / day)

	switch {
	case daysDiff == 0:
		// Same calendar day: keep state, including the original date.
		return s, checkStreak(s)
	case daysDiff == 1:
		s.Current++
		if s.Current > s.Longest {
			s.Longest = s.Current
		}
	default:
		// Broken streak (gap or backdated event): the breaking event is
		// day 1 of a new streak.
		s.Current = 1
	}

	s.LastStudyDate = &today
	return s, checkStreak(s)
}

func checkStreak(s models.Streak) error {
	if s.Current < 0 || s.Longest < 0 || s.Current > s.Longest {
		return fmt.Errorf("%w: streak current=%d longest=%d", ErrStateInconsistency, s.Current, s.Longest)
	}
	return nil
}

package analytics

import (
	"math"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

const (
	// StudyTimeDays is how many trailing days the study-time chart covers
	StudyTimeDays = 7
	// TrendAttempts is how many recent attempts the performance trend covers
	TrendAttempts = 10
	// RecentActivityWindow is the trailing window for the activity counters
	RecentActivityWindow = 30 * day
	// RecentAttemptCount is how many attempts the dashboard lists
	RecentAttemptCount = 5
	// RecentSessionCount is how many study sessions the dashboard lists
	RecentSessionCount = 10
)

// DayBucket is one calendar day of aggregated study time
type DayBucket struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Minutes int    `json:"minutes"`
}

// TrendPoint is one quiz attempt on the performance trend chart
type TrendPoint struct {
	Attempt int       `json:"attempt"`
	Score   float64   `json:"score"`
	Date    time.Time `json:"date"`
}

// ActivityCounts counts events inside the trailing activity window
type ActivityCounts struct {
	QuizAttempts  int `json:"quiz_attempts"`
	StudySessions int `json:"study_sessions"`
}

// CatalogCounts carries entity totals supplied by the catalog services; the
// dashboard merges them into the overview without verifying them.
type CatalogCounts struct {
	TotalQuizzes    int `json:"total_quizzes"`
	TotalFlashcards int `json:"total_flashcards"`
	TotalTopics     int `json:"total_topics"`
	CompletedTopics int `json:"completed_topics"`
}

// Overview merges the aggregated totals and streak with catalog counts
type Overview struct {
	TotalStudyTime          int           `json:"total_study_time"`
	TotalQuizzesTaken       int           `json:"total_quizzes_taken"`
	TotalFlashcardsReviewed int           `json:"total_flashcards_reviewed"`
	AverageQuizScore        int           `json:"average_quiz_score"`
	Streak                  models.Streak `json:"streak"`
	CatalogCounts
}

// Charts groups the chart-ready series
type Charts struct {
	StudyTimeByDay   []DayBucket    `json:"study_time_by_day"`
	PerformanceTrend []TrendPoint   `json:"performance_trend"`
	RecentActivity   ActivityCounts `json:"recent_activity"`
}

// Dashboard is the composed, read-only view for presentation
type Dashboard struct {
	Overview            Overview              `json:"overview"`
	Charts              Charts                `json:"charts"`
	RecentQuizAttempts  []models.QuizAttempt  `json:"recent_quiz_attempts"`
	RecentStudySessions []models.StudySession `json:"recent_study_sessions"`
}

// StudyTimeByDay buckets session minutes into exactly nDays calendar days
// ending on now's day, oldest first. Days with no activity report zero.
// Each bucket covers the half-open interval [dayStart, dayStart+24h).
func StudyTimeByDay(sessions []models.StudySession, nDays int, now time.Time) []DayBucket {
	buckets := make([]DayBucket, 0, nDays)
	today := CalendarDay(now)

	for i := nDays - 1; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		minutes := 0
		for _, s := range sessions {
			d := s.Date.UTC()
			if !d.Before(dayStart) && d.Before(dayEnd) {
				minutes += s.DurationMinutes
			}
		}

		buckets = append(buckets, DayBucket{
			Date:    dayStart.Format("2006-01-02"),
			Day:     dayStart.Format("Mon"),
			Minutes: minutes,
		})
	}

	return buckets
}

// PerformanceTrend maps the last nRecent attempts, in recording order, to
// chart points with 1-based attempt indices.
func PerformanceTrend(attempts []models.QuizAttempt, nRecent int) []TrendPoint {
	if len(attempts) > nRecent {
		attempts = attempts[len(attempts)-nRecent:]
	}

	points := make([]TrendPoint, 0, len(attempts))
	for i, attempt := range attempts {
		points = append(points, TrendPoint{
			Attempt: i + 1,
			Score:   attempt.Percentage,
			Date:    attempt.CompletedAt,
		})
	}
	return points
}

// RecentActivity counts quiz attempts and study sessions whose timestamp falls
// within the trailing window of now.
func RecentActivity(rec *models.AnalyticsRecord, window time.Duration, now time.Time) ActivityCounts {
	cutoff := now.Add(-window)

	var counts ActivityCounts
	for _, attempt := range rec.QuizAttempts {
		if !attempt.CompletedAt.Before(cutoff) {
			counts.QuizAttempts++
		}
	}
	for _, session := range rec.StudySessions {
		if !session.Date.Before(cutoff) {
			counts.StudySessions++
		}
	}
	return counts
}

// AssembleDashboard composes the full read model. It never mutates the record
// and degrades to zero-filled buckets and empty slices on empty input.
func AssembleDashboard(rec *models.AnalyticsRecord, counts CatalogCounts, now time.Time) *Dashboard {
	return &Dashboard{
		Overview: Overview{
			TotalStudyTime:          rec.TotalStudyTimeMinutes,
			TotalQuizzesTaken:       rec.TotalQuizzesTaken,
			TotalFlashcardsReviewed: rec.TotalFlashcardsReviewed,
			AverageQuizScore:        int(math.Round(rec.AverageQuizScore)),
			Streak:                  rec.Streak,
			CatalogCounts:           counts,
		},
		Charts: Charts{
			StudyTimeByDay:   StudyTimeByDay(rec.StudySessions, StudyTimeDays, now),
			PerformanceTrend: PerformanceTrend(rec.QuizAttempts, TrendAttempts),
			RecentActivity:   RecentActivity(rec, RecentActivityWindow, now),
		},
		RecentQuizAttempts:  lastReversed(rec.QuizAttempts, RecentAttemptCount),
		RecentStudySessions: lastReversed(rec.StudySessions, RecentSessionCount),
	}
}

// lastReversed returns the last n elements most-recent-first, as a copy.
func lastReversed[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}

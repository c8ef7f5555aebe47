package analytics

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// NewRecord returns an empty analytics record for a user. Records are created
// lazily on the first recorded activity and never deleted by this package.
func NewRecord(userID uuid.UUID, now time.Time) *models.AnalyticsRecord {
	return &models.AnalyticsRecord{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendQuizAttempt appends a quiz attempt to the record's event log. The
// percentage is derived once here and is immutable afterward. A matching
// "quiz" study session is appended alongside, since the generic session list
// is the canonical feed for streak and total-time computation. Returns the
// attempt's effective date: the supplied CompletedAt, or now when absent.
// The streak advances off that date, so a backdated attempt breaks it.
func AppendQuizAttempt(rec *models.AnalyticsRecord, attempt models.QuizAttempt, now time.Time) (time.Time, error) {
	if attempt.Score < 0 {
		return time.Time{}, validationErrorf("score must be >= 0, got %d", attempt.Score)
	}
	if attempt.TotalQuestions < 1 {
		return time.Time{}, validationErrorf("total_questions must be >= 1, got %d", attempt.TotalQuestions)
	}
	if attempt.TimeSpentSeconds < 0 {
		return time.Time{}, validationErrorf("time_spent_seconds must be >= 0, got %d", attempt.TimeSpentSeconds)
	}

	attempt.Percentage = 100 * float64(attempt.Score) / float64(attempt.TotalQuestions)
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = now
	}

	rec.QuizAttempts = append(rec.QuizAttempts, attempt)
	rec.StudySessions = append(rec.StudySessions, models.StudySession{
		ActivityType:    models.ActivityTypeQuiz,
		DurationMinutes: minutesFromSeconds(attempt.TimeSpentSeconds),
		Date:            attempt.CompletedAt,
	})
	return attempt.CompletedAt, nil
}

// AppendFlashcardSession appends a flashcard review session plus its matching
// "flashcard" study session. Returns the session's effective date.
func AppendFlashcardSession(rec *models.AnalyticsRecord, session models.FlashcardSession, now time.Time) (time.Time, error) {
	if session.CardsReviewed < 1 {
		return time.Time{}, validationErrorf("cards_reviewed must be >= 1, got %d", session.CardsReviewed)
	}
	if session.TimeSpentSeconds < 0 {
		return time.Time{}, validationErrorf("time_spent_seconds must be >= 0, got %d", session.TimeSpentSeconds)
	}

	if session.StudiedAt.IsZero() {
		session.StudiedAt = now
	}

	rec.FlashcardSessions = append(rec.FlashcardSessions, session)
	rec.StudySessions = append(rec.StudySessions, models.StudySession{
		ActivityType:    models.ActivityTypeFlashcard,
		DurationMinutes: minutesFromSeconds(session.TimeSpentSeconds),
		Date:            session.StudiedAt,
	})
	return session.StudiedAt, nil
}

// AppendStudySession appends a generic study session. Returns the session's
// effective date.
func AppendStudySession(rec *models.AnalyticsRecord, session models.StudySession, now time.Time) (time.Time, error) {
	if session.DurationMinutes < 0 {
		return time.Time{}, validationErrorf("duration_minutes must be >= 0, got %d", session.DurationMinutes)
	}
	switch session.ActivityType {
	case models.ActivityTypeQuiz, models.ActivityTypeFlashcard, models.ActivityTypePlanner, models.ActivityTypeChat:
	default:
		return time.Time{}, validationErrorf("invalid activity_type %q", session.ActivityType)
	}

	if session.Date.IsZero() {
		session.Date = now
	}

	rec.StudySessions = append(rec.StudySessions, session)
	return session.Date, nil
}

func minutesFromSeconds(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

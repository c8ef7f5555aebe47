package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

func TestAppendQuizAttempt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	rec := NewRecord(uuid.New(), now)

	_, err := AppendQuizAttempt(rec, models.QuizAttempt{
		QuizID:           uuid.New(),
		Score:            7,
		TotalQuestions:   10,
		TimeSpentSeconds: 330,
	}, now)
	if err != nil {
		t.Fatalf("AppendQuizAttempt returned error: %v", err)
	}

	if len(rec.QuizAttempts) != 1 {
		t.Fatalf("expected 1 quiz attempt, got %d", len(rec.QuizAttempts))
	}
	attempt := rec.QuizAttempts[0]
	if attempt.Percentage != 70 {
		t.Errorf("percentage = %v, want 70", attempt.Percentage)
	}
	if !attempt.CompletedAt.Equal(now) {
		t.Errorf("completedAt = %v, want %v", attempt.CompletedAt, now)
	}

	// A matching quiz study session is always appended
	if len(rec.StudySessions) != 1 {
		t.Fatalf("expected 1 study session, got %d", len(rec.StudySessions))
	}
	session := rec.StudySessions[0]
	if session.ActivityType != models.ActivityTypeQuiz {
		t.Errorf("activityType = %q, want quiz", session.ActivityType)
	}
	if session.DurationMinutes != 6 { // 330s rounds to 6 minutes
		t.Errorf("durationMinutes = %d, want 6", session.DurationMinutes)
	}
}

func TestAppendQuizAttempt_KeepsSuppliedTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	completed := time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)
	rec := NewRecord(uuid.New(), now)

	eventDate, err := AppendQuizAttempt(rec, models.QuizAttempt{
		Score:          3,
		TotalQuestions: 4,
		CompletedAt:    completed,
	}, now)
	if err != nil {
		t.Fatalf("AppendQuizAttempt returned error: %v", err)
	}
	if !rec.QuizAttempts[0].CompletedAt.Equal(completed) {
		t.Errorf("completedAt = %v, want supplied %v", rec.QuizAttempts[0].CompletedAt, completed)
	}
	if !eventDate.Equal(completed) {
		t.Errorf("event date = %v, want supplied %v", eventDate, completed)
	}
}

func TestAppendQuizAttempt_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attempt models.QuizAttempt
	}{
		{"negative score", models.QuizAttempt{Score: -1, TotalQuestions: 5}},
		{"zero total questions", models.QuizAttempt{Score: 0, TotalQuestions: 0}},
		{"negative time spent", models.QuizAttempt{Score: 1, TotalQuestions: 5, TimeSpentSeconds: -10}},
	}

	now := time.Now().UTC()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewRecord(uuid.New(), now)
			_, err := AppendQuizAttempt(rec, tt.attempt, now)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if len(rec.QuizAttempts) != 0 || len(rec.StudySessions) != 0 {
				t.Errorf("rejected append mutated the record: %+v", rec)
			}
		})
	}
}

func TestAppendFlashcardSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	rec := NewRecord(uuid.New(), now)

	_, err := AppendFlashcardSession(rec, models.FlashcardSession{
		SetID:            uuid.New(),
		CardsReviewed:    15,
		TimeSpentSeconds: 600,
	}, now)
	if err != nil {
		t.Fatalf("AppendFlashcardSession returned error: %v", err)
	}

	if len(rec.FlashcardSessions) != 1 {
		t.Fatalf("expected 1 flashcard session, got %d", len(rec.FlashcardSessions))
	}
	if len(rec.StudySessions) != 1 {
		t.Fatalf("expected matching study session, got %d", len(rec.StudySessions))
	}
	if rec.StudySessions[0].ActivityType != models.ActivityTypeFlashcard {
		t.Errorf("activityType = %q, want flashcard", rec.StudySessions[0].ActivityType)
	}
	if rec.StudySessions[0].DurationMinutes != 10 {
		t.Errorf("durationMinutes = %d, want 10", rec.StudySessions[0].DurationMinutes)
	}
}

func TestAppendFlashcardSession_Validation(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rec := NewRecord(uuid.New(), now)
	_, err := AppendFlashcardSession(rec, models.FlashcardSession{CardsReviewed: 0}, now)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for zero cardsReviewed, got %v", err)
	}
}

func TestAppendStudySession(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session models.StudySession
		wantErr bool
	}{
		{"planner session", models.StudySession{ActivityType: models.ActivityTypePlanner, DurationMinutes: 30}, false},
		{"chat session", models.StudySession{ActivityType: models.ActivityTypeChat, DurationMinutes: 5}, false},
		{"zero duration allowed", models.StudySession{ActivityType: models.ActivityTypeQuiz, DurationMinutes: 0}, false},
		{"negative duration", models.StudySession{ActivityType: models.ActivityTypeQuiz, DurationMinutes: -1}, true},
		{"unknown activity type", models.StudySession{ActivityType: "reading", DurationMinutes: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewRecord(uuid.New(), now)
			_, err := AppendStudySession(rec, tt.session, now)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AppendStudySession returned error: %v", err)
			}
			if len(rec.StudySessions) != 1 {
				t.Fatalf("expected 1 study session, got %d", len(rec.StudySessions))
			}
			if !rec.StudySessions[0].Date.Equal(now) {
				t.Errorf("date = %v, want defaulted to %v", rec.StudySessions[0].Date, now)
			}
		})
	}
}

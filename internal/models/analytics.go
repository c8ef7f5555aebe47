package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType represents the kind of study activity behind a study session
type ActivityType string

const (
	ActivityTypeQuiz      ActivityType = "quiz"
	ActivityTypeFlashcard ActivityType = "flashcard"
	ActivityTypePlanner   ActivityType = "planner"
	ActivityTypeChat      ActivityType = "chat"
)

// QuizAttempt is a single completed quiz recorded against a user
type QuizAttempt struct {
	QuizID           uuid.UUID `json:"quiz_id"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	Percentage       float64   `json:"percentage"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// FlashcardSession is a single flashcard review session
type FlashcardSession struct {
	SetID            uuid.UUID `json:"set_id"`
	CardsReviewed    int       `json:"cards_reviewed"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	StudiedAt        time.Time `json:"studied_at"`
}

// StudySession is the generic activity unit that feeds streak and total-time
// computation. Quiz and flashcard completions always append one of these too.
type StudySession struct {
	ActivityType    ActivityType `json:"activity_type"`
	DurationMinutes int          `json:"duration_minutes"`
	Date            time.Time    `json:"date"`
}

// Streak tracks consecutive study days. LastStudyDate is nil until the first
// qualifying event.
type Streak struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
}

// AnalyticsRecord is the per-user analytics document. The event slices are
// append-only; the totals and streak are derived and never hand-edited.
type AnalyticsRecord struct {
	UserID                  uuid.UUID          `json:"user_id"`
	QuizAttempts            []QuizAttempt      `json:"quiz_attempts"`
	FlashcardSessions       []FlashcardSession `json:"flashcard_sessions"`
	StudySessions           []StudySession     `json:"study_sessions"`
	TotalStudyTimeMinutes   int                `json:"total_study_time_minutes"`
	TotalQuizzesTaken       int                `json:"total_quizzes_taken"`
	TotalFlashcardsReviewed int                `json:"total_flashcards_reviewed"`
	AverageQuizScore        float64            `json:"average_quiz_score"`
	Streak                  Streak             `json:"streak"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

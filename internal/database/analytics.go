package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// AnalyticsRepository handles analytics record database operations. The event
// lists are stored as JSONB documents, the derived totals and streak as plain
// columns; the whole record is written back in one upsert.
type AnalyticsRepository struct {
	db *DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// GetByUserID retrieves the analytics record for a user. Returns an error
// wrapping analytics.ErrNotFound when the user has no record yet.
func (r *AnalyticsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.AnalyticsRecord, error) {
	rec := &models.AnalyticsRecord{}
	var quizAttemptsJSON, flashcardSessionsJSON, studySessionsJSON []byte
	var lastStudyDate sql.NullTime

	query := `
		SELECT user_id, quiz_attempts, flashcard_sessions, study_sessions,
		       total_study_time_minutes, total_quizzes_taken, total_flashcards_reviewed,
		       average_quiz_score, streak_current, streak_longest, streak_last_study_date,
		       created_at, updated_at
		FROM analytics
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&quizAttemptsJSON,
		&flashcardSessionsJSON,
		&studySessionsJSON,
		&rec.TotalStudyTimeMinutes,
		&rec.TotalQuizzesTaken,
		&rec.TotalFlashcardsReviewed,
		&rec.AverageQuizScore,
		&rec.Streak.Current,
		&rec.Streak.Longest,
		&lastStudyDate,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: analytics record for user %s", analytics.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get analytics record: %w", err)
	}

	if err := unmarshalEvents(quizAttemptsJSON, &rec.QuizAttempts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz_attempts: %w", err)
	}
	if err := unmarshalEvents(flashcardSessionsJSON, &rec.FlashcardSessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flashcard_sessions: %w", err)
	}
	if err := unmarshalEvents(studySessionsJSON, &rec.StudySessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study_sessions: %w", err)
	}

	if lastStudyDate.Valid {
		t := lastStudyDate.Time.UTC()
		rec.Streak.LastStudyDate = &t
	}

	return rec, nil
}

// Upsert writes the whole record back. Callers serialize per user, so the
// last write always carries the full, freshly recomputed state.
func (r *AnalyticsRepository) Upsert(ctx context.Context, rec *models.AnalyticsRecord) error {
	quizAttemptsJSON, err := json.Marshal(rec.QuizAttempts)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz_attempts: %w", err)
	}
	flashcardSessionsJSON, err := json.Marshal(rec.FlashcardSessions)
	if err != nil {
		return fmt.Errorf("failed to marshal flashcard_sessions: %w", err)
	}
	studySessionsJSON, err := json.Marshal(rec.StudySessions)
	if err != nil {
		return fmt.Errorf("failed to marshal study_sessions: %w", err)
	}

	var lastStudyDate sql.NullTime
	if rec.Streak.LastStudyDate != nil {
		lastStudyDate = sql.NullTime{Time: *rec.Streak.LastStudyDate, Valid: true}
	}

	query := `
		INSERT INTO analytics (user_id, quiz_attempts, flashcard_sessions, study_sessions,
			total_study_time_minutes, total_quizzes_taken, total_flashcards_reviewed,
			average_quiz_score, streak_current, streak_longest, streak_last_study_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE
		SET quiz_attempts = EXCLUDED.quiz_attempts,
		    flashcard_sessions = EXCLUDED.flashcard_sessions,
		    study_sessions = EXCLUDED.study_sessions,
		    total_study_time_minutes = EXCLUDED.total_study_time_minutes,
		    total_quizzes_taken = EXCLUDED.total_quizzes_taken,
		    total_flashcards_reviewed = EXCLUDED.total_flashcards_reviewed,
		    average_quiz_score = EXCLUDED.average_quiz_score,
		    streak_current = EXCLUDED.streak_current,
		    streak_longest = EXCLUDED.streak_longest,
		    streak_last_study_date = EXCLUDED.streak_last_study_date,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	err = r.db.QueryRowContext(ctx, query,
		rec.UserID,
		quizAttemptsJSON,
		flashcardSessionsJSON,
		studySessionsJSON,
		rec.TotalStudyTimeMinutes,
		rec.TotalQuizzesTaken,
		rec.TotalFlashcardsReviewed,
		rec.AverageQuizScore,
		rec.Streak.Current,
		rec.Streak.Longest,
		lastStudyDate,
		createdAt,
		updatedAt,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert analytics record: %w", err)
	}

	return nil
}

func unmarshalEvents(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

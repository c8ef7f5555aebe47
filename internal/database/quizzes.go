package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// QuizRepository handles quiz database operations
type QuizRepository struct {
	db *DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create creates a new quiz
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	query := `
		INSERT INTO quizzes (id, user_id, title, description, difficulty, status, source_text, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		quiz.ID,
		quiz.UserID,
		quiz.Title,
		quiz.Description,
		quiz.Difficulty,
		quiz.Status,
		quiz.SourceText,
		questionsJSON,
		now,
		now,
	).Scan(&quiz.CreatedAt, &quiz.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	return nil
}

// GetByID retrieves a quiz by ID
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	var questionsJSON []byte

	query := `
		SELECT id, user_id, title, description, difficulty, status, source_text, questions, created_at, updated_at
		FROM quizzes
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID,
		&quiz.UserID,
		&quiz.Title,
		&quiz.Description,
		&quiz.Difficulty,
		&quiz.Status,
		&quiz.SourceText,
		&questionsJSON,
		&quiz.CreatedAt,
		&quiz.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quiz not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &quiz.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
		}
	}

	return quiz, nil
}

// GetByUserID retrieves all quizzes for a user, newest first
func (r *QuizRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Quiz, error) {
	query := `
		SELECT id, user_id, title, description, difficulty, status, source_text, questions, created_at, updated_at
		FROM quizzes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var quizzes []*models.Quiz
	for rows.Next() {
		quiz := &models.Quiz{}
		var questionsJSON []byte
		if err := rows.Scan(
			&quiz.ID,
			&quiz.UserID,
			&quiz.Title,
			&quiz.Description,
			&quiz.Difficulty,
			&quiz.Status,
			&quiz.SourceText,
			&questionsJSON,
			&quiz.CreatedAt,
			&quiz.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		if len(questionsJSON) > 0 {
			if err := json.Unmarshal(questionsJSON, &quiz.Questions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
			}
		}
		quizzes = append(quizzes, quiz)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// SetStatus updates a quiz's generation status
func (r *QuizRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error {
	query := `
		UPDATE quizzes
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set quiz status: %w", err)
	}

	return nil
}

// SetQuestions stores generated questions and marks the quiz ready
func (r *QuizRepository) SetQuestions(ctx context.Context, id uuid.UUID, questions []models.QuizQuestion) error {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		UPDATE quizzes
		SET questions = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	_, err = r.db.ExecContext(ctx, query, questionsJSON, models.GenerationStatusReady, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set quiz questions: %w", err)
	}

	return nil
}

// CountByUserID counts quizzes created by a user
func (r *QuizRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quizzes: %w", err)
	}
	return count, nil
}

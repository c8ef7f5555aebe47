package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// TopicRepository handles study topic database operations
type TopicRepository struct {
	db *DB
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db *DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create creates a new study topic
func (r *TopicRepository) Create(ctx context.Context, topic *models.StudyTopic) error {
	query := `
		INSERT INTO study_topics (id, user_id, title, description, difficulty, priority,
			estimated_time_minutes, scheduled_for, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		topic.ID,
		topic.UserID,
		topic.Title,
		topic.Description,
		topic.Difficulty,
		topic.Priority,
		topic.EstimatedTimeMinutes,
		topic.ScheduledFor,
		topic.Completed,
		now,
		now,
	).Scan(&topic.CreatedAt, &topic.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create study topic: %w", err)
	}

	return nil
}

// GetByID retrieves a topic by ID, scoped to its owner
func (r *TopicRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyTopic, error) {
	topic := &models.StudyTopic{}
	var completedAt sql.NullTime

	query := `
		SELECT id, user_id, title, description, difficulty, priority,
		       estimated_time_minutes, scheduled_for, completed, completed_at, created_at, updated_at
		FROM study_topics
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&topic.ID,
		&topic.UserID,
		&topic.Title,
		&topic.Description,
		&topic.Difficulty,
		&topic.Priority,
		&topic.EstimatedTimeMinutes,
		&topic.ScheduledFor,
		&topic.Completed,
		&completedAt,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study topic not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get study topic: %w", err)
	}

	if completedAt.Valid {
		topic.CompletedAt = &completedAt.Time
	}

	return topic, nil
}

// GetByUserID retrieves a user's topics ordered by scheduled date
func (r *TopicRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.StudyTopic, error) {
	query := `
		SELECT id, user_id, title, description, difficulty, priority,
		       estimated_time_minutes, scheduled_for, completed, completed_at, created_at, updated_at
		FROM study_topics
		WHERE user_id = $1
		ORDER BY scheduled_for ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query study topics: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var topics []*models.StudyTopic
	for rows.Next() {
		topic := &models.StudyTopic{}
		var completedAt sql.NullTime
		if err := rows.Scan(
			&topic.ID,
			&topic.UserID,
			&topic.Title,
			&topic.Description,
			&topic.Difficulty,
			&topic.Priority,
			&topic.EstimatedTimeMinutes,
			&topic.ScheduledFor,
			&topic.Completed,
			&completedAt,
			&topic.CreatedAt,
			&topic.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study topic: %w", err)
		}
		if completedAt.Valid {
			topic.CompletedAt = &completedAt.Time
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating study topics: %w", err)
	}

	return topics, nil
}

// MarkComplete marks a topic complete. Returns the updated topic.
func (r *TopicRepository) MarkComplete(ctx context.Context, id, userID uuid.UUID) (*models.StudyTopic, error) {
	query := `
		UPDATE study_topics
		SET completed = true, completed_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark topic complete: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("study topic not found: %w", sql.ErrNoRows)
	}

	return r.GetByID(ctx, id, userID)
}

// CountByUserID counts a user's topics; completedOnly restricts to finished ones
func (r *TopicRepository) CountByUserID(ctx context.Context, userID uuid.UUID, completedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM study_topics WHERE user_id = $1`
	if completedOnly {
		query += ` AND completed = true`
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count study topics: %w", err)
	}
	return count, nil
}

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

// FlashcardRepository handles flashcard set database operations
type FlashcardRepository struct {
	db *DB
}

// NewFlashcardRepository creates a new flashcard repository
func NewFlashcardRepository(db *DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Create creates a new flashcard set
func (r *FlashcardRepository) Create(ctx context.Context, set *models.FlashcardSet) error {
	query := `
		INSERT INTO flashcard_sets (id, user_id, title, status, source_text, cards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	cardsJSON, err := json.Marshal(set.Cards)
	if err != nil {
		return fmt.Errorf("failed to marshal cards: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		set.ID,
		set.UserID,
		set.Title,
		set.Status,
		set.SourceText,
		cardsJSON,
		now,
		now,
	).Scan(&set.CreatedAt, &set.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create flashcard set: %w", err)
	}

	return nil
}

// GetByID retrieves a flashcard set by ID
func (r *FlashcardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FlashcardSet, error) {
	set := &models.FlashcardSet{}
	var cardsJSON []byte

	query := `
		SELECT id, user_id, title, status, source_text, cards, created_at, updated_at
		FROM flashcard_sets
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&set.ID,
		&set.UserID,
		&set.Title,
		&set.Status,
		&set.SourceText,
		&cardsJSON,
		&set.CreatedAt,
		&set.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("flashcard set not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get flashcard set: %w", err)
	}

	if len(cardsJSON) > 0 {
		if err := json.Unmarshal(cardsJSON, &set.Cards); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cards: %w", err)
		}
	}

	return set, nil
}

// GetByUserID retrieves all flashcard sets for a user, newest first
func (r *FlashcardRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error) {
	query := `
		SELECT id, user_id, title, status, source_text, cards, created_at, updated_at
		FROM flashcard_sets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flashcard sets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var sets []*models.FlashcardSet
	for rows.Next() {
		set := &models.FlashcardSet{}
		var cardsJSON []byte
		if err := rows.Scan(
			&set.ID,
			&set.UserID,
			&set.Title,
			&set.Status,
			&set.SourceText,
			&cardsJSON,
			&set.CreatedAt,
			&set.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flashcard set: %w", err)
		}
		if len(cardsJSON) > 0 {
			if err := json.Unmarshal(cardsJSON, &set.Cards); err != nil {
				return nil, fmt.Errorf("failed to unmarshal cards: %w", err)
			}
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flashcard sets: %w", err)
	}

	return sets, nil
}

// SetStatus updates a set's generation status
func (r *FlashcardRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error {
	query := `
		UPDATE flashcard_sets
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set flashcard set status: %w", err)
	}

	return nil
}

// SetCards stores generated cards and marks the set ready
func (r *FlashcardRepository) SetCards(ctx context.Context, id uuid.UUID, cards []models.Flashcard) error {
	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to marshal cards: %w", err)
	}

	query := `
		UPDATE flashcard_sets
		SET cards = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	_, err = r.db.ExecContext(ctx, query, cardsJSON, models.GenerationStatusReady, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set flashcard cards: %w", err)
	}

	return nil
}

// CountByUserID counts flashcard sets created by a user
func (r *FlashcardRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flashcard_sets WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count flashcard sets: %w", err)
	}
	return count, nil
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// QuizRepositoryInterface defines the quiz repository operations used by
// handlers and workers. Interfaces enable mock implementations in tests.
type QuizRepositoryInterface interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Quiz, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error
	SetQuestions(ctx context.Context, id uuid.UUID, questions []models.QuizQuestion) error
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

// FlashcardRepositoryInterface defines the flashcard repository operations
type FlashcardRepositoryInterface interface {
	Create(ctx context.Context, set *models.FlashcardSet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FlashcardSet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error
	SetCards(ctx context.Context, id uuid.UUID, cards []models.Flashcard) error
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

// TopicRepositoryInterface defines the study topic repository operations
type TopicRepositoryInterface interface {
	Create(ctx context.Context, topic *models.StudyTopic) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyTopic, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.StudyTopic, error)
	MarkComplete(ctx context.Context, id, userID uuid.UUID) (*models.StudyTopic, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, completedOnly bool) (int, error)
}

// UserRepositoryInterface defines the user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ QuizRepositoryInterface      = (*QuizRepository)(nil)
	_ FlashcardRepositoryInterface = (*FlashcardRepository)(nil)
	_ TopicRepositoryInterface     = (*TopicRepository)(nil)
	_ UserRepositoryInterface      = (*UserRepository)(nil)
)

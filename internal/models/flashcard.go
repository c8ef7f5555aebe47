package models

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard is a single question/answer card
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlashcardSet is an AI-generated set of flashcards owned by a user
type FlashcardSet struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Title      string           `json:"title"`
	Status     GenerationStatus `json:"status"`
	SourceText string           `json:"-"`
	Cards      []Flashcard      `json:"cards"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

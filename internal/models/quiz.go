package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty represents the requested difficulty of generated content
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GenerationStatus represents the lifecycle of AI-generated content
type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusReady      GenerationStatus = "ready"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// QuizQuestion is a single multiple-choice question in a quiz
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// Quiz is an AI-generated quiz owned by a user. Questions are empty until the
// generation worker marks the quiz ready.
type Quiz struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Difficulty  Difficulty       `json:"difficulty"`
	Status      GenerationStatus `json:"status"`
	SourceText  string           `json:"-"`
	Questions   []QuizQuestion   `json:"questions"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

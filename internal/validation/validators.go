package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("activity_type", validateActivityType); err != nil {
		panic(fmt.Sprintf("failed to register activity_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("difficulty", validateDifficulty); err != nil {
		panic(fmt.Sprintf("failed to register difficulty validator: %v", err))
	}
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
}

// validateActivityType validates that a string is a valid ActivityType enum value
func validateActivityType(fl validator.FieldLevel) bool {
	return ValidateActivityType(fl.Field().String()) == nil
}

// validateDifficulty validates that a string is a valid Difficulty enum value
func validateDifficulty(fl validator.FieldLevel) bool {
	return ValidateDifficulty(fl.Field().String()) == nil
}

// validatePriority validates that a string is a valid Priority enum value
func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateActivityType validates an ActivityType string value
func ValidateActivityType(value string) error {
	switch models.ActivityType(value) {
	case models.ActivityTypeQuiz, models.ActivityTypeFlashcard, models.ActivityTypePlanner, models.ActivityTypeChat:
		return nil
	default:
		return fmt.Errorf("invalid activity type: %s (must be 'quiz', 'flashcard', 'planner', or 'chat')", value)
	}
}

// ValidateDifficulty validates a Difficulty string value
func ValidateDifficulty(value string) error {
	switch models.Difficulty(value) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return nil
	default:
		return fmt.Errorf("invalid difficulty: %s (must be 'easy', 'medium', or 'hard')", value)
	}
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'high', 'medium', or 'low')", value)
	}
}

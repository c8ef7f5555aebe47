package ai

import (
	"context"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// AIProvider is the interface for AI providers
type AIProvider interface {
	// GenerateQuiz generates quiz questions for a topic. sourceText is optional
	// study material to ground the questions in.
	GenerateQuiz(ctx context.Context, topic, sourceText string, count int, difficulty models.Difficulty) ([]models.QuizQuestion, error)

	// GenerateFlashcards generates flashcards for a topic. sourceText is optional
	// study material to ground the cards in.
	GenerateFlashcards(ctx context.Context, topic, sourceText string, count int) ([]models.Flashcard, error)

	// Chat handles a study-help chat message and returns the AI response
	Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error)
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatResponse represents a response from the AI chat
type ChatResponse struct {
	Message string `json:"message"`
}

// ProviderFactory creates an AI provider based on the provider type
type ProviderFactory func(config map[string]string) (AIProvider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (AIProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

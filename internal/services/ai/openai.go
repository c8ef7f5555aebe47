package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 60 * time.Second

	// DefaultQuestionCount is used when a quiz request does not specify a count
	DefaultQuestionCount = 5
	// DefaultCardCount is used when a flashcard request does not specify a count
	DefaultCardCount = 10
	// MaxGeneratedItems caps how many questions or cards a single request may ask for
	MaxGeneratedItems = 25
	// MaxSourceTextLength caps how much source material is included in a prompt
	MaxSourceTextLength = 8000

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the AIProvider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// NewOpenAIProviderWithConfig creates a new OpenAI provider with custom configuration
func NewOpenAIProviderWithConfig(apiKey string, baseURL string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, baseURL, model, nil, false)
}

// GenerateQuiz generates quiz questions for a topic
func (p *OpenAIProvider) GenerateQuiz(ctx context.Context, topic, sourceText string, count int, difficulty models.Difficulty) ([]models.QuizQuestion, error) {
	count = clampItemCount(count, DefaultQuestionCount)

	prompt := buildQuizPrompt(topic, sourceText, count, difficulty)
	content, err := p.complete(ctx, "generate_quiz", quizSystemPrompt, prompt, true)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuizResponse(content)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GenerateFlashcards generates flashcards for a topic
func (p *OpenAIProvider) GenerateFlashcards(ctx context.Context, topic, sourceText string, count int) ([]models.Flashcard, error) {
	count = clampItemCount(count, DefaultCardCount)

	prompt := buildFlashcardPrompt(topic, sourceText, count)
	content, err := p.complete(ctx, "generate_flashcards", flashcardSystemPrompt, prompt, true)
	if err != nil {
		return nil, err
	}

	cards, err := parseFlashcardResponse(content)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// Chat handles a study-help chat message and returns the AI response
func (p *OpenAIProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)

	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	openAIMessages = append(openAIMessages, openai.SystemMessage(chatSystemPrompt))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content))
		}
	}

	if p.logger != nil && p.debugMode {
		messagePreviews := make([]string, 0, len(messages))
		for _, msg := range messages {
			messagePreviews = append(messagePreviews, SanitizePrompt(msg.Content, false))
		}
		p.logger.Debug("llm_api_request",
			zap.String("operation", "chat"),
			zap.String("model", p.model),
			zap.Int("message_count", len(openAIMessages)),
			zap.Strings("message_previews", messagePreviews),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: openAIMessages,
		// Temperature omitted - use model default to avoid "unsupported_value" errors
	}

	startTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(startTime)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "chat"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to chat: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "chat"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return &ChatResponse{Message: content}, nil
}

// complete sends a single system+user prompt pair and returns the response content
func (p *OpenAIProvider) complete(ctx context.Context, operation, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)
	targetIDStr := ExtractTargetID(ctx)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if jsonMode {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", SanitizePrompt(userPrompt, true)),
			zap.String("user_id", userIDStr),
			zap.String("target_id", targetIDStr),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("target_id", targetIDStr),
				zap.String("request_id", requestID),
				zap.Duration("latency_ms", latency),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("%s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userIDStr),
			zap.String("target_id", targetIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

const quizSystemPrompt = "You are a study assistant that writes multiple-choice quizzes. Respond with valid JSON only."

const flashcardSystemPrompt = "You are a study assistant that writes flashcards. Respond with valid JSON only."

const chatSystemPrompt = "You are a friendly study assistant. Answer study questions clearly and concisely, and encourage good study habits."

// buildQuizPrompt builds the prompt for quiz generation
func buildQuizPrompt(topic, sourceText string, count int, difficulty models.Difficulty) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a quiz with exactly %d multiple-choice questions about %q.\n", count, topic)
	if difficulty != "" {
		fmt.Fprintf(&b, "Difficulty level: %s.\n", difficulty)
	}
	if sourceText != "" {
		fmt.Fprintf(&b, "\nBase the questions on this study material:\n%s\n", TruncateString(sourceText, MaxSourceTextLength))
	}
	b.WriteString(`
Respond with a JSON object in this format:
{
  "questions": [
    {
      "question": "...",
      "options": ["...", "...", "...", "..."],
      "correct_answer": "...",
      "explanation": "..."
    }
  ]
}

Rules:
- Each question must have exactly 4 options.
- correct_answer must exactly match one of the options.
- Keep explanations to one or two sentences.

Return only valid JSON.`)
	return b.String()
}

// buildFlashcardPrompt builds the prompt for flashcard generation
func buildFlashcardPrompt(topic, sourceText string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d flashcards about %q.\n", count, topic)
	if sourceText != "" {
		fmt.Fprintf(&b, "\nBase the cards on this study material:\n%s\n", TruncateString(sourceText, MaxSourceTextLength))
	}
	b.WriteString(`
Respond with a JSON object in this format:
{
  "cards": [
    {"question": "...", "answer": "..."}
  ]
}

Rules:
- Questions should test a single concept each.
- Answers should be short and direct.

Return only valid JSON.`)
	return b.String()
}

// stripCodeFences removes markdown code fences that some models wrap around
// JSON responses despite being asked for raw JSON
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONObject pulls the outermost JSON object out of a response that may
// carry leading or trailing prose
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

func parseQuizResponse(content string) ([]models.QuizQuestion, error) {
	raw := extractJSONObject(stripCodeFences(content))

	var parsed struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quiz response: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("quiz response contained no questions")
	}

	for i, q := range parsed.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d has empty text", i+1)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d has %d options, need at least 2", i+1, len(q.Options))
		}
		if !containsOption(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d correct answer does not match any option", i+1)
		}
	}

	return parsed.Questions, nil
}

func parseFlashcardResponse(content string) ([]models.Flashcard, error) {
	raw := extractJSONObject(stripCodeFences(content))

	var parsed struct {
		Cards []models.Flashcard `json:"cards"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse flashcard response: %w", err)
	}
	if len(parsed.Cards) == 0 {
		return nil, fmt.Errorf("flashcard response contained no cards")
	}

	for i, c := range parsed.Cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return nil, fmt.Errorf("card %d has empty question or answer", i+1)
		}
	}

	return parsed.Cards, nil
}

func containsOption(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

func clampItemCount(count, fallback int) int {
	if count <= 0 {
		return fallback
	}
	if count > MaxGeneratedItems {
		return MaxGeneratedItems
	}
	return count
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (AIProvider, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		model := config["model"]
		baseURL := config["base_url"]

		return NewOpenAIProviderWithConfig(apiKey, baseURL, model), nil
	})
}

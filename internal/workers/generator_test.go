package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/nayan947211-pixel/study-buddy/internal/services/ai"
)

// mockAIProvider is a mock implementation of AIProvider
type mockAIProvider struct {
	generateQuizFunc       func(ctx context.Context, topic, sourceText string, count int, difficulty models.Difficulty) ([]models.QuizQuestion, error)
	generateFlashcardsFunc func(ctx context.Context, topic, sourceText string, count int) ([]models.Flashcard, error)
}

func (m *mockAIProvider) GenerateQuiz(ctx context.Context, topic, sourceText string, count int, difficulty models.Difficulty) ([]models.QuizQuestion, error) {
	if m.generateQuizFunc != nil {
		return m.generateQuizFunc(ctx, topic, sourceText, count, difficulty)
	}
	return []models.QuizQuestion{
		{Question: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
	}, nil
}

func (m *mockAIProvider) GenerateFlashcards(ctx context.Context, topic, sourceText string, count int) ([]models.Flashcard, error) {
	if m.generateFlashcardsFunc != nil {
		return m.generateFlashcardsFunc(ctx, topic, sourceText, count)
	}
	return []models.Flashcard{{Question: "Q?", Answer: "A"}}, nil
}

func (m *mockAIProvider) Chat(ctx context.Context, messages []ai.ChatMessage) (*ai.ChatResponse, error) {
	return nil, errors.New("not implemented")
}

var _ ai.AIProvider = (*mockAIProvider)(nil)

// mockQuizRepo is a mock implementation of QuizRepositoryInterface
type mockQuizRepo struct {
	quizzes      map[uuid.UUID]*models.Quiz
	statusCalls  []models.GenerationStatus
	setQuestions [][]models.QuizQuestion
}

func newMockQuizRepo() *mockQuizRepo {
	return &mockQuizRepo{quizzes: make(map[uuid.UUID]*models.Quiz)}
}

func (m *mockQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *mockQuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, errors.New("quiz not found")
	}
	return quiz, nil
}

func (m *mockQuizRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Quiz, error) {
	return nil, nil
}

func (m *mockQuizRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error {
	m.statusCalls = append(m.statusCalls, status)
	if quiz, ok := m.quizzes[id]; ok {
		quiz.Status = status
	}
	return nil
}

func (m *mockQuizRepo) SetQuestions(ctx context.Context, id uuid.UUID, questions []models.QuizQuestion) error {
	m.setQuestions = append(m.setQuestions, questions)
	if quiz, ok := m.quizzes[id]; ok {
		quiz.Questions = questions
		quiz.Status = models.GenerationStatusReady
	}
	return nil
}

func (m *mockQuizRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(m.quizzes), nil
}

// mockFlashcardRepo is a mock implementation of FlashcardRepositoryInterface
type mockFlashcardRepo struct {
	sets        map[uuid.UUID]*models.FlashcardSet
	statusCalls []models.GenerationStatus
}

func newMockFlashcardRepo() *mockFlashcardRepo {
	return &mockFlashcardRepo{sets: make(map[uuid.UUID]*models.FlashcardSet)}
}

func (m *mockFlashcardRepo) Create(ctx context.Context, set *models.FlashcardSet) error {
	m.sets[set.ID] = set
	return nil
}

func (m *mockFlashcardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FlashcardSet, error) {
	set, ok := m.sets[id]
	if !ok {
		return nil, errors.New("flashcard set not found")
	}
	return set, nil
}

func (m *mockFlashcardRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error) {
	return nil, nil
}

func (m *mockFlashcardRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus) error {
	m.statusCalls = append(m.statusCalls, status)
	if set, ok := m.sets[id]; ok {
		set.Status = status
	}
	return nil
}

func (m *mockFlashcardRepo) SetCards(ctx context.Context, id uuid.UUID, cards []models.Flashcard) error {
	if set, ok := m.sets[id]; ok {
		set.Cards = cards
		set.Status = models.GenerationStatusReady
	}
	return nil
}

func (m *mockFlashcardRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(m.sets), nil
}

func TestProcessQuizGenerationJob_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()

	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:         quizID,
		UserID:     userID,
		Title:      "Photosynthesis",
		Difficulty: models.DifficultyMedium,
		Status:     models.GenerationStatusPending,
	}

	generator := NewContentGenerator(&mockAIProvider{}, quizRepo, newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeQuizGeneration, userID, quizID)
	if err := generator.ProcessQuizGenerationJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessQuizGenerationJob: %v", err)
	}

	quiz := quizRepo.quizzes[quizID]
	if quiz.Status != models.GenerationStatusReady {
		t.Errorf("quiz status = %s, want ready", quiz.Status)
	}
	if len(quiz.Questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(quiz.Questions))
	}
	// Status should have passed through processing first
	if len(quizRepo.statusCalls) == 0 || quizRepo.statusCalls[0] != models.GenerationStatusProcessing {
		t.Errorf("expected first status call to be processing, got %v", quizRepo.statusCalls)
	}
}

func TestProcessQuizGenerationJob_WrongUser(t *testing.T) {
	t.Parallel()

	quizID := uuid.New()
	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:     quizID,
		UserID: uuid.New(),
		Title:  "Algebra",
		Status: models.GenerationStatusPending,
	}

	generator := NewContentGenerator(&mockAIProvider{}, quizRepo, newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeQuizGeneration, uuid.New(), quizID)
	if err := generator.ProcessQuizGenerationJob(context.Background(), job); err == nil {
		t.Error("expected error for quiz owned by another user")
	}
}

func TestProcessQuizGenerationJob_AlreadyReady(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()
	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:     quizID,
		UserID: userID,
		Title:  "Chemistry",
		Status: models.GenerationStatusReady,
		Questions: []models.QuizQuestion{
			{Question: "Existing?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		},
	}

	called := false
	provider := &mockAIProvider{
		generateQuizFunc: func(context.Context, string, string, int, models.Difficulty) ([]models.QuizQuestion, error) {
			called = true
			return nil, nil
		},
	}

	generator := NewContentGenerator(provider, quizRepo, newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeQuizGeneration, userID, quizID)
	if err := generator.ProcessQuizGenerationJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessQuizGenerationJob: %v", err)
	}
	if called {
		t.Error("provider should not be called for an already generated quiz")
	}
}

func TestProcessQuizGenerationJob_GenerationError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()
	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:     quizID,
		UserID: userID,
		Title:  "Biology",
		Status: models.GenerationStatusPending,
	}

	provider := &mockAIProvider{
		generateQuizFunc: func(context.Context, string, string, int, models.Difficulty) ([]models.QuizQuestion, error) {
			return nil, errors.New("model unavailable")
		},
	}

	generator := NewContentGenerator(provider, quizRepo, newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeQuizGeneration, userID, quizID)
	if err := generator.ProcessQuizGenerationJob(context.Background(), job); err == nil {
		t.Fatal("expected generation error")
	}

	// Status should be reset to pending so the job can be retried
	if quizRepo.quizzes[quizID].Status != models.GenerationStatusPending {
		t.Errorf("quiz status = %s, want pending after failure", quizRepo.quizzes[quizID].Status)
	}
}

func TestProcessQuizGenerationJob_CountFromMetadata(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()
	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:     quizID,
		UserID: userID,
		Title:  "History",
		Status: models.GenerationStatusPending,
	}

	var gotCount int
	provider := &mockAIProvider{
		generateQuizFunc: func(_ context.Context, _, _ string, count int, _ models.Difficulty) ([]models.QuizQuestion, error) {
			gotCount = count
			return []models.QuizQuestion{{Question: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "a"}}, nil
		},
	}

	generator := NewContentGenerator(provider, quizRepo, newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeQuizGeneration, userID, quizID)
	// JSON round-trips metadata numbers as float64
	job.Metadata["question_count"] = float64(8)

	if err := generator.ProcessQuizGenerationJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessQuizGenerationJob: %v", err)
	}
	if gotCount != 8 {
		t.Errorf("question count = %d, want 8", gotCount)
	}
}

func TestProcessFlashcardGenerationJob_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	setID := uuid.New()

	flashcardRepo := newMockFlashcardRepo()
	flashcardRepo.sets[setID] = &models.FlashcardSet{
		ID:     setID,
		UserID: userID,
		Title:  "Spanish Vocabulary",
		Status: models.GenerationStatusPending,
	}

	generator := NewContentGenerator(&mockAIProvider{}, newMockQuizRepo(), flashcardRepo, nil)

	job := queue.NewJob(queue.JobTypeFlashcardGeneration, userID, setID)
	if err := generator.ProcessFlashcardGenerationJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessFlashcardGenerationJob: %v", err)
	}

	set := flashcardRepo.sets[setID]
	if set.Status != models.GenerationStatusReady {
		t.Errorf("set status = %s, want ready", set.Status)
	}
	if len(set.Cards) != 1 {
		t.Errorf("expected 1 card, got %d", len(set.Cards))
	}
}

func TestProcessFlashcardGenerationJob_NotFound(t *testing.T) {
	t.Parallel()

	generator := NewContentGenerator(&mockAIProvider{}, newMockQuizRepo(), newMockFlashcardRepo(), nil)

	job := queue.NewJob(queue.JobTypeFlashcardGeneration, uuid.New(), uuid.New())
	if err := generator.ProcessFlashcardGenerationJob(context.Background(), job); err == nil {
		t.Error("expected error for missing flashcard set")
	}
}

func TestMarkFailed(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()
	quizRepo := newMockQuizRepo()
	quizRepo.quizzes[quizID] = &models.Quiz{
		ID:     quizID,
		UserID: userID,
		Status: models.GenerationStatusProcessing,
	}

	generator := NewContentGenerator(&mockAIProvider{}, quizRepo, newMockFlashcardRepo(), nil)
	generator.markFailed(context.Background(), queue.NewJob(queue.JobTypeQuizGeneration, userID, quizID))

	if quizRepo.quizzes[quizID].Status != models.GenerationStatusFailed {
		t.Errorf("quiz status = %s, want failed", quizRepo.quizzes[quizID].Status)
	}
}

func TestDelayedRetry(t *testing.T) {
	t.Parallel()

	job := queue.NewJob(queue.JobTypeQuizGeneration, uuid.New(), uuid.New())
	job.RetryCount = 1

	notBefore := job.CreatedAt.Add(time.Hour)
	retry := delayedRetry(job, notBefore)

	if retry.ID != job.ID {
		t.Error("retry should keep the original job ID")
	}
	if retry.RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", retry.RetryCount)
	}
	if retry.NotBefore == nil || !retry.NotBefore.Equal(notBefore) {
		t.Errorf("NotBefore = %v, want %v", retry.NotBefore, notBefore)
	}
}

func TestIntFromMetadata(t *testing.T) {
	t.Parallel()

	job := queue.NewJob(queue.JobTypeQuizGeneration, uuid.New(), uuid.New())

	if got := intFromMetadata(job, "missing"); got != 0 {
		t.Errorf("missing key = %d, want 0", got)
	}

	job.Metadata["as_int"] = 7
	job.Metadata["as_float"] = float64(9)
	job.Metadata["as_string"] = "12"

	if got := intFromMetadata(job, "as_int"); got != 7 {
		t.Errorf("int value = %d, want 7", got)
	}
	if got := intFromMetadata(job, "as_float"); got != 9 {
		t.Errorf("float value = %d, want 9", got)
	}
	if got := intFromMetadata(job, "as_string"); got != 0 {
		t.Errorf("string value = %d, want 0", got)
	}
}

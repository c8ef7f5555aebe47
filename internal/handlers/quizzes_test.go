package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
)

// memRecordStore is an in-memory analytics store for handler tests
type memRecordStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.AnalyticsRecord
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{records: make(map[uuid.UUID]*models.AnalyticsRecord)}
}

func (s *memRecordStore) GetByUserID(_ context.Context, userID uuid.UUID) (*models.AnalyticsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, fmt.Errorf("%w: analytics record for user %s", analytics.ErrNotFound, userID)
	}
	clone := *rec
	return &clone, nil
}

func (s *memRecordStore) Upsert(_ context.Context, rec *models.AnalyticsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.records[rec.UserID] = &clone
	return nil
}

// mockQuizStore is a map-backed quiz repository
type mockQuizStore struct {
	mu        sync.Mutex
	quizzes   map[uuid.UUID]*models.Quiz
	createErr error
}

func newMockQuizStore() *mockQuizStore {
	return &mockQuizStore{quizzes: make(map[uuid.UUID]*models.Quiz)}
}

func (s *mockQuizStore) Create(_ context.Context, quiz *models.Quiz) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *quiz
	s.quizzes[quiz.ID] = &clone
	return nil
}

func (s *mockQuizStore) GetByID(_ context.Context, id uuid.UUID) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *quiz
	return &clone, nil
}

func (s *mockQuizStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Quiz
	for _, quiz := range s.quizzes {
		if quiz.UserID == userID {
			clone := *quiz
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *mockQuizStore) SetStatus(_ context.Context, id uuid.UUID, status models.GenerationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return sql.ErrNoRows
	}
	quiz.Status = status
	return nil
}

func (s *mockQuizStore) SetQuestions(_ context.Context, id uuid.UUID, questions []models.QuizQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return sql.ErrNoRows
	}
	quiz.Questions = questions
	quiz.Status = models.GenerationStatusReady
	return nil
}

func (s *mockQuizStore) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	quizzes, err := s.GetByUserID(ctx, userID)
	return len(quizzes), err
}

// mockEnqueuer captures enqueued jobs
type mockEnqueuer struct {
	mu         sync.Mutex
	jobs       []*queue.Job
	enqueueErr error
	healthErr  error
}

func (q *mockEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *mockEnqueuer) Dequeue(context.Context) (*queue.Message, error) { return nil, nil }

func (q *mockEnqueuer) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (q *mockEnqueuer) Close() error { return nil }

func (q *mockEnqueuer) HealthCheck(context.Context) error { return q.healthErr }

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "learner@example.com",
		Name:  "Learner",
	}
}

func newQuizTestRouter(repo *mockQuizStore, jobQueue *mockEnqueuer, svc *analytics.Service) *mux.Router {
	h := NewQuizHandler(repo, jobQueue, svc)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/quizzes").Subrouter())
	return r
}

// decodeData unwraps the {success,data,timestamp} response envelope into target
func decodeData(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("response not successful: %s", envelope.Data)
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func doAuthedRequest(t *testing.T, router *mux.Router, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != nil {
		req = req.WithContext(middleware.SetUserInContext(req.Context(), user))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateQuizEnqueuesJob(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	jobQueue := &mockEnqueuer{}
	svc := analytics.NewService(newMemRecordStore(), nil)
	router := newQuizTestRouter(repo, jobQueue, svc)
	user := testUser()

	w := doAuthedRequest(t, router, user, "POST", "/quizzes", GenerateQuizRequest{
		Title:         "Photosynthesis",
		SourceText:    "Plants convert light into chemical energy.",
		Difficulty:    "easy",
		QuestionCount: 7,
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusAccepted, w.Body.String())
	}

	var quiz models.Quiz
	decodeData(t, w, &quiz)
	if quiz.Status != models.GenerationStatusPending {
		t.Errorf("status = %q, want pending", quiz.Status)
	}
	if quiz.UserID != user.ID {
		t.Errorf("userID = %s, want %s", quiz.UserID, user.ID)
	}

	if len(jobQueue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(jobQueue.jobs))
	}
	job := jobQueue.jobs[0]
	if job.Type != queue.JobTypeQuizGeneration {
		t.Errorf("job type = %q, want %q", job.Type, queue.JobTypeQuizGeneration)
	}
	if job.TargetID != quiz.ID {
		t.Errorf("job targetID = %s, want %s", job.TargetID, quiz.ID)
	}
	if got, ok := job.Metadata["question_count"].(int); !ok || got != 7 {
		t.Errorf("question_count metadata = %v, want 7", job.Metadata["question_count"])
	}
}

func TestGenerateQuizValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  GenerateQuizRequest
	}{
		{"missing title", GenerateQuizRequest{SourceText: "text"}},
		{"missing source text", GenerateQuizRequest{Title: "Algebra"}},
		{"bad difficulty", GenerateQuizRequest{Title: "Algebra", SourceText: "text", Difficulty: "impossible"}},
		{"count too high", GenerateQuizRequest{Title: "Algebra", SourceText: "text", QuestionCount: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newQuizTestRouter(newMockQuizStore(), &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))
			w := doAuthedRequest(t, router, testUser(), "POST", "/quizzes", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGenerateQuizEnqueueFailureMarksFailed(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	jobQueue := &mockEnqueuer{enqueueErr: fmt.Errorf("broker down")}
	router := newQuizTestRouter(repo, jobQueue, analytics.NewService(newMemRecordStore(), nil))

	w := doAuthedRequest(t, router, testUser(), "POST", "/quizzes", GenerateQuizRequest{
		Title:      "Photosynthesis",
		SourceText: "Plants convert light into chemical energy.",
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	for _, quiz := range repo.quizzes {
		if quiz.Status != models.GenerationStatusFailed {
			t.Errorf("quiz status = %q, want failed", quiz.Status)
		}
	}
}

func TestGetQuizOwnership(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	owner := testUser()
	other := testUser()
	quiz := &models.Quiz{
		ID:     uuid.New(),
		UserID: owner.ID,
		Title:  "Cells",
		Status: models.GenerationStatusReady,
	}
	repo.quizzes[quiz.ID] = quiz
	router := newQuizTestRouter(repo, &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))

	w := doAuthedRequest(t, router, owner, "GET", "/quizzes/"+quiz.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner fetch status = %d, want %d", w.Code, http.StatusOK)
	}

	w = doAuthedRequest(t, router, other, "GET", "/quizzes/"+quiz.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other user fetch status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doAuthedRequest(t, router, owner, "GET", "/quizzes/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing quiz status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = doAuthedRequest(t, router, owner, "GET", "/quizzes/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad uuid status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListQuizzesEmptyReturnsArray(t *testing.T) {
	t.Parallel()

	router := newQuizTestRouter(newMockQuizStore(), &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))
	w := doAuthedRequest(t, router, testUser(), "GET", "/quizzes", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var list []models.Quiz
	decodeData(t, w, &list)
	if list == nil {
		t.Error("expected empty array, got null")
	}
	if len(list) != 0 {
		t.Errorf("len(list) = %d, want 0", len(list))
	}
}

func TestCompleteQuizRecordsAttempt(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	owner := testUser()
	quiz := &models.Quiz{
		ID:     uuid.New(),
		UserID: owner.ID,
		Title:  "Cells",
		Status: models.GenerationStatusReady,
	}
	repo.quizzes[quiz.ID] = quiz
	store := newMemRecordStore()
	router := newQuizTestRouter(repo, &mockEnqueuer{}, analytics.NewService(store, nil))

	w := doAuthedRequest(t, router, owner, "POST", "/quizzes/"+quiz.ID.String()+"/complete", CompleteQuizRequest{
		Score:            4,
		TotalQuestions:   5,
		TimeSpentSeconds: 120,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var rec models.AnalyticsRecord
	decodeData(t, w, &rec)
	if rec.TotalQuizzesTaken != 1 {
		t.Errorf("totalQuizzesTaken = %d, want 1", rec.TotalQuizzesTaken)
	}
	if rec.AverageQuizScore != 80 {
		t.Errorf("averageQuizScore = %v, want 80", rec.AverageQuizScore)
	}
	if rec.Streak.Current != 1 {
		t.Errorf("streak = %d, want 1", rec.Streak.Current)
	}
}

func TestCompleteQuizRejectsPendingQuiz(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	owner := testUser()
	quiz := &models.Quiz{
		ID:     uuid.New(),
		UserID: owner.ID,
		Status: models.GenerationStatusPending,
	}
	repo.quizzes[quiz.ID] = quiz
	router := newQuizTestRouter(repo, &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))

	w := doAuthedRequest(t, router, owner, "POST", "/quizzes/"+quiz.ID.String()+"/complete", CompleteQuizRequest{
		Score:          3,
		TotalQuestions: 5,
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestCompleteQuizScoreAboveTotalRejected(t *testing.T) {
	t.Parallel()

	repo := newMockQuizStore()
	owner := testUser()
	quiz := &models.Quiz{
		ID:     uuid.New(),
		UserID: owner.ID,
		Status: models.GenerationStatusReady,
	}
	repo.quizzes[quiz.ID] = quiz
	router := newQuizTestRouter(repo, &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))

	w := doAuthedRequest(t, router, owner, "POST", "/quizzes/"+quiz.ID.String()+"/complete", CompleteQuizRequest{
		Score:          6,
		TotalQuestions: 5,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestQuizRoutesRequireUser(t *testing.T) {
	t.Parallel()

	router := newQuizTestRouter(newMockQuizStore(), &mockEnqueuer{}, analytics.NewService(newMemRecordStore(), nil))
	w := doAuthedRequest(t, router, nil, "GET", "/quizzes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

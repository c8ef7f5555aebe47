package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/nayan947211-pixel/study-buddy/internal/validation"
)

// QuizHandler handles quiz generation and retrieval
type QuizHandler struct {
	repo      database.QuizRepositoryInterface
	jobQueue  queue.JobQueue
	analytics *analytics.Service
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(repo database.QuizRepositoryInterface, jobQueue queue.JobQueue, analyticsService *analytics.Service) *QuizHandler {
	return &QuizHandler{
		repo:      repo,
		jobQueue:  jobQueue,
		analytics: analyticsService,
	}
}

// RegisterRoutes registers quiz routes on the given router
// The router should already have the /quizzes prefix
func (h *QuizHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GenerateQuiz).Methods("POST")
	r.HandleFunc("", h.ListQuizzes).Methods("GET")
	r.HandleFunc("/{id}", h.GetQuiz).Methods("GET")
	r.HandleFunc("/{id}/complete", h.CompleteQuiz).Methods("POST")
}

// GenerateQuizRequest asks the worker pipeline to build a quiz from source text
type GenerateQuizRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=200"`
	SourceText    string `json:"source_text" validate:"required,min=1"`
	Difficulty    string `json:"difficulty" validate:"omitempty,difficulty"`
	QuestionCount int    `json:"question_count" validate:"omitempty,min=1,max=25"`
}

// CompleteQuizRequest reports a finished quiz attempt
type CompleteQuizRequest struct {
	Score            int `json:"score" validate:"min=0"`
	TotalQuestions   int `json:"total_questions" validate:"required,min=1"`
	TimeSpentSeconds int `json:"time_spent_seconds" validate:"min=0"`
}

// GenerateQuiz creates a pending quiz and enqueues a generation job
func (h *QuizHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	req.Title = validation.SanitizeText(strings.TrimSpace(req.Title))
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	difficulty := models.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	quiz := &models.Quiz{
		ID:         uuid.New(),
		UserID:     user.ID,
		Title:      req.Title,
		Difficulty: difficulty,
		Status:     models.GenerationStatusPending,
		SourceText: req.SourceText,
		Questions:  []models.QuizQuestion{},
	}
	if err := h.repo.Create(r.Context(), quiz); err != nil {
		log.Printf("Failed to create quiz: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to create quiz")
		return
	}

	job := queue.NewJob(queue.JobTypeQuizGeneration, user.ID, quiz.ID)
	if req.QuestionCount > 0 {
		job.Metadata["question_count"] = req.QuestionCount
	}
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		log.Printf("Failed to enqueue quiz generation job: %v", err)
		if err := h.repo.SetStatus(r.Context(), quiz.ID, models.GenerationStatusFailed); err != nil {
			log.Printf("Failed to mark quiz failed after enqueue error: %v", err)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to schedule quiz generation")
		return
	}

	respondJSON(w, http.StatusAccepted, quiz)
}

// ListQuizzes returns all quizzes owned by the authenticated user
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	quizzes, err := h.repo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to list quizzes: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to list quizzes")
		return
	}
	if quizzes == nil {
		quizzes = []*models.Quiz{}
	}

	respondJSON(w, http.StatusOK, quizzes)
}

// GetQuiz returns a single quiz by ID
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	quiz, ok := h.ownedQuiz(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, quiz)
}

// CompleteQuiz records a quiz attempt in the user's analytics record
func (h *QuizHandler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	quiz, ok := h.ownedQuiz(w, r, user.ID)
	if !ok {
		return
	}
	if quiz.Status != models.GenerationStatusReady {
		respondJSONError(w, http.StatusConflict, "Quiz not ready", "Quiz generation has not completed")
		return
	}

	var req CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	if req.Score > req.TotalQuestions {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", "Score cannot exceed total questions")
		return
	}

	rec, err := h.analytics.RecordQuizAttempt(r.Context(), user.ID, models.QuizAttempt{
		QuizID:           quiz.ID,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// ownedQuiz loads the quiz from the path ID and enforces ownership. On failure
// it writes the error response and returns ok=false.
func (h *QuizHandler) ownedQuiz(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Quiz, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Quiz ID must be a valid UUID")
		return nil, false
	}

	quiz, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Quiz not found")
			return nil, false
		}
		log.Printf("Failed to get quiz: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to get quiz")
		return nil, false
	}
	if quiz.UserID != userID {
		respondJSONError(w, http.StatusNotFound, "Not found", "Quiz not found")
		return nil, false
	}

	return quiz, true
}

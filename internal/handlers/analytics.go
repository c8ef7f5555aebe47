package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/validation"
)

// AnalyticsHandler handles study event recording and dashboard requests
type AnalyticsHandler struct {
	service       *analytics.Service
	quizRepo      database.QuizRepositoryInterface
	flashcardRepo database.FlashcardRepositoryInterface
	topicRepo     database.TopicRepositoryInterface
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	service *analytics.Service,
	quizRepo database.QuizRepositoryInterface,
	flashcardRepo database.FlashcardRepositoryInterface,
	topicRepo database.TopicRepositoryInterface,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:       service,
		quizRepo:      quizRepo,
		flashcardRepo: flashcardRepo,
		topicRepo:     topicRepo,
	}
}

// RegisterRoutes registers analytics routes on the given router
// The router should already have the /analytics prefix
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/quiz-attempts", h.RecordQuizAttempt).Methods("POST")
	r.HandleFunc("/flashcard-sessions", h.RecordFlashcardSession).Methods("POST")
	r.HandleFunc("/study-sessions", h.RecordStudySession).Methods("POST")
	r.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
}

// QuizAttemptRequest represents a quiz completion event
type QuizAttemptRequest struct {
	QuizID           uuid.UUID  `json:"quiz_id" validate:"required"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions" validate:"required,min=1"`
	TimeSpentSeconds int        `json:"time_spent_seconds" validate:"min=0"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// FlashcardSessionRequest represents a flashcard review event
type FlashcardSessionRequest struct {
	SetID            uuid.UUID  `json:"set_id" validate:"required"`
	CardsReviewed    int        `json:"cards_reviewed" validate:"required,min=1"`
	TimeSpentSeconds int        `json:"time_spent_seconds" validate:"min=0"`
	StudiedAt        *time.Time `json:"studied_at,omitempty"`
}

// StudySessionRequest represents a generic study activity event
type StudySessionRequest struct {
	ActivityType    string     `json:"activity_type" validate:"required,activity_type"`
	DurationMinutes int        `json:"duration_minutes" validate:"min=0"`
	Date            *time.Time `json:"date,omitempty"`
}

// RecordQuizAttempt appends a quiz completion to the user's analytics record
func (h *AnalyticsHandler) RecordQuizAttempt(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req QuizAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	quiz, err := h.quizRepo.GetByID(r.Context(), req.QuizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Quiz not found")
			return
		}
		log.Printf("Failed to get quiz for attempt: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to record quiz attempt")
		return
	}
	if quiz.UserID != user.ID {
		respondJSONError(w, http.StatusNotFound, "Not found", "Quiz not found")
		return
	}

	attempt := models.QuizAttempt{
		QuizID:           req.QuizID,
		Score:            req.Score,
		TotalQuestions:   req.TotalQuestions,
		TimeSpentSeconds: req.TimeSpentSeconds,
	}
	if req.CompletedAt != nil {
		attempt.CompletedAt = *req.CompletedAt
	}

	rec, err := h.service.RecordQuizAttempt(r.Context(), user.ID, attempt)
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// RecordFlashcardSession appends a flashcard review to the user's analytics record
func (h *AnalyticsHandler) RecordFlashcardSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req FlashcardSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	set, err := h.flashcardRepo.GetByID(r.Context(), req.SetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Flashcard set not found")
			return
		}
		log.Printf("Failed to get flashcard set for session: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to record flashcard session")
		return
	}
	if set.UserID != user.ID {
		respondJSONError(w, http.StatusNotFound, "Not found", "Flashcard set not found")
		return
	}

	session := models.FlashcardSession{
		SetID:            req.SetID,
		CardsReviewed:    req.CardsReviewed,
		TimeSpentSeconds: req.TimeSpentSeconds,
	}
	if req.StudiedAt != nil {
		session.StudiedAt = *req.StudiedAt
	}

	rec, err := h.service.RecordFlashcardSession(r.Context(), user.ID, session)
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// RecordStudySession appends a generic study activity to the user's analytics record
func (h *AnalyticsHandler) RecordStudySession(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req StudySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	session := models.StudySession{
		ActivityType:    models.ActivityType(req.ActivityType),
		DurationMinutes: req.DurationMinutes,
	}
	if req.Date != nil {
		session.Date = *req.Date
	}

	rec, err := h.service.RecordStudySession(r.Context(), user.ID, session)
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// GetDashboard assembles the analytics dashboard for the authenticated user
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()
	counts := analytics.CatalogCounts{}

	if h.quizRepo != nil {
		n, err := h.quizRepo.CountByUserID(ctx, user.ID)
		if err != nil {
			log.Printf("Failed to count quizzes for dashboard: %v", err)
		} else {
			counts.TotalQuizzes = n
		}
	}
	if h.flashcardRepo != nil {
		n, err := h.flashcardRepo.CountByUserID(ctx, user.ID)
		if err != nil {
			log.Printf("Failed to count flashcard sets for dashboard: %v", err)
		} else {
			counts.TotalFlashcards = n
		}
	}
	if h.topicRepo != nil {
		total, err := h.topicRepo.CountByUserID(ctx, user.ID, false)
		if err != nil {
			log.Printf("Failed to count topics for dashboard: %v", err)
		} else {
			counts.TotalTopics = total
		}
		completed, err := h.topicRepo.CountByUserID(ctx, user.ID, true)
		if err != nil {
			log.Printf("Failed to count completed topics for dashboard: %v", err)
		} else {
			counts.CompletedTopics = completed
		}
	}

	dashboard, err := h.service.Dashboard(ctx, user.ID, counts)
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// respondAnalyticsError maps analytics error kinds to HTTP status codes
func respondAnalyticsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analytics.ErrValidation):
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, analytics.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, analytics.ErrStateInconsistency):
		log.Printf("Analytics state inconsistency: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "State error", "Analytics state is inconsistent")
	default:
		log.Printf("Analytics error: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to process analytics request")
	}
}

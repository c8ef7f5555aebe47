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

// FlashcardHandler handles flashcard set generation and retrieval
type FlashcardHandler struct {
	repo      database.FlashcardRepositoryInterface
	jobQueue  queue.JobQueue
	analytics *analytics.Service
}

// NewFlashcardHandler creates a new flashcard handler
func NewFlashcardHandler(repo database.FlashcardRepositoryInterface, jobQueue queue.JobQueue, analyticsService *analytics.Service) *FlashcardHandler {
	return &FlashcardHandler{
		repo:      repo,
		jobQueue:  jobQueue,
		analytics: analyticsService,
	}
}

// RegisterRoutes registers flashcard routes on the given router
// The router should already have the /flashcards prefix
func (h *FlashcardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GenerateSet).Methods("POST")
	r.HandleFunc("", h.ListSets).Methods("GET")
	r.HandleFunc("/{id}", h.GetSet).Methods("GET")
	r.HandleFunc("/{id}/review", h.ReviewSet).Methods("POST")
}

// GenerateSetRequest asks the worker pipeline to build a flashcard set
type GenerateSetRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	SourceText string `json:"source_text" validate:"required,min=1"`
	CardCount  int    `json:"card_count" validate:"omitempty,min=1,max=25"`
}

// ReviewSetRequest reports a completed review session over a set
type ReviewSetRequest struct {
	CardsReviewed    int `json:"cards_reviewed" validate:"required,min=1"`
	TimeSpentSeconds int `json:"time_spent_seconds" validate:"min=0"`
}

// GenerateSet creates a pending flashcard set and enqueues a generation job
func (h *FlashcardHandler) GenerateSet(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req GenerateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	req.Title = validation.SanitizeText(strings.TrimSpace(req.Title))
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	set := &models.FlashcardSet{
		ID:         uuid.New(),
		UserID:     user.ID,
		Title:      req.Title,
		Status:     models.GenerationStatusPending,
		SourceText: req.SourceText,
		Cards:      []models.Flashcard{},
	}
	if err := h.repo.Create(r.Context(), set); err != nil {
		log.Printf("Failed to create flashcard set: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to create flashcard set")
		return
	}

	job := queue.NewJob(queue.JobTypeFlashcardGeneration, user.ID, set.ID)
	if req.CardCount > 0 {
		job.Metadata["card_count"] = req.CardCount
	}
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		log.Printf("Failed to enqueue flashcard generation job: %v", err)
		if err := h.repo.SetStatus(r.Context(), set.ID, models.GenerationStatusFailed); err != nil {
			log.Printf("Failed to mark flashcard set failed after enqueue error: %v", err)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to schedule flashcard generation")
		return
	}

	respondJSON(w, http.StatusAccepted, set)
}

// ListSets returns all flashcard sets owned by the authenticated user
func (h *FlashcardHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	sets, err := h.repo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to list flashcard sets: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to list flashcard sets")
		return
	}
	if sets == nil {
		sets = []*models.FlashcardSet{}
	}

	respondJSON(w, http.StatusOK, sets)
}

// GetSet returns a single flashcard set by ID
func (h *FlashcardHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	set, ok := h.ownedSet(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, set)
}

// ReviewSet records a flashcard review session in the user's analytics record
func (h *FlashcardHandler) ReviewSet(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	set, ok := h.ownedSet(w, r, user.ID)
	if !ok {
		return
	}
	if set.Status != models.GenerationStatusReady {
		respondJSONError(w, http.StatusConflict, "Set not ready", "Flashcard generation has not completed")
		return
	}

	var req ReviewSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	rec, err := h.analytics.RecordFlashcardSession(r.Context(), user.ID, models.FlashcardSession{
		SetID:            set.ID,
		CardsReviewed:    req.CardsReviewed,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		respondAnalyticsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}

// ownedSet loads the set from the path ID and enforces ownership. On failure
// it writes the error response and returns ok=false.
func (h *FlashcardHandler) ownedSet(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.FlashcardSet, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Set ID must be a valid UUID")
		return nil, false
	}

	set, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Flashcard set not found")
			return nil, false
		}
		log.Printf("Failed to get flashcard set: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to get flashcard set")
		return nil, false
	}
	if set.UserID != userID {
		respondJSONError(w, http.StatusNotFound, "Not found", "Flashcard set not found")
		return nil, false
	}

	return set, true
}

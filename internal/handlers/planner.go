package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/validation"
)

// PlannerHandler handles study topic planning
type PlannerHandler struct {
	repo      database.TopicRepositoryInterface
	analytics *analytics.Service
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(repo database.TopicRepositoryInterface, analyticsService *analytics.Service) *PlannerHandler {
	return &PlannerHandler{
		repo:      repo,
		analytics: analyticsService,
	}
}

// RegisterRoutes registers planner routes on the given router
// The router should already have the /planner/topics prefix
func (h *PlannerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateTopic).Methods("POST")
	r.HandleFunc("", h.ListTopics).Methods("GET")
	r.HandleFunc("/{id}", h.GetTopic).Methods("GET")
	r.HandleFunc("/{id}/complete", h.CompleteTopic).Methods("POST")
}

// CreateTopicRequest creates a planner topic. Scheduling is derived from the
// priority rather than supplied by the client.
type CreateTopicRequest struct {
	Title                string `json:"title" validate:"required,min=1,max=200"`
	Description          string `json:"description" validate:"max=2000"`
	Difficulty           string `json:"difficulty" validate:"omitempty,difficulty"`
	Priority             string `json:"priority" validate:"omitempty,priority"`
	EstimatedTimeMinutes int    `json:"estimated_time_minutes" validate:"omitempty,min=1,max=1440"`
}

// CreateTopic creates a study topic scheduled by priority
func (h *PlannerHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	req.Title = validation.SanitizeText(strings.TrimSpace(req.Title))
	req.Description = validation.SanitizeText(req.Description)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	difficulty := models.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	priority := models.Priority(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	topic := &models.StudyTopic{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Title:                req.Title,
		Description:          req.Description,
		Difficulty:           difficulty,
		Priority:             priority,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		ScheduledFor:         time.Now().AddDate(0, 0, priority.ScheduleOffsetDays()),
	}
	if err := h.repo.Create(r.Context(), topic); err != nil {
		log.Printf("Failed to create study topic: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to create study topic")
		return
	}

	respondJSON(w, http.StatusCreated, topic)
}

// ListTopics returns all study topics owned by the authenticated user
func (h *PlannerHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	topics, err := h.repo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to list study topics: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to list study topics")
		return
	}
	if topics == nil {
		topics = []*models.StudyTopic{}
	}

	respondJSON(w, http.StatusOK, topics)
}

// GetTopic returns a single study topic by ID
func (h *PlannerHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Topic ID must be a valid UUID")
		return
	}

	topic, err := h.repo.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Study topic not found")
			return
		}
		log.Printf("Failed to get study topic: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to get study topic")
		return
	}

	respondJSON(w, http.StatusOK, topic)
}

// CompleteTopic marks a topic complete and records a planner study session
func (h *PlannerHandler) CompleteTopic(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Topic ID must be a valid UUID")
		return
	}

	topic, err := h.repo.MarkComplete(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusNotFound, "Not found", "Study topic not found")
			return
		}
		log.Printf("Failed to complete study topic: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Internal error", "Failed to complete study topic")
		return
	}

	// Completing a topic counts toward the streak even when the estimated
	// time is unset.
	if _, err := h.analytics.RecordStudySession(r.Context(), user.ID, models.StudySession{
		ActivityType:    models.ActivityTypePlanner,
		DurationMinutes: topic.EstimatedTimeMinutes,
	}); err != nil {
		log.Printf("Failed to record planner study session: %v", err)
	}

	respondJSON(w, http.StatusOK, topic)
}

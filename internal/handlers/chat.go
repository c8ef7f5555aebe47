package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/services/ai"
	"github.com/nayan947211-pixel/study-buddy/internal/validation"
)

// maxChatHistoryMessages bounds how much client-supplied history is forwarded
// to the provider.
const maxChatHistoryMessages = 20

// ChatHandler handles stateless AI tutoring chat. The client carries the
// conversation history and sends it with each request.
type ChatHandler struct {
	provider  ai.AIProvider
	analytics *analytics.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(provider ai.AIProvider, analyticsService *analytics.Service) *ChatHandler {
	return &ChatHandler{
		provider:  provider,
		analytics: analyticsService,
	}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat", h.SendMessage).Methods("POST")
}

// ChatMessageRequest carries the new message plus prior exchanges
type ChatMessageRequest struct {
	Message string           `json:"message" validate:"required,min=1,max=4000"`
	History []ChatHistoryMsg `json:"history" validate:"max=50,dive"`
}

// ChatHistoryMsg is a prior message in the conversation
type ChatHistoryMsg struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// ChatMessageResponse is the assistant's reply
type ChatMessageResponse struct {
	Message string `json:"message"`
}

// SendMessage forwards the conversation to the AI provider and returns the reply
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	history := req.History
	if len(history) > maxChatHistoryMessages {
		history = history[len(history)-maxChatHistoryMessages:]
	}

	messages := make([]ai.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: req.Message})

	resp, err := h.provider.Chat(r.Context(), messages)
	if err != nil {
		log.Printf("Chat completion failed: %v", err)
		respondJSONError(w, http.StatusBadGateway, "Provider error", "Failed to get chat response")
		return
	}

	// Chat turns count toward the study streak; the duration is unknown so
	// record zero minutes.
	if _, err := h.analytics.RecordStudySession(r.Context(), user.ID, models.StudySession{
		ActivityType: models.ActivityTypeChat,
	}); err != nil {
		log.Printf("Failed to record chat study session: %v", err)
	}

	respondJSON(w, http.StatusOK, ChatMessageResponse{Message: resp.Message})
}

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
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/middleware"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/services/auth"
	"github.com/nayan947211-pixel/study-buddy/internal/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userRepo database.UserRepositoryInterface
	tokens   *auth.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo database.UserRepositoryInterface, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, tokens: tokens}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/v1/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes registers routes that require authentication
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a signed token and the authenticated user
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account and returns a token
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = validation.SanitizeText(req.Name)

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	ctx := r.Context()

	if _, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil {
		respondJSONError(w, http.StatusConflict, "Email taken", "An account with this email already exists")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("Database error while checking email: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Database error", "Failed to check existing accounts")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid password", err.Error())
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		log.Printf("Failed to create user: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Database error", "Failed to create account")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Token error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login authenticates a user and returns a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondJSONError(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
			return
		}
		log.Printf("Database error while fetching user: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Database error", "Failed to look up account")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondJSONError(w, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		respondJSONError(w, http.StatusInternalServerError, "Token error", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

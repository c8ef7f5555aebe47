package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// All endpoints answer with the same envelope: {success, data, timestamp}
// on success, {success, error, message, timestamp} on failure. Clients key
// off the success flag rather than inspecting status codes for shape.

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeEnvelope(w, status, map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage caps outbound error text. Validation errors can echo
// request content, so nothing longer than 200 characters leaves the API.
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

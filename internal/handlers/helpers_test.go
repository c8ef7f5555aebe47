package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRespondJSONEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		data   any
		check  func(*testing.T, map[string]any)
	}{
		{
			name:   "object data",
			status: http.StatusOK,
			data:   map[string]string{"message": "hello"},
			check: func(t *testing.T, body map[string]any) {
				data, ok := body["data"].(map[string]any)
				if !ok {
					t.Fatalf("data = %T, want object", body["data"])
				}
				if data["message"] != "hello" {
					t.Errorf("message = %v, want hello", data["message"])
				}
			},
		},
		{
			name:   "nil data",
			status: http.StatusCreated,
			data:   nil,
			check: func(t *testing.T, body map[string]any) {
				if body["data"] != nil {
					t.Errorf("data = %v, want nil", body["data"])
				}
			},
		},
		{
			name:   "array data",
			status: http.StatusOK,
			data:   []string{"a", "b", "c"},
			check: func(t *testing.T, body map[string]any) {
				data, ok := body["data"].([]any)
				if !ok {
					t.Fatalf("data = %T, want array", body["data"])
				}
				if len(data) != 3 {
					t.Errorf("len(data) = %d, want 3", len(data))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSON(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if success, ok := body["success"].(bool); !ok || !success {
				t.Error("success flag should be true")
			}
			ts, ok := body["timestamp"].(string)
			if !ok {
				t.Fatal("timestamp missing")
			}
			if _, err := time.Parse(time.RFC3339, ts); err != nil {
				t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
			}
			tt.check(t, body)
		})
	}
}

func TestRespondJSONErrorEnvelope(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid input")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("success flag should be false")
	}
	if body["error"] != "Bad Request" {
		t.Errorf("error = %v, want Bad Request", body["error"])
	}
	if body["message"] != "Invalid input" {
		t.Errorf("message = %v, want Invalid input", body["message"])
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Error("timestamp missing")
	}
}

func TestRespondJSONErrorTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Validation failed", strings.Repeat("x", 500))

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	msg, ok := body["message"].(string)
	if !ok {
		t.Fatal("message missing")
	}
	if len(msg) != 203 || !strings.HasSuffix(msg, "...") {
		t.Errorf("message length = %d, want 200 chars plus ellipsis", len(msg))
	}
}

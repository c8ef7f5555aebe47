package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nayan947211-pixel/study-buddy/internal/analytics"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// mockTopicStore is a map-backed topic repository
type mockTopicStore struct {
	mu     sync.Mutex
	topics map[uuid.UUID]*models.StudyTopic
}

func newMockTopicStore() *mockTopicStore {
	return &mockTopicStore{topics: make(map[uuid.UUID]*models.StudyTopic)}
}

func (s *mockTopicStore) Create(_ context.Context, topic *models.StudyTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *topic
	s.topics[topic.ID] = &clone
	return nil
}

func (s *mockTopicStore) GetByID(_ context.Context, id, userID uuid.UUID) (*models.StudyTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[id]
	if !ok || topic.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *topic
	return &clone, nil
}

func (s *mockTopicStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.StudyTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.StudyTopic
	for _, topic := range s.topics {
		if topic.UserID == userID {
			clone := *topic
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *mockTopicStore) MarkComplete(_ context.Context, id, userID uuid.UUID) (*models.StudyTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[id]
	if !ok || topic.UserID != userID {
		return nil, sql.ErrNoRows
	}
	now := time.Now()
	topic.Completed = true
	topic.CompletedAt = &now
	clone := *topic
	return &clone, nil
}

func (s *mockTopicStore) CountByUserID(_ context.Context, userID uuid.UUID, completedOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, topic := range s.topics {
		if topic.UserID != userID {
			continue
		}
		if completedOnly && !topic.Completed {
			continue
		}
		count++
	}
	return count, nil
}

func newPlannerTestRouter(repo *mockTopicStore, svc *analytics.Service) *mux.Router {
	h := NewPlannerHandler(repo, svc)
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/planner/topics").Subrouter())
	return r
}

func TestCreateTopicSchedulesByPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		priority   string
		wantOffset int
	}{
		{"high priority tomorrow", "high", 1},
		{"default medium", "", 3},
		{"low priority next week", "low", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newPlannerTestRouter(newMockTopicStore(), analytics.NewService(newMemRecordStore(), nil))
			before := time.Now()
			w := doAuthedRequest(t, router, testUser(), "POST", "/planner/topics", CreateTopicRequest{
				Title:    "Linear algebra review",
				Priority: tt.priority,
			})
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
			}

			var topic models.StudyTopic
			decodeData(t, w, &topic)

			want := before.AddDate(0, 0, tt.wantOffset)
			diff := topic.ScheduledFor.Sub(want)
			if diff < -time.Minute || diff > time.Minute {
				t.Errorf("scheduledFor = %v, want about %v", topic.ScheduledFor, want)
			}
		})
	}
}

func TestCreateTopicValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  CreateTopicRequest
	}{
		{"missing title", CreateTopicRequest{Priority: "high"}},
		{"bad priority", CreateTopicRequest{Title: "Algebra", Priority: "urgent"}},
		{"bad difficulty", CreateTopicRequest{Title: "Algebra", Difficulty: "brutal"}},
		{"negative estimate", CreateTopicRequest{Title: "Algebra", EstimatedTimeMinutes: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newPlannerTestRouter(newMockTopicStore(), analytics.NewService(newMemRecordStore(), nil))
			w := doAuthedRequest(t, router, testUser(), "POST", "/planner/topics", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestCompleteTopicRecordsStudySession(t *testing.T) {
	t.Parallel()

	repo := newMockTopicStore()
	owner := testUser()
	topic := &models.StudyTopic{
		ID:                   uuid.New(),
		UserID:               owner.ID,
		Title:                "Thermodynamics",
		Priority:             models.PriorityMedium,
		EstimatedTimeMinutes: 45,
	}
	repo.topics[topic.ID] = topic
	store := newMemRecordStore()
	router := newPlannerTestRouter(repo, analytics.NewService(store, nil))

	w := doAuthedRequest(t, router, owner, "POST", "/planner/topics/"+topic.ID.String()+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var completed models.StudyTopic
	decodeData(t, w, &completed)
	if !completed.Completed {
		t.Error("topic not marked completed")
	}

	rec, err := store.GetByUserID(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("analytics record not created: %v", err)
	}
	if len(rec.StudySessions) != 1 {
		t.Fatalf("studySessions = %d, want 1", len(rec.StudySessions))
	}
	if rec.StudySessions[0].ActivityType != models.ActivityTypePlanner {
		t.Errorf("activityType = %q, want planner", rec.StudySessions[0].ActivityType)
	}
	if rec.StudySessions[0].DurationMinutes != 45 {
		t.Errorf("durationMinutes = %d, want 45", rec.StudySessions[0].DurationMinutes)
	}
}

func TestCompleteTopicOwnership(t *testing.T) {
	t.Parallel()

	repo := newMockTopicStore()
	owner := testUser()
	topic := &models.StudyTopic{ID: uuid.New(), UserID: owner.ID, Title: "Optics"}
	repo.topics[topic.ID] = topic
	router := newPlannerTestRouter(repo, analytics.NewService(newMemRecordStore(), nil))

	w := doAuthedRequest(t, router, testUser(), "POST", "/planner/topics/"+topic.ID.String()+"/complete", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

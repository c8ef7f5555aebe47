package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	quizID := uuid.New()

	job := NewJob(JobTypeQuizGeneration, userID, quizID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeQuizGeneration {
		t.Errorf("Expected job type to be %s, got %s", JobTypeQuizGeneration, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID to be %s, got %s", userID, job.UserID)
	}
	if job.TargetID != quizID {
		t.Errorf("Expected target ID to be %s, got %s", quizID, job.TargetID)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no time constraints",
			job: &Job{
				ID:     uuid.New(),
				Type:   JobTypeQuizGeneration,
				UserID: userID,
			},
			want: true,
		},
		{
			name: "not before in past",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeQuizGeneration,
				UserID:    userID,
				NotBefore: timePtr(now.Add(-1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "not before in future",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeQuizGeneration,
				UserID:    userID,
				NotBefore: timePtr(now.Add(1 * time.Hour)),
			},
			want: false,
		},
		{
			name: "not after in past",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeFlashcardGeneration,
				UserID:   userID,
				NotAfter: timePtr(now.Add(-1 * time.Hour)),
			},
			want: false,
		},
		{
			name: "not after in future",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeFlashcardGeneration,
				UserID:   userID,
				NotAfter: timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "within time window",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeQuizGeneration,
				UserID:    userID,
				NotBefore: timePtr(now.Add(-1 * time.Hour)),
				NotAfter:  timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "outside time window - before",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeQuizGeneration,
				UserID:    userID,
				NotBefore: timePtr(now.Add(1 * time.Hour)),
				NotAfter:  timePtr(now.Add(2 * time.Hour)),
			},
			want: false,
		},
		{
			name: "outside time window - after",
			job: &Job{
				ID:        uuid.New(),
				Type:      JobTypeQuizGeneration,
				UserID:    userID,
				NotBefore: timePtr(now.Add(-2 * time.Hour)),
				NotAfter:  timePtr(now.Add(-1 * time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.job.ShouldProcess()
			if got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no expiration",
			job: &Job{
				ID:     uuid.New(),
				Type:   JobTypeQuizGeneration,
				UserID: userID,
			},
			want: false,
		},
		{
			name: "expired",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeQuizGeneration,
				UserID:   userID,
				NotAfter: timePtr(now.Add(-1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "not expired",
			job: &Job{
				ID:       uuid.New(),
				Type:     JobTypeQuizGeneration,
				UserID:   userID,
				NotAfter: timePtr(now.Add(1 * time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.job.IsExpired()
			if got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_CanRetry(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		retryCount int
		maxRetries int
		want       bool
	}{
		{
			name:       "can retry - no retries yet",
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "can retry - one retry",
			retryCount: 1,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "can retry - max retries minus one",
			retryCount: 2,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "cannot retry - at max retries",
			retryCount: 3,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "cannot retry - exceeded max retries",
			retryCount: 4,
			maxRetries: 3,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{
				ID:         uuid.New(),
				Type:       JobTypeQuizGeneration,
				UserID:     userID,
				RetryCount: tt.retryCount,
				MaxRetries: tt.maxRetries,
			}
			got := job.CanRetry()
			if got != tt.want {
				t.Errorf("CanRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IncrementRetry(t *testing.T) {
	t.Parallel()

	job := &Job{
		ID:         uuid.New(),
		Type:       JobTypeFlashcardGeneration,
		UserID:     uuid.New(),
		RetryCount: 0,
		MaxRetries: 3,
	}

	for want := 1; want <= 3; want++ {
		job.IncrementRetry()
		if job.RetryCount != want {
			t.Errorf("Expected retry count to be %d after increment, got %d", want, job.RetryCount)
		}
	}
}

// Helper function to create time pointers
func timePtr(t time.Time) *time.Time {
	return &t
}

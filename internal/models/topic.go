package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority determines how soon a study topic is scheduled
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ScheduleOffsetDays returns how many days from now a topic with this priority
// should be scheduled for.
func (p Priority) ScheduleOffsetDays() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 7
	default:
		return 3
	}
}

// StudyTopic is a planner entry
type StudyTopic struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Difficulty           Difficulty `json:"difficulty"`
	Priority             Priority   `json:"priority"`
	EstimatedTimeMinutes int        `json:"estimated_time_minutes"`
	ScheduledFor         time.Time  `json:"scheduled_for"`
	Completed            bool       `json:"completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

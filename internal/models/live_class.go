package models

import "time"

// Live class lifecycle statuses.
const (
	LiveClassScheduled = "scheduled"
	LiveClassLive      = "live"
	LiveClassCompleted = "completed"
)

// LiveClass is a scheduled online session a teacher runs for one class
// scope. Only stored metadata; the meeting itself happens on an external
// platform.
type LiveClass struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ReferenceID     string     `gorm:"size:64;uniqueIndex;not null" json:"reference_id"`
	TeacherID       uint       `gorm:"index;not null" json:"teacher_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	ClassName       string     `gorm:"size:64;index;not null" json:"class_name"`
	Platform        string     `gorm:"size:64" json:"platform"`
	ScheduledAt     time.Time  `gorm:"index" json:"scheduled_time"`
	DurationMinutes int        `json:"duration"`
	MeetingURL      string     `gorm:"size:512" json:"meeting_url"`
	Status          string     `gorm:"size:32;index;not null" json:"status"`
	RecordingURL    *string    `gorm:"size:512" json:"recording_url"`
	StartedAt       *time.Time `json:"actual_start_time"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types recorded in the progress ledger.
const (
	ActivityReading = "reading"
	ActivityQuiz    = "quiz"
)

// Progress record statuses.
const (
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// ProgressRecord is one entry in a student's append-only activity ledger.
// Exactly the reference subset relevant to the activity type is populated;
// Score is present only for completed quiz activities and its absence means
// "no score", not zero.
type ProgressRecord struct {
	ID           uint              `gorm:"primaryKey" json:"progress_id"`
	StudentID    uint              `gorm:"index;not null" json:"student_id"`
	CourseID     uint              `gorm:"index;not null" json:"course_id"`
	TopicID      *uint             `gorm:"index" json:"topic_id"`
	SubtopicID   *uint             `json:"subtopic_id"`
	MaterialID   *uint             `gorm:"index" json:"material_id"`
	QuizID       *uint             `gorm:"index" json:"quiz_id"`
	QuestionID   *uint             `json:"question_id"`
	ActivityType string            `gorm:"size:32;index;not null" json:"activity_type"`
	Status       string            `gorm:"size:32;index;not null" json:"status"`
	Score        *float64          `json:"score"`
	RecordedAt   time.Time         `gorm:"index" json:"timestamp"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// ProgressCreateRequest logs one learning event into the ledger.
type ProgressCreateRequest struct {
	CourseID     uint                   `json:"course_id" validate:"required"`
	TopicID      *uint                  `json:"topic_id"`
	SubtopicID   *uint                  `json:"subtopic_id"`
	MaterialID   *uint                  `json:"material_id"`
	QuizID       *uint                  `json:"quiz_id"`
	QuestionID   *uint                  `json:"question_id"`
	ActivityType string                 `json:"activity_type" validate:"required,oneof=reading quiz"`
	Status       string                 `json:"status" validate:"required,oneof=in_progress completed"`
	Score        *float64               `json:"score" validate:"omitempty,gte=0"`
	Timestamp    *time.Time             `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// ProgressUpdateRequest partially merges fields into an existing record.
type ProgressUpdateRequest struct {
	Status   *string                `json:"status" validate:"omitempty,oneof=in_progress completed"`
	Score    *float64               `json:"score" validate:"omitempty,gte=0"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ProgressResponse is the ledger entry as returned to clients.
type ProgressResponse struct {
	ProgressID   uint                   `json:"progress_id"`
	StudentID    uint                   `json:"student_id"`
	CourseID     uint                   `json:"course_id"`
	TopicID      *uint                  `json:"topic_id"`
	SubtopicID   *uint                  `json:"subtopic_id"`
	MaterialID   *uint                  `json:"material_id"`
	QuizID       *uint                  `json:"quiz_id"`
	QuestionID   *uint                  `json:"question_id"`
	ActivityType string                 `json:"activity_type"`
	Status       string                 `json:"status"`
	Score        *float64               `json:"score"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// NewProgressResponse maps a ledger record onto the response shape.
func NewProgressResponse(record models.ProgressRecord) ProgressResponse {
	metadata := map[string]interface{}(record.Metadata)
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return ProgressResponse{
		ProgressID:   record.ID,
		StudentID:    record.StudentID,
		CourseID:     record.CourseID,
		TopicID:      record.TopicID,
		SubtopicID:   record.SubtopicID,
		MaterialID:   record.MaterialID,
		QuizID:       record.QuizID,
		QuestionID:   record.QuestionID,
		ActivityType: record.ActivityType,
		Status:       record.Status,
		Score:        record.Score,
		Timestamp:    record.RecordedAt,
		Metadata:     metadata,
	}
}

// ScorePoint is one entry on a topic's score timeline.
type ScorePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
	TimeSpent int       `json:"time_spent"`
}

// TopicVisuals is the per-topic rollup used for charting. Score lists keep
// encounter order.
type TopicVisuals struct {
	Quizzes         int            `json:"quizzes"`
	MaterialsRead   int            `json:"materials_read"`
	AvgScore        float64        `json:"avg_score"`
	MaxQuizScore    float64        `json:"max_quiz_score"`
	QuizScores      []float64      `json:"quiz_scores"`
	ScoreTimeline   []ScorePoint   `json:"score_timeline"`
	TimeSpentPerDay map[string]int `json:"time_spent_per_day"`
	TimeSpent       int            `json:"time_spent"`
}

// QuizAttempt is one quiz entry of the performance feed.
type QuizAttempt struct {
	QuizID    *uint    `json:"quiz_id"`
	QuizTitle string   `json:"quiz_title"`
	Status    string   `json:"status"`
	Score     *float64 `json:"score"`
}

// PerformanceSummary condenses quiz progress for downstream consumers such
// as the recommendation advisor.
type PerformanceSummary struct {
	TotalScore      float64       `json:"total_score"`
	AverageScore    float64       `json:"average_score"`
	CompletedTopics int           `json:"completed_topics"`
	ProgressDetails []QuizAttempt `json:"progress_details"`
}

// DeleteProgressResponse reports a ledger wipe.
type DeleteProgressResponse struct {
	StudentID uint  `json:"student_id"`
	Removed   int64 `json:"removed"`
}

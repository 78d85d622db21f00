package dto

import "time"

// QuizPerformance aggregates completed, scored quiz records for one
// student. Records with a missing or zero score are excluded from both the
// count and the average.
type QuizPerformance struct {
	AverageScore float64   `json:"average_score"`
	TotalScore   float64   `json:"total_score"`
	QuizCount    int       `json:"quiz_count"`
	MaxScore     float64   `json:"max_score"`
	AllScores    []float64 `json:"all_scores,omitempty"`
}

// StudentSummary is one student's row in a class analytics response.
type StudentSummary struct {
	StudentID       uint            `json:"student_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	PhotoURL        *string         `json:"photo_url"`
	CompletionRate  float64         `json:"completion_rate"`
	QuizPerformance QuizPerformance `json:"quiz_performance"`
	IsActive        bool            `json:"is_active"`
}

// ClassSummary carries class-wide averages.
type ClassSummary struct {
	TotalStudents         int     `json:"total_students"`
	ActiveStudents        int     `json:"active_students"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
	AverageQuizScore      float64 `json:"average_quiz_score"`
	StudentsWithProgress  int     `json:"students_with_progress"`
}

// ClassAnalyticsResponse is the full class rollup: summary plus students
// ranked by completion rate, best first.
type ClassAnalyticsResponse struct {
	ClassName       string           `json:"class_name"`
	ClassSummary    ClassSummary     `json:"class_summary"`
	StudentsDetails []StudentSummary `json:"students_details"`
	GeneratedAt     time.Time        `json:"generated_at"`
	CacheHit        bool             `json:"cache_hit"`
}

// StudentInfo identifies a student inside composite analytics payloads.
type StudentInfo struct {
	StudentID uint    `json:"student_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Class     string  `json:"class"`
	PhotoURL  *string `json:"photo_url"`
}

// AccurateMetrics pairs the hierarchy-based completion rate with the quiz
// performance rollup.
type AccurateMetrics struct {
	CompletionRate  float64         `json:"completion_rate"`
	QuizPerformance QuizPerformance `json:"quiz_performance"`
	IsActive        bool            `json:"is_active"`
}

// StudentDetailResponse is the teacher-facing composite for one student:
// accurate metrics, per-topic visuals and the most recent activity.
type StudentDetailResponse struct {
	StudentInfo      StudentInfo             `json:"student_info"`
	AccurateMetrics  AccurateMetrics         `json:"accurate_metrics"`
	VisualAnalytics  map[string]TopicVisuals `json:"visual_analytics"`
	DetailedProgress []ProgressResponse      `json:"detailed_progress"`
}

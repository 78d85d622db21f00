package dto

import (
	"time"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// ClassStudent is one student row in a teacher's class listing, with a
// lightweight ledger-based progress fraction.
type ClassStudent struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	PhotoURL   *string    `json:"photo_url"`
	Progress   float64    `json:"progress"`
	LastActive *time.Time `json:"last_active"`
}

// StudentProgressRow is one student row in a class progress overview.
type StudentProgressRow struct {
	StudentID           uint       `json:"student_id"`
	StudentName         string     `json:"student_name"`
	StudentEmail        string     `json:"student_email"`
	PhotoURL            *string    `json:"photo_url"`
	TotalActivities     int        `json:"total_activities"`
	CompletedActivities int        `json:"completed_activities"`
	CompletionRate      float64    `json:"completion_rate"`
	AverageQuizScore    float64    `json:"average_quiz_score"`
	LastActive          *time.Time `json:"last_active"`
}

// ClassAverages carries the overview's class-wide figures.
type ClassAverages struct {
	AvgCompletionRate float64 `json:"avg_completion_rate"`
	AvgQuizScore      float64 `json:"avg_quiz_score"`
	ActiveStudents    int     `json:"active_students"`
}

// ClassProgressOverview summarises every student in a class, ranked by
// completion rate descending.
type ClassProgressOverview struct {
	ClassName        string               `json:"class_name"`
	TotalStudents    int                  `json:"total_students"`
	StudentsProgress []StudentProgressRow `json:"students_progress"`
	ClassAverages    ClassAverages        `json:"class_averages"`
}

// StudentProgressDetail is the teacher view of one student's raw ledger
// with summary statistics.
type StudentProgressDetail struct {
	StudentID           uint               `json:"student_id"`
	StudentName         string             `json:"student_name"`
	StudentClass        string             `json:"student_class"`
	TotalActivities     int                `json:"total_activities"`
	CompletedActivities int                `json:"completed_activities"`
	CompletionRate      float64            `json:"completion_rate"`
	AverageQuizScore    float64            `json:"average_quiz_score"`
	RecentActivities    []ProgressResponse `json:"recent_activities"`
	DetailedProgress    []ProgressResponse `json:"detailed_progress"`
}

// LiveClassCreateRequest schedules a new live session.
type LiveClassCreateRequest struct {
	Title         string    `json:"title" validate:"required,max=255"`
	Description   string    `json:"description"`
	ClassName     string    `json:"class_name" validate:"required"`
	Platform      string    `json:"platform"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
	MeetingURL    string    `json:"meeting_url" validate:"required,url"`
	Duration      int       `json:"duration" validate:"omitempty,gt=0"`
}

// ShareRecordingRequest attaches a recording to a finished session.
type ShareRecordingRequest struct {
	RecordingURL string `json:"recording_url" validate:"required,url"`
}

// LiveClassResponse mirrors a stored live session.
type LiveClassResponse struct {
	ID            string     `json:"id"`
	TeacherID     uint       `json:"teacher_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ClassName     string     `json:"class_name"`
	Platform      string     `json:"platform"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Duration      int        `json:"duration"`
	MeetingURL    string     `json:"meeting_url"`
	Status        string     `json:"status"`
	RecordingURL  *string    `json:"recording_url"`
	StartedAt     *time.Time `json:"actual_start_time"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewLiveClassResponse maps a stored session onto the response shape.
func NewLiveClassResponse(class models.LiveClass) LiveClassResponse {
	return LiveClassResponse{
		ID:            class.ReferenceID,
		TeacherID:     class.TeacherID,
		Title:         class.Title,
		Description:   class.Description,
		ClassName:     class.ClassName,
		Platform:      class.Platform,
		ScheduledTime: class.ScheduledAt,
		Duration:      class.DurationMinutes,
		MeetingURL:    class.MeetingURL,
		Status:        class.Status,
		RecordingURL:  class.RecordingURL,
		StartedAt:     class.StartedAt,
		CompletedAt:   class.CompletedAt,
		CreatedAt:     class.CreatedAt,
	}
}

// TeacherProfileResponse mirrors a teacher profile.
type TeacherProfileResponse struct {
	UserID               *uint    `json:"user_id"`
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Subject              string   `json:"subject"`
	Bio                  string   `json:"bio"`
	PhotoURL             *string  `json:"photo_url"`
	AllottedClasses      []string `json:"allotted_classes"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
	EmailNotifications   bool     `json:"email_notifications"`
	AutoRecord           bool     `json:"auto_record"`
	TotalStudents        int      `json:"total_students"`
	ClassesHeld          int      `json:"classes_held"`
	ContentCreated       int      `json:"content_created"`
	AverageRating        float64  `json:"average_rating"`
}

// NewTeacherProfileResponse maps a profile model onto the response shape.
func NewTeacherProfileResponse(profile models.TeacherProfile) TeacherProfileResponse {
	classes := profile.AllottedClasses
	if classes == nil {
		classes = []string{}
	}
	return TeacherProfileResponse{
		UserID:               profile.UserID,
		Name:                 profile.Name,
		Email:                profile.Email,
		Subject:              profile.Subject,
		Bio:                  profile.Bio,
		PhotoURL:             profile.PhotoURL,
		AllottedClasses:      classes,
		NotificationsEnabled: profile.NotificationsOn,
		EmailNotifications:   profile.EmailNotifications,
		AutoRecord:           profile.AutoRecord,
		TotalStudents:        profile.TotalStudents,
		ClassesHeld:          profile.ClassesHeld,
		ContentCreated:       profile.ContentCreated,
		AverageRating:        profile.AverageRating,
	}
}

// TeacherProfileUpdateRequest partially updates profile fields.
type TeacherProfileUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	Subject *string `json:"subject" validate:"omitempty,max=128"`
	Bio     *string `json:"bio"`
}

// TeacherPreferencesRequest partially updates preference flags.
type TeacherPreferencesRequest struct {
	NotificationsEnabled *bool `json:"notifications_enabled"`
	EmailNotifications   *bool `json:"email_notifications"`
	AutoRecord           *bool `json:"auto_record"`
}

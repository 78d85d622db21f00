package dto

import "time"

// TeacherCreateRequest registers a new teacher.
type TeacherCreateRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Email           string   `json:"email" validate:"required,email"`
	Subject         string   `json:"subject" validate:"required,max=128"`
	Bio             string   `json:"bio"`
	AllottedClasses []string `json:"allotted_classes" validate:"required,min=1,dive,required"`
}

// TeacherUpdateRequest edits an existing teacher, addressed by email.
type TeacherUpdateRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Name            *string  `json:"name" validate:"omitempty,max=255"`
	Subject         *string  `json:"subject" validate:"omitempty,max=128"`
	Bio             *string  `json:"bio"`
	AllottedClasses []string `json:"allotted_classes" validate:"omitempty,min=1,dive,required"`
}

// TeacherMutationResponse acknowledges an admin mutation.
type TeacherMutationResponse struct {
	Message       string   `json:"message"`
	TeacherID     *uint    `json:"teacher_id,omitempty"`
	Email         string   `json:"email"`
	Name          string   `json:"name,omitempty"`
	UpdatedFields []string `json:"updated_fields,omitempty"`
}

// TeacherOverviewRow summarises one teacher for the admin dashboard.
type TeacherOverviewRow struct {
	TeacherID        *uint      `json:"teacher_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Subject          string     `json:"subject"`
	Bio              string     `json:"bio"`
	AllottedClasses  []string   `json:"allotted_classes"`
	ClassCount       int        `json:"class_count"`
	TotalStudents    int        `json:"total_students"`
	ClassesConducted int        `json:"classes_conducted"`
	ContentCreated   int        `json:"content_created"`
	IsActive         bool       `json:"is_active"`
	AverageRating    float64    `json:"average_rating"`
	CreatedAt        *time.Time `json:"created_at"`
}

// TeacherOverallStats carries totals across all teachers.
type TeacherOverallStats struct {
	TotalTeachers         int     `json:"total_teachers"`
	ActiveTeachers        int     `json:"active_teachers"`
	TotalStudentsTaught   int     `json:"total_students_taught"`
	TotalClassesConducted int     `json:"total_classes_conducted"`
	TotalContentCreated   int     `json:"total_content_created"`
	AverageTeacherRating  float64 `json:"average_teacher_rating"`
}

// SubjectStats aggregates teachers sharing a subject.
type SubjectStats struct {
	Count         int `json:"count"`
	TotalStudents int `json:"total_students"`
	TotalContent  int `json:"total_content"`
}

// ClassCoverage lists the teachers allotted to a class.
type ClassCoverage struct {
	Teachers     int      `json:"teachers"`
	TeacherNames []string `json:"teacher_names"`
}

// TeachersOverviewResponse is the admin dashboard payload.
type TeachersOverviewResponse struct {
	OverallStatistics TeacherOverallStats      `json:"overall_statistics"`
	Teachers          []TeacherOverviewRow     `json:"teachers"`
	SummaryBySubject  map[string]SubjectStats  `json:"summary_by_subject"`
	ClassDistribution map[string]ClassCoverage `json:"class_distribution"`
}

// TeacherStatisticsResponse is the per-teacher admin drill-down.
type TeacherStatisticsResponse struct {
	BasicInfo struct {
		Name            string   `json:"name"`
		Email           string   `json:"email"`
		Subject         string   `json:"subject"`
		AllottedClasses []string `json:"allotted_classes"`
	} `json:"basic_info"`
	ClassAnalytics     map[string]ClassAnalyticsResponse `json:"class_analytics"`
	OverallPerformance struct {
		TotalStudents          int     `json:"total_students"`
		ActiveStudents         int     `json:"active_students"`
		AverageClassCompletion float64 `json:"average_class_completion"`
		AverageClassQuizScore  float64 `json:"average_class_quiz_performance"`
	} `json:"overall_performance"`
}

// ClassChangeRequest moves a student to a new class scope.
type ClassChangeRequest struct {
	NewClass string `json:"new_class" validate:"required"`
}

// ClassChangeResponse reports the reassignment and the size of the wiped
// ledger.
type ClassChangeResponse struct {
	StudentID       uint   `json:"student_id"`
	NewClass        string `json:"new_class"`
	RemovedProgress int64  `json:"removed_progress"`
}

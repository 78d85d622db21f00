package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// TeacherService is the teacher-facing surface: class listings and
// analytics scoped to the teacher's allotted classes, live sessions, and
// the teacher's own profile.
type TeacherService interface {
	GetAllottedClasses(ctx context.Context, identity Identity) ([]string, error)
	GetStudentsByClass(ctx context.Context, identity Identity, className string) ([]dto.ClassStudent, error)
	ClassAnalytics(ctx context.Context, identity Identity, className string) (dto.ClassAnalyticsResponse, error)
	ClassProgressOverview(ctx context.Context, identity Identity, className string) (dto.ClassProgressOverview, error)
	StudentProgress(ctx context.Context, identity Identity, studentID uint) (dto.StudentProgressDetail, error)
	StudentDetailedProgress(ctx context.Context, identity Identity, studentID uint) (dto.StudentDetailResponse, error)

	ScheduleLiveClass(ctx context.Context, identity Identity, req dto.LiveClassCreateRequest) (dto.LiveClassResponse, error)
	UpcomingLiveClasses(ctx context.Context, identity Identity) ([]dto.LiveClassResponse, error)
	RecordedLiveClasses(ctx context.Context, identity Identity) ([]dto.LiveClassResponse, error)
	StartLiveClass(ctx context.Context, identity Identity, referenceID string) (dto.LiveClassResponse, error)
	ShareRecording(ctx context.Context, identity Identity, referenceID string, req dto.ShareRecordingRequest) (dto.LiveClassResponse, error)

	GetProfile(ctx context.Context, identity Identity) (dto.TeacherProfileResponse, error)
	UpdateProfile(ctx context.Context, identity Identity, req dto.TeacherProfileUpdateRequest) (dto.TeacherProfileResponse, error)
	UpdatePreferences(ctx context.Context, identity Identity, req dto.TeacherPreferencesRequest) (dto.TeacherProfileResponse, error)
}

type teacherService struct {
	teachers    repository.TeacherRepository
	users       repository.UserRepository
	progress    repository.ProgressRepository
	liveClasses repository.LiveClassRepository
	roles       RoleService
	analytics   AnalyticsService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

func NewTeacherService(
	teachers repository.TeacherRepository,
	users repository.UserRepository,
	progress repository.ProgressRepository,
	liveClasses repository.LiveClassRepository,
	roles RoleService,
	analytics AnalyticsService,
	validate *validator.Validate,
	logger zerolog.Logger,
) TeacherService {
	return &teacherService{
		teachers:    teachers,
		users:       users,
		progress:    progress,
		liveClasses: liveClasses,
		roles:       roles,
		analytics:   analytics,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "teacher_service").Logger(),
		now:         time.Now,
	}
}

func (s *teacherService) GetAllottedClasses(ctx context.Context, identity Identity) ([]string, error) {
	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if profile.AllottedClasses == nil {
		return []string{}, nil
	}
	return profile.AllottedClasses, nil
}

// GetStudentsByClass lists the students of an allotted class with a cheap
// ledger-based progress fraction (completed records over total records).
func (s *teacherService) GetStudentsByClass(ctx context.Context, identity Identity, className string) ([]dto.ClassStudent, error) {
	if err := s.roles.AuthorizeClassScope(ctx, identity, className); err != nil {
		return nil, err
	}

	students, err := s.users.ListByClass(ctx, className)
	if err != nil {
		return nil, apperr.StoreUnavailable("list students", err)
	}

	rows := make([]dto.ClassStudent, 0, len(students))
	for _, student := range students {
		row := dto.ClassStudent{
			ID:         student.ID,
			Name:       student.Name,
			Email:      student.Email,
			PhotoURL:   student.PhotoURL,
			LastActive: student.LastActiveAt,
		}

		records, err := s.progress.ListByStudent(ctx, student.ID, repository.ProgressFilter{})
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("progress read failed, reporting zero")
		} else if len(records) > 0 {
			completed := 0
			for _, record := range records {
				if record.Status == models.ProgressCompleted {
					completed++
				}
			}
			row.Progress = round2(float64(completed) / float64(len(records)) * 100)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (s *teacherService) ClassAnalytics(ctx context.Context, identity Identity, className string) (dto.ClassAnalyticsResponse, error) {
	if err := s.roles.AuthorizeClassScope(ctx, identity, className); err != nil {
		return dto.ClassAnalyticsResponse{}, err
	}
	return s.analytics.ClassAnalytics(ctx, className)
}

// ClassProgressOverview summarises every student's ledger in an allotted
// class. Students are processed concurrently, ranked by completion rate.
func (s *teacherService) ClassProgressOverview(ctx context.Context, identity Identity, className string) (dto.ClassProgressOverview, error) {
	if err := s.roles.AuthorizeClassScope(ctx, identity, className); err != nil {
		return dto.ClassProgressOverview{}, err
	}

	students, err := s.users.ListByClass(ctx, className)
	if err != nil {
		return dto.ClassProgressOverview{}, apperr.StoreUnavailable("list students", err)
	}

	overview := dto.ClassProgressOverview{
		ClassName:        className,
		TotalStudents:    len(students),
		StudentsProgress: []dto.StudentProgressRow{},
	}
	if len(students) == 0 {
		return overview, nil
	}

	rows := make([]dto.StudentProgressRow, len(students))
	scores := make([]rowQuizScores, len(students))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(classRollupWorkers)

	for i, student := range students {
		group.Go(func() error {
			rows[i], scores[i] = s.studentProgressRow(groupCtx, student)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return dto.ClassProgressOverview{}, err
	}

	// The class quiz average pools every raw score across the class rather
	// than averaging the per-student averages.
	totalCompletion := 0.0
	pooledScores := 0.0
	pooledCount := 0
	for i, row := range rows {
		totalCompletion += row.CompletionRate
		pooledScores += scores[i].sum
		pooledCount += scores[i].count
		if row.CompletionRate > 0 {
			overview.ClassAverages.ActiveStudents++
		}
	}
	overview.ClassAverages.AvgCompletionRate = round2(totalCompletion / float64(len(rows)))
	if pooledCount > 0 {
		overview.ClassAverages.AvgQuizScore = round2(pooledScores / float64(pooledCount))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CompletionRate > rows[j].CompletionRate
	})
	overview.StudentsProgress = rows

	return overview, nil
}

// rowQuizScores carries a student's raw quiz totals so the class average
// can pool individual scores.
type rowQuizScores struct {
	sum   float64
	count int
}

// studentProgressRow summarises one student's raw ledger. Unlike the
// accurate quiz rollup, any recorded score counts here, zeros included.
func (s *teacherService) studentProgressRow(ctx context.Context, student models.User) (dto.StudentProgressRow, rowQuizScores) {
	row := dto.StudentProgressRow{
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		PhotoURL:     student.PhotoURL,
		LastActive:   student.LastActiveAt,
	}

	records, err := s.progress.ListByStudent(ctx, student.ID, repository.ProgressFilter{})
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("progress read failed, reporting zero")
		return row, rowQuizScores{}
	}

	quiz := rowQuizScores{}
	for _, record := range records {
		row.TotalActivities++
		if record.Status == models.ProgressCompleted {
			row.CompletedActivities++
		}
		if record.ActivityType == models.ActivityQuiz && record.Score != nil {
			quiz.sum += *record.Score
			quiz.count++
		}
	}
	if row.TotalActivities > 0 {
		row.CompletionRate = round2(float64(row.CompletedActivities) / float64(row.TotalActivities) * 100)
	}
	if quiz.count > 0 {
		row.AverageQuizScore = round2(quiz.sum / float64(quiz.count))
	}

	return row, quiz
}

// StudentProgress is the teacher view of one student's raw ledger. The
// student must belong to one of the teacher's allotted classes.
func (s *teacherService) StudentProgress(ctx context.Context, identity Identity, studentID uint) (dto.StudentProgressDetail, error) {
	student, err := s.authorizedStudent(ctx, identity, studentID)
	if err != nil {
		return dto.StudentProgressDetail{}, err
	}

	records, err := s.progress.ListByStudent(ctx, studentID, repository.ProgressFilter{})
	if err != nil {
		return dto.StudentProgressDetail{}, apperr.StoreUnavailable("list progress", err)
	}

	detail := dto.StudentProgressDetail{
		StudentID:        student.ID,
		StudentName:      student.Name,
		StudentClass:     student.StudentClass,
		RecentActivities: []dto.ProgressResponse{},
		DetailedProgress: []dto.ProgressResponse{},
	}

	quizTotal := 0.0
	quizCount := 0
	for _, record := range records {
		detail.TotalActivities++
		if record.Status == models.ProgressCompleted {
			detail.CompletedActivities++
		}
		if record.ActivityType == models.ActivityQuiz && record.Score != nil && *record.Score > 0 {
			quizTotal += *record.Score
			quizCount++
		}
		detail.DetailedProgress = append(detail.DetailedProgress, dto.NewProgressResponse(record))
	}
	if detail.TotalActivities > 0 {
		detail.CompletionRate = round2(float64(detail.CompletedActivities) / float64(detail.TotalActivities) * 100)
	}
	if quizCount > 0 {
		detail.AverageQuizScore = round2(quizTotal / float64(quizCount))
	}

	sort.SliceStable(detail.DetailedProgress, func(i, j int) bool {
		return detail.DetailedProgress[i].Timestamp.After(detail.DetailedProgress[j].Timestamp)
	})
	recent := detail.DetailedProgress
	if len(recent) > 10 {
		recent = recent[:10]
	}
	detail.RecentActivities = recent

	return detail, nil
}

func (s *teacherService) StudentDetailedProgress(ctx context.Context, identity Identity, studentID uint) (dto.StudentDetailResponse, error) {
	if _, err := s.authorizedStudent(ctx, identity, studentID); err != nil {
		return dto.StudentDetailResponse{}, err
	}
	return s.analytics.StudentDetailedProgress(ctx, studentID)
}

// authorizedStudent loads a student and confirms the caller may see them.
// The scope check precedes every ledger read.
func (s *teacherService) authorizedStudent(ctx context.Context, identity Identity, studentID uint) (*models.User, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("student")
		}
		return nil, apperr.StoreUnavailable("read student", err)
	}

	if err := s.roles.AuthorizeClassScope(ctx, identity, student.StudentClass); err != nil {
		return nil, err
	}

	return student, nil
}

func (s *teacherService) ScheduleLiveClass(ctx context.Context, identity Identity, req dto.LiveClassCreateRequest) (dto.LiveClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LiveClassResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return dto.LiveClassResponse{}, err
	}
	if err := s.roles.AuthorizeClassScope(ctx, identity, req.ClassName); err != nil {
		return dto.LiveClassResponse{}, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = 60
	}

	class := models.LiveClass{
		ReferenceID:     uuid.NewString(),
		TeacherID:       profile.ID,
		Title:           req.Title,
		Description:     s.sanitizer.Sanitize(req.Description),
		ClassName:       req.ClassName,
		Platform:        req.Platform,
		ScheduledAt:     req.ScheduledTime.UTC(),
		DurationMinutes: duration,
		MeetingURL:      req.MeetingURL,
		Status:          models.LiveClassScheduled,
	}

	if err := s.liveClasses.Create(ctx, &class); err != nil {
		return dto.LiveClassResponse{}, apperr.StoreUnavailable("schedule live class", err)
	}

	s.logger.Info().
		Str("reference_id", class.ReferenceID).
		Str("class", class.ClassName).
		Time("scheduled_at", class.ScheduledAt).
		Msg("live class scheduled")

	return dto.NewLiveClassResponse(class), nil
}

func (s *teacherService) UpcomingLiveClasses(ctx context.Context, identity Identity) ([]dto.LiveClassResponse, error) {
	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	classes, err := s.liveClasses.ListUpcomingByTeacher(ctx, profile.ID, s.now().UTC())
	if err != nil {
		return nil, apperr.StoreUnavailable("list live classes", err)
	}

	return toLiveClassResponses(classes), nil
}

func (s *teacherService) RecordedLiveClasses(ctx context.Context, identity Identity) ([]dto.LiveClassResponse, error) {
	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	classes, err := s.liveClasses.ListRecordedByTeacher(ctx, profile.ID)
	if err != nil {
		return nil, apperr.StoreUnavailable("list recordings", err)
	}

	return toLiveClassResponses(classes), nil
}

// StartLiveClass flips a scheduled session to live. Only the owning teacher
// may start it, and only from the scheduled state.
func (s *teacherService) StartLiveClass(ctx context.Context, identity Identity, referenceID string) (dto.LiveClassResponse, error) {
	_, class, err := s.ownedLiveClass(ctx, identity, referenceID)
	if err != nil {
		return dto.LiveClassResponse{}, err
	}

	if class.Status != models.LiveClassScheduled {
		return dto.LiveClassResponse{}, apperr.InvalidInput("live class is not in a startable state")
	}

	startedAt := s.now().UTC()
	class.Status = models.LiveClassLive
	class.StartedAt = &startedAt

	if err := s.liveClasses.Save(ctx, class); err != nil {
		return dto.LiveClassResponse{}, apperr.StoreUnavailable("start live class", err)
	}

	return dto.NewLiveClassResponse(*class), nil
}

// ShareRecording attaches a recording URL and marks the session completed.
func (s *teacherService) ShareRecording(ctx context.Context, identity Identity, referenceID string, req dto.ShareRecordingRequest) (dto.LiveClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LiveClassResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	_, class, err := s.ownedLiveClass(ctx, identity, referenceID)
	if err != nil {
		return dto.LiveClassResponse{}, err
	}

	completedAt := s.now().UTC()
	class.Status = models.LiveClassCompleted
	class.RecordingURL = &req.RecordingURL
	if class.CompletedAt == nil {
		class.CompletedAt = &completedAt
	}

	if err := s.liveClasses.Save(ctx, class); err != nil {
		return dto.LiveClassResponse{}, apperr.StoreUnavailable("share recording", err)
	}

	return dto.NewLiveClassResponse(*class), nil
}

func (s *teacherService) ownedLiveClass(ctx context.Context, identity Identity, referenceID string) (*models.TeacherProfile, *models.LiveClass, error) {
	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	class, err := s.liveClasses.GetByReference(ctx, referenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("live class")
		}
		return nil, nil, apperr.StoreUnavailable("read live class", err)
	}

	if class.TeacherID != profile.ID {
		return nil, nil, apperr.PermissionDenied("live class belongs to another teacher")
	}

	return profile, class, nil
}

// GetProfile returns the caller's teacher profile, creating a default one
// on first access so a freshly promoted teacher is immediately usable.
func (s *teacherService) GetProfile(ctx context.Context, identity Identity) (dto.TeacherProfileResponse, error) {
	profile, err := s.lookupProfile(ctx, identity)
	if err == nil {
		return dto.NewTeacherProfileResponse(*profile), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeacherProfileResponse{}, apperr.StoreUnavailable("read teacher profile", err)
	}

	created, createErr := s.createDefaultProfile(ctx, identity)
	if createErr != nil {
		return dto.TeacherProfileResponse{}, createErr
	}
	return dto.NewTeacherProfileResponse(*created), nil
}

func (s *teacherService) createDefaultProfile(ctx context.Context, identity Identity) (*models.TeacherProfile, error) {
	if identity.Email == "" {
		return nil, apperr.PermissionDenied("no teacher profile found")
	}

	profile := models.TeacherProfile{
		Email:           identity.Email,
		Name:            identity.Email,
		IsActive:        true,
		AllottedClasses: []string{},
	}
	if identity.UserID != 0 {
		userID := identity.UserID
		profile.UserID = &userID
		if user, err := s.users.GetByID(ctx, identity.UserID); err == nil {
			profile.Name = user.Name
			profile.PhotoURL = user.PhotoURL
		}
	}

	if err := s.teachers.Create(ctx, &profile); err != nil {
		return nil, apperr.StoreUnavailable("create teacher profile", err)
	}

	s.logger.Info().Str("email", profile.Email).Msg("default teacher profile created")

	return &profile, nil
}

func (s *teacherService) UpdateProfile(ctx context.Context, identity Identity, req dto.TeacherProfileUpdateRequest) (dto.TeacherProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherProfileResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Subject != nil {
		profile.Subject = *req.Subject
	}
	if req.Bio != nil {
		profile.Bio = s.sanitizer.Sanitize(*req.Bio)
	}

	if err := s.teachers.Save(ctx, profile); err != nil {
		return dto.TeacherProfileResponse{}, apperr.StoreUnavailable("update teacher profile", err)
	}

	return dto.NewTeacherProfileResponse(*profile), nil
}

func (s *teacherService) UpdatePreferences(ctx context.Context, identity Identity, req dto.TeacherPreferencesRequest) (dto.TeacherProfileResponse, error) {
	profile, err := s.requireProfile(ctx, identity)
	if err != nil {
		return dto.TeacherProfileResponse{}, err
	}

	if req.NotificationsEnabled != nil {
		profile.NotificationsOn = *req.NotificationsEnabled
	}
	if req.EmailNotifications != nil {
		profile.EmailNotifications = *req.EmailNotifications
	}
	if req.AutoRecord != nil {
		profile.AutoRecord = *req.AutoRecord
	}

	if err := s.teachers.Save(ctx, profile); err != nil {
		return dto.TeacherProfileResponse{}, apperr.StoreUnavailable("update teacher preferences", err)
	}

	return dto.NewTeacherProfileResponse(*profile), nil
}

func (s *teacherService) requireProfile(ctx context.Context, identity Identity) (*models.TeacherProfile, error) {
	profile, err := s.lookupProfile(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.PermissionDenied("no teacher profile found")
		}
		return nil, apperr.StoreUnavailable("read teacher profile", err)
	}
	return profile, nil
}

func (s *teacherService) lookupProfile(ctx context.Context, identity Identity) (*models.TeacherProfile, error) {
	if identity.UserID != 0 {
		profile, err := s.teachers.GetByUserID(ctx, identity.UserID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if identity.Email != "" {
		return s.teachers.GetByEmail(ctx, identity.Email)
	}
	return nil, gorm.ErrRecordNotFound
}

func toLiveClassResponses(classes []models.LiveClass) []dto.LiveClassResponse {
	responses := make([]dto.LiveClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, dto.NewLiveClassResponse(class))
	}
	return responses
}

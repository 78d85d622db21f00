package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// AdminTeacherService manages teaching staff on behalf of admins and
// assembles the teacher dashboards.
type AdminTeacherService interface {
	AddTeacher(ctx context.Context, req dto.TeacherCreateRequest) (dto.TeacherMutationResponse, error)
	RemoveTeacher(ctx context.Context, email string) (dto.TeacherMutationResponse, error)
	UpdateTeacher(ctx context.Context, req dto.TeacherUpdateRequest) (dto.TeacherMutationResponse, error)
	TeachersOverview(ctx context.Context) (dto.TeachersOverviewResponse, error)
	TeacherStatistics(ctx context.Context, email string) (dto.TeacherStatisticsResponse, error)
}

type adminTeacherService struct {
	teachers    repository.TeacherRepository
	users       repository.UserRepository
	liveClasses repository.LiveClassRepository
	analytics   AnalyticsService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

func NewAdminTeacherService(
	teachers repository.TeacherRepository,
	users repository.UserRepository,
	liveClasses repository.LiveClassRepository,
	analytics AnalyticsService,
	validate *validator.Validate,
	logger zerolog.Logger,
) AdminTeacherService {
	return &adminTeacherService{
		teachers:    teachers,
		users:       users,
		liveClasses: liveClasses,
		analytics:   analytics,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "admin_teacher_service").Logger(),
	}
}

// AddTeacher registers a teacher profile. When a user account with the same
// email exists it is linked and promoted to the teacher role.
func (s *adminTeacherService) AddTeacher(ctx context.Context, req dto.TeacherCreateRequest) (dto.TeacherMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherMutationResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	if _, err := s.teachers.GetByEmail(ctx, req.Email); err == nil {
		return dto.TeacherMutationResponse{}, apperr.InvalidInput("teacher with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("check teacher", err)
	}

	profile := models.TeacherProfile{
		Name:            req.Name,
		Email:           req.Email,
		Subject:         req.Subject,
		Bio:             s.sanitizer.Sanitize(req.Bio),
		AllottedClasses: req.AllottedClasses,
		IsActive:        true,
		AddedByAdmin:    true,
	}

	if user, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		userID := user.ID
		profile.UserID = &userID
		if roleErr := s.users.UpdateRole(ctx, user.ID, models.RoleTeacher); roleErr != nil {
			return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("promote user", roleErr)
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		account := models.User{
			Name:  req.Name,
			Email: req.Email,
			Role:  models.RoleTeacher,
		}
		if createErr := s.users.Create(ctx, &account); createErr != nil {
			return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("create user", createErr)
		}
		userID := account.ID
		profile.UserID = &userID
	} else {
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("check user", err)
	}

	if err := s.teachers.Create(ctx, &profile); err != nil {
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("create teacher", err)
	}

	s.logger.Info().Str("email", profile.Email).Msg("teacher added")

	return dto.TeacherMutationResponse{
		Message:   "teacher added successfully",
		TeacherID: &profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
	}, nil
}

// RemoveTeacher deletes the profile and demotes the linked user account, if
// any, back to student.
func (s *adminTeacherService) RemoveTeacher(ctx context.Context, email string) (dto.TeacherMutationResponse, error) {
	profile, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherMutationResponse{}, apperr.NotFound("teacher")
		}
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("read teacher", err)
	}

	if err := s.teachers.DeleteByEmail(ctx, email); err != nil {
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("remove teacher", err)
	}

	if profile.UserID != nil {
		if err := s.users.UpdateRole(ctx, *profile.UserID, models.RoleStudent); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", *profile.UserID).Msg("failed to demote removed teacher")
		}
	}

	s.logger.Info().Str("email", email).Msg("teacher removed")

	return dto.TeacherMutationResponse{
		Message: "teacher removed successfully",
		Email:   email,
		Name:    profile.Name,
	}, nil
}

// UpdateTeacher applies the provided fields and reports which ones changed.
func (s *adminTeacherService) UpdateTeacher(ctx context.Context, req dto.TeacherUpdateRequest) (dto.TeacherMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TeacherMutationResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	profile, err := s.teachers.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherMutationResponse{}, apperr.NotFound("teacher")
		}
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("read teacher", err)
	}

	updated := []string{}
	if req.Name != nil {
		profile.Name = *req.Name
		updated = append(updated, "name")
		if profile.UserID != nil {
			if err := s.users.UpdateName(ctx, *profile.UserID, *req.Name); err != nil {
				s.logger.Warn().Err(err).Uint("user_id", *profile.UserID).Msg("failed to sync user name")
			}
		}
	}
	if req.Subject != nil {
		profile.Subject = *req.Subject
		updated = append(updated, "subject")
	}
	if req.Bio != nil {
		profile.Bio = s.sanitizer.Sanitize(*req.Bio)
		updated = append(updated, "bio")
	}
	if req.AllottedClasses != nil {
		profile.AllottedClasses = req.AllottedClasses
		updated = append(updated, "allotted_classes")
	}
	if len(updated) == 0 {
		return dto.TeacherMutationResponse{}, apperr.InvalidInput("no fields to update")
	}

	if err := s.teachers.Save(ctx, profile); err != nil {
		return dto.TeacherMutationResponse{}, apperr.StoreUnavailable("update teacher", err)
	}

	return dto.TeacherMutationResponse{
		Message:       "teacher updated successfully",
		TeacherID:     &profile.ID,
		Email:         profile.Email,
		Name:          profile.Name,
		UpdatedFields: updated,
	}, nil
}

// TeachersOverview builds the admin dashboard: one row per teacher with
// live student counts, plus subject and class breakdowns.
func (s *adminTeacherService) TeachersOverview(ctx context.Context) (dto.TeachersOverviewResponse, error) {
	profiles, err := s.teachers.List(ctx)
	if err != nil {
		return dto.TeachersOverviewResponse{}, apperr.StoreUnavailable("list teachers", err)
	}

	response := dto.TeachersOverviewResponse{
		Teachers:          []dto.TeacherOverviewRow{},
		SummaryBySubject:  map[string]dto.SubjectStats{},
		ClassDistribution: map[string]dto.ClassCoverage{},
	}

	ratingSum := 0.0
	ratedTeachers := 0

	for i := range profiles {
		profile := profiles[i]
		row := s.overviewRow(ctx, profile)

		response.Teachers = append(response.Teachers, row)
		response.OverallStatistics.TotalTeachers++
		if profile.IsActive {
			response.OverallStatistics.ActiveTeachers++
		}
		response.OverallStatistics.TotalStudentsTaught += row.TotalStudents
		response.OverallStatistics.TotalClassesConducted += row.ClassesConducted
		response.OverallStatistics.TotalContentCreated += row.ContentCreated
		if profile.AverageRating > 0 {
			ratingSum += profile.AverageRating
			ratedTeachers++
		}

		subject := profile.Subject
		if subject == "" {
			subject = "unassigned"
		}
		stats := response.SummaryBySubject[subject]
		stats.Count++
		stats.TotalStudents += row.TotalStudents
		stats.TotalContent += row.ContentCreated
		response.SummaryBySubject[subject] = stats

		for _, className := range profile.AllottedClasses {
			coverage := response.ClassDistribution[className]
			coverage.Teachers++
			coverage.TeacherNames = append(coverage.TeacherNames, profile.Name)
			response.ClassDistribution[className] = coverage
		}
	}

	if ratedTeachers > 0 {
		response.OverallStatistics.AverageTeacherRating = round2(ratingSum / float64(ratedTeachers))
	}

	return response, nil
}

func (s *adminTeacherService) overviewRow(ctx context.Context, profile models.TeacherProfile) dto.TeacherOverviewRow {
	createdAt := profile.CreatedAt
	row := dto.TeacherOverviewRow{
		TeacherID:       profile.UserID,
		Name:            profile.Name,
		Email:           profile.Email,
		Subject:         profile.Subject,
		Bio:             profile.Bio,
		AllottedClasses: profile.AllottedClasses,
		ClassCount:      len(profile.AllottedClasses),
		ContentCreated:  profile.ContentCreated,
		IsActive:        profile.IsActive,
		AverageRating:   profile.AverageRating,
		CreatedAt:       &createdAt,
	}
	if row.AllottedClasses == nil {
		row.AllottedClasses = []string{}
	}

	for _, className := range profile.AllottedClasses {
		count, err := s.users.CountByClass(ctx, className)
		if err != nil {
			s.logger.Warn().Err(err).Str("class", className).Msg("student count failed")
			continue
		}
		row.TotalStudents += int(count)
	}

	conducted, err := s.liveClasses.CountCompletedByTeacher(ctx, profile.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", profile.Email).Msg("live class count failed")
	} else {
		row.ClassesConducted = int(conducted)
	}

	return row
}

// TeacherStatistics is the per-teacher drill-down: class analytics for every
// allotted class rolled up into overall performance figures.
func (s *adminTeacherService) TeacherStatistics(ctx context.Context, email string) (dto.TeacherStatisticsResponse, error) {
	profile, err := s.teachers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeacherStatisticsResponse{}, apperr.NotFound("teacher")
		}
		return dto.TeacherStatisticsResponse{}, apperr.StoreUnavailable("read teacher", err)
	}

	response := dto.TeacherStatisticsResponse{
		ClassAnalytics: map[string]dto.ClassAnalyticsResponse{},
	}
	response.BasicInfo.Name = profile.Name
	response.BasicInfo.Email = profile.Email
	response.BasicInfo.Subject = profile.Subject
	response.BasicInfo.AllottedClasses = profile.AllottedClasses
	if response.BasicInfo.AllottedClasses == nil {
		response.BasicInfo.AllottedClasses = []string{}
	}

	completionSum := 0.0
	quizSum := 0.0
	classesWithData := 0

	for _, className := range profile.AllottedClasses {
		analytics, err := s.analytics.ClassAnalytics(ctx, className)
		if err != nil {
			s.logger.Warn().Err(err).Str("class", className).Msg("class analytics failed, skipping")
			continue
		}
		response.ClassAnalytics[className] = analytics
		response.OverallPerformance.TotalStudents += analytics.ClassSummary.TotalStudents
		response.OverallPerformance.ActiveStudents += analytics.ClassSummary.ActiveStudents
		completionSum += analytics.ClassSummary.AverageCompletionRate
		quizSum += analytics.ClassSummary.AverageQuizScore
		classesWithData++
	}

	if classesWithData > 0 {
		response.OverallPerformance.AverageClassCompletion = round2(completionSum / float64(classesWithData))
		response.OverallPerformance.AverageClassQuizScore = round2(quizSum / float64(classesWithData))
	}

	return response, nil
}

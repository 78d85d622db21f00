package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// StudentService covers student account operations that ripple into the
// progress ledger.
type StudentService interface {
	ChangeClass(ctx context.Context, studentID uint, newClass string) (dto.ClassChangeResponse, error)
}

type studentService struct {
	users     repository.UserRepository
	progress  repository.ProgressRepository
	analytics AnalyticsService
	logger    zerolog.Logger
}

func NewStudentService(users repository.UserRepository, progress repository.ProgressRepository, analytics AnalyticsService, logger zerolog.Logger) StudentService {
	return &studentService{
		users:     users,
		progress:  progress,
		analytics: analytics,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

// ChangeClass moves a student to a new class and wipes their ledger, since
// progress against the old class's content no longer applies. Cached
// rollups of both classes are invalidated.
func (s *studentService) ChangeClass(ctx context.Context, studentID uint, newClass string) (dto.ClassChangeResponse, error) {
	if newClass == "" {
		return dto.ClassChangeResponse{}, apperr.InvalidInput("new_class is required")
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassChangeResponse{}, apperr.NotFound("student")
		}
		return dto.ClassChangeResponse{}, apperr.StoreUnavailable("read student", err)
	}
	oldClass := student.StudentClass

	if err := s.users.UpdateClass(ctx, studentID, newClass); err != nil {
		return dto.ClassChangeResponse{}, apperr.StoreUnavailable("update class", err)
	}

	removed, err := s.progress.DeleteByStudent(ctx, studentID)
	if err != nil {
		return dto.ClassChangeResponse{}, apperr.StoreUnavailable("wipe progress", err)
	}

	if oldClass != "" {
		s.analytics.InvalidateClass(ctx, oldClass)
	}
	s.analytics.InvalidateClass(ctx, newClass)

	s.logger.Info().
		Uint("student_id", studentID).
		Str("old_class", oldClass).
		Str("new_class", newClass).
		Int64("removed", removed).
		Msg("student class changed")

	return dto.ClassChangeResponse{
		StudentID:       studentID,
		NewClass:        newClass,
		RemovedProgress: removed,
	}, nil
}

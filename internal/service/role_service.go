package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// Identity is the caller as extracted from the access token. Role may be
// empty when the token predates role claims; ResolveRole fills the gap.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// RoleService resolves a caller's effective role and enforces the teacher
// class-scope rule before any class data is read.
type RoleService interface {
	ResolveRole(ctx context.Context, identity Identity) (string, error)
	AuthorizeClassScope(ctx context.Context, identity Identity, className string) error
}

type roleService struct {
	teachers repository.TeacherRepository
	admins   repository.AdminRepository
	users    repository.UserRepository
	logger   zerolog.Logger
}

func NewRoleService(teachers repository.TeacherRepository, admins repository.AdminRepository, users repository.UserRepository, logger zerolog.Logger) RoleService {
	return &roleService{
		teachers: teachers,
		admins:   admins,
		users:    users,
		logger:   logger.With().Str("component", "role_service").Logger(),
	}
}

// ResolveRole determines the caller's role. An explicit token claim wins;
// otherwise teacher and admin registries are consulted before falling back
// to the stored user role, then to student.
func (s *roleService) ResolveRole(ctx context.Context, identity Identity) (string, error) {
	if identity.Role != "" {
		return identity.Role, nil
	}

	if identity.UserID != 0 {
		if _, err := s.teachers.GetByUserID(ctx, identity.UserID); err == nil {
			return models.RoleTeacher, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.StoreUnavailable("resolve role", err)
		}
	}
	if identity.Email != "" {
		if _, err := s.teachers.GetByEmail(ctx, identity.Email); err == nil {
			return models.RoleTeacher, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.StoreUnavailable("resolve role", err)
		}
	}

	if identity.UserID != 0 {
		isAdmin, err := s.admins.ExistsByUserID(ctx, identity.UserID)
		if err != nil {
			return "", apperr.StoreUnavailable("resolve role", err)
		}
		if isAdmin {
			return models.RoleAdmin, nil
		}
	}
	if identity.Email != "" {
		isAdmin, err := s.admins.ExistsByEmail(ctx, identity.Email)
		if err != nil {
			return "", apperr.StoreUnavailable("resolve role", err)
		}
		if isAdmin {
			return models.RoleAdmin, nil
		}
	}

	if identity.UserID != 0 {
		user, err := s.users.GetByID(ctx, identity.UserID)
		if err == nil && user.Role != "" {
			return user.Role, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.StoreUnavailable("resolve role", err)
		}
	}

	return models.RoleStudent, nil
}

// AuthorizeClassScope rejects a teacher asking about a class outside their
// allotted set. Admins pass unconditionally. The check runs before any
// ledger or hierarchy read so denied requests touch no class data.
func (s *roleService) AuthorizeClassScope(ctx context.Context, identity Identity, className string) error {
	role, err := s.ResolveRole(ctx, identity)
	if err != nil {
		return err
	}
	if role == models.RoleAdmin {
		return nil
	}
	if role != models.RoleTeacher {
		return apperr.PermissionDenied("teacher or admin access required")
	}

	profile, err := s.teacherProfile(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.PermissionDenied("no teacher profile found")
		}
		return apperr.StoreUnavailable("read teacher profile", err)
	}

	if !profile.HasClass(className) {
		s.logger.Warn().
			Uint("user_id", identity.UserID).
			Str("class", className).
			Msg("class scope denied")
		return apperr.PermissionDenied(fmt.Sprintf("class %s is not in your allotted classes", className))
	}

	return nil
}

func (s *roleService) teacherProfile(ctx context.Context, identity Identity) (*models.TeacherProfile, error) {
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

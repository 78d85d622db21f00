package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// TeacherRepository persists teacher profiles.
type TeacherRepository interface {
	Create(ctx context.Context, profile *models.TeacherProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.TeacherProfile, error)
	List(ctx context.Context) ([]models.TeacherProfile, error)
	Save(ctx context.Context, profile *models.TeacherProfile) error
	DeleteByEmail(ctx context.Context, email string) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs the teacher profile repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, profile *models.TeacherProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *teacherRepository) GetByEmail(ctx context.Context, email string) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *teacherRepository) List(ctx context.Context) ([]models.TeacherProfile, error) {
	var profiles []models.TeacherProfile
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

func (r *teacherRepository) Save(ctx context.Context, profile *models.TeacherProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *teacherRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.TeacherProfile{}).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// UserRepository reads and updates platform accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByClass(ctx context.Context, className string) ([]models.User, error)
	CountByClass(ctx context.Context, className string) (int64, error)
	UpdateClass(ctx context.Context, id uint, className string) error
	UpdateRole(ctx context.Context, id uint, role string) error
	UpdateName(ctx context.Context, id uint, name string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByClass(ctx context.Context, className string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("student_class = ?", className).
		Where("role = ?", models.RoleStudent).
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountByClass(ctx context.Context, className string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("student_class = ?", className).
		Where("role = ?", models.RoleStudent).
		Count(&count).Error
	return count, err
}

func (r *userRepository) UpdateClass(ctx context.Context, id uint, className string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("student_class", className).Error
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *userRepository) UpdateName(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("name", name).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// AdminRepository answers admin membership checks. Presence of a row is
// membership; there is nothing else to an admin record.
type AdminRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUserID(ctx context.Context, userID uint) (bool, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs the admin membership repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *adminRepository) ExistsByUserID(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// ProgressFilter narrows ledger queries. Empty fields are ignored.
type ProgressFilter struct {
	ActivityType string
	Status       string
}

// ProgressRepository persists the per-student activity ledger.
type ProgressRepository interface {
	Create(ctx context.Context, record *models.ProgressRecord) error
	Get(ctx context.Context, studentID, progressID uint) (*models.ProgressRecord, error)
	// ListByStudent returns the student's ledger in store order; callers
	// that need chronology sort by RecordedAt themselves.
	ListByStudent(ctx context.Context, studentID uint, filter ProgressFilter) ([]models.ProgressRecord, error)
	// UpdateFields merges the given fields into an existing record.
	UpdateFields(ctx context.Context, studentID, progressID uint, fields map[string]interface{}) (int64, error)
	// DeleteByStudent removes every record in the student's ledger and
	// reports how many were removed.
	DeleteByStudent(ctx context.Context, studentID uint) (int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs the ledger repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(ctx context.Context, record *models.ProgressRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *progressRepository) Get(ctx context.Context, studentID, progressID uint) (*models.ProgressRecord, error) {
	var record models.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&record, progressID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint, filter ProgressFilter) ([]models.ProgressRecord, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)

	if filter.ActivityType != "" {
		query = query.Where("activity_type = ?", filter.ActivityType)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var records []models.ProgressRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) UpdateFields(ctx context.Context, studentID, progressID uint, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("id = ?", progressID).
		Where("student_id = ?", studentID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *progressRepository) DeleteByStudent(ctx context.Context, studentID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.ProgressRecord{})
	return result.RowsAffected, result.Error
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// LiveClassRepository persists scheduled live sessions.
type LiveClassRepository interface {
	Create(ctx context.Context, class *models.LiveClass) error
	GetByReference(ctx context.Context, referenceID string) (*models.LiveClass, error)
	Save(ctx context.Context, class *models.LiveClass) error
	// ListUpcomingByTeacher returns scheduled or live sessions from `from`
	// onwards, soonest first.
	ListUpcomingByTeacher(ctx context.Context, teacherID uint, from time.Time) ([]models.LiveClass, error)
	// ListRecordedByTeacher returns completed sessions with a recording,
	// newest first.
	ListRecordedByTeacher(ctx context.Context, teacherID uint) ([]models.LiveClass, error)
	CountCompletedByTeacher(ctx context.Context, teacherID uint) (int64, error)
}

type liveClassRepository struct {
	db *gorm.DB
}

// NewLiveClassRepository constructs the live class repository.
func NewLiveClassRepository(db *gorm.DB) LiveClassRepository {
	return &liveClassRepository{db: db}
}

func (r *liveClassRepository) Create(ctx context.Context, class *models.LiveClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *liveClassRepository) GetByReference(ctx context.Context, referenceID string) (*models.LiveClass, error) {
	var class models.LiveClass
	err := r.db.WithContext(ctx).Where("reference_id = ?", referenceID).First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *liveClassRepository) Save(ctx context.Context, class *models.LiveClass) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *liveClassRepository) ListUpcomingByTeacher(ctx context.Context, teacherID uint, from time.Time) ([]models.LiveClass, error) {
	var classes []models.LiveClass
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Where("status IN ?", []string{models.LiveClassScheduled, models.LiveClassLive}).
		Where("scheduled_at >= ?", from).
		Order("scheduled_at ASC").
		Find(&classes).Error
	return classes, err
}

func (r *liveClassRepository) ListRecordedByTeacher(ctx context.Context, teacherID uint) ([]models.LiveClass, error) {
	var classes []models.LiveClass
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Where("status = ?", models.LiveClassCompleted).
		Where("recording_url IS NOT NULL").
		Order("scheduled_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *liveClassRepository) CountCompletedByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LiveClass{}).
		Where("teacher_id = ?", teacherID).
		Where("status = ?", models.LiveClassCompleted).
		Count(&count).Error
	return count, err
}

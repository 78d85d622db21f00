package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
)

// ContentRepository exposes the read-only hierarchy queries the walker
// needs: one listing or count call per tree level.
type ContentRepository interface {
	GetCourse(ctx context.Context, courseID uint) (*models.Course, error)
	ListCoursesByClass(ctx context.Context, className string) ([]models.Course, error)
	ListTopicsByCourse(ctx context.Context, courseID uint) ([]models.Topic, error)
	ListSubtopicsByTopic(ctx context.Context, topicID uint) ([]models.Subtopic, error)
	// CountTopicMaterials counts materials sitting directly under the topic
	// (subtopic_id IS NULL).
	CountTopicMaterials(ctx context.Context, topicID uint) (int64, error)
	CountSubtopicMaterials(ctx context.Context, subtopicID uint) (int64, error)
	CountTopicQuizzes(ctx context.Context, topicID uint) (int64, error)
	CountSubtopicQuizzes(ctx context.Context, subtopicID uint) (int64, error)
	// GetQuizTitles resolves quiz ids to titles; ids that no longer exist
	// are simply absent from the result.
	GetQuizTitles(ctx context.Context, ids []uint) (map[uint]string, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository constructs the content hierarchy repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).First(&course, courseID).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *contentRepository) ListCoursesByClass(ctx context.Context, className string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("class_name = ?", className).
		Find(&courses).Error
	return courses, err
}

func (r *contentRepository) ListTopicsByCourse(ctx context.Context, courseID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&topics).Error
	return topics, err
}

func (r *contentRepository) ListSubtopicsByTopic(ctx context.Context, topicID uint) ([]models.Subtopic, error) {
	var subtopics []models.Subtopic
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Find(&subtopics).Error
	return subtopics, err
}

func (r *contentRepository) CountTopicMaterials(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("topic_id = ?", topicID).
		Where("subtopic_id IS NULL").
		Count(&count).Error
	return count, err
}

func (r *contentRepository) CountSubtopicMaterials(ctx context.Context, subtopicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("subtopic_id = ?", subtopicID).
		Count(&count).Error
	return count, err
}

func (r *contentRepository) CountTopicQuizzes(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("topic_id = ?", topicID).
		Where("subtopic_id IS NULL").
		Count(&count).Error
	return count, err
}

func (r *contentRepository) CountSubtopicQuizzes(ctx context.Context, subtopicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("subtopic_id = ?", subtopicID).
		Count(&count).Error
	return count, err
}

func (r *contentRepository) GetQuizTitles(ctx context.Context, ids []uint) (map[uint]string, error) {
	titles := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}

	for _, quiz := range quizzes {
		titles[quiz.ID] = quiz.Title
	}

	return titles, nil
}

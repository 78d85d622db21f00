package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// HierarchyService walks the course→topic→subtopic→leaf tree and tallies
// leaf content for a scope. The traversal issues one store call per tree
// level visited and is the dominant cost of every completion-rate query,
// so per-scope tallies are cached; correctness never depends on the cache.
type HierarchyService interface {
	// CountClassMaterials counts every material reachable under every
	// course of the class. A class with zero courses yields zero, not an
	// error.
	CountClassMaterials(ctx context.Context, className string) (int64, error)
	// CountCourseMaterials counts materials under a single course.
	CountCourseMaterials(ctx context.Context, courseID uint) (int64, error)
	// CountClassQuizzes counts quiz leaves analogously to materials.
	CountClassQuizzes(ctx context.Context, className string) (int64, error)
	// InvalidateClassTally evicts cached tallies after a content edit.
	InvalidateClassTally(ctx context.Context, className string)
}

type hierarchyService struct {
	content  repository.ContentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewHierarchyService constructs the hierarchy walker.
func NewHierarchyService(content repository.ContentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) HierarchyService {
	return &hierarchyService{
		content:  content,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "hierarchy_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/academe-go-api/internal/service/hierarchy"),
	}
}

type leafKind string

const (
	leafMaterials leafKind = "materials"
	leafQuizzes   leafKind = "quizzes"
)

func (s *hierarchyService) CountClassMaterials(ctx context.Context, className string) (int64, error) {
	return s.countClassLeaves(ctx, className, leafMaterials)
}

func (s *hierarchyService) CountClassQuizzes(ctx context.Context, className string) (int64, error) {
	return s.countClassLeaves(ctx, className, leafQuizzes)
}

func (s *hierarchyService) countClassLeaves(ctx context.Context, className string, kind leafKind) (int64, error) {
	cacheKey := tallyCacheKey(className, kind)
	if cached, ok := s.readCachedTally(ctx, cacheKey); ok {
		return cached, nil
	}

	ctx, span := s.tracer.Start(ctx, "hierarchy.count_class_leaves", trace.WithAttributes(
		attribute.String("hierarchy.class_name", className),
		attribute.String("hierarchy.leaf_kind", string(kind)),
	))
	defer span.End()

	courses, err := s.content.ListCoursesByClass(ctx, className)
	if err != nil {
		span.RecordError(err)
		return 0, apperr.StoreUnavailable("list courses", err)
	}

	var total int64
	for _, course := range courses {
		count, err := s.countCourseLeaves(ctx, course.ID, kind)
		if err != nil {
			span.RecordError(err)
			return 0, err
		}
		total += count
	}

	span.SetAttributes(attribute.Int64("hierarchy.leaf_total", total))
	s.storeCachedTally(ctx, cacheKey, total)

	return total, nil
}

func (s *hierarchyService) CountCourseMaterials(ctx context.Context, courseID uint) (int64, error) {
	return s.countCourseLeaves(ctx, courseID, leafMaterials)
}

// countCourseLeaves walks one course depth-first: topics, then each topic's
// direct leaves, then each topic's subtopics and their leaves. A course
// with zero topics contributes zero leaves.
func (s *hierarchyService) countCourseLeaves(ctx context.Context, courseID uint, kind leafKind) (int64, error) {
	topics, err := s.content.ListTopicsByCourse(ctx, courseID)
	if err != nil {
		return 0, apperr.StoreUnavailable("list topics", err)
	}

	var total int64
	for _, topic := range topics {
		direct, err := s.countTopicLeaves(ctx, topic.ID, kind)
		if err != nil {
			return 0, apperr.StoreUnavailable("count topic leaves", err)
		}
		total += direct

		subtopics, err := s.content.ListSubtopicsByTopic(ctx, topic.ID)
		if err != nil {
			return 0, apperr.StoreUnavailable("list subtopics", err)
		}

		for _, subtopic := range subtopics {
			nested, err := s.countSubtopicLeaves(ctx, subtopic.ID, kind)
			if err != nil {
				return 0, apperr.StoreUnavailable("count subtopic leaves", err)
			}
			total += nested
		}
	}

	return total, nil
}

func (s *hierarchyService) countTopicLeaves(ctx context.Context, topicID uint, kind leafKind) (int64, error) {
	if kind == leafQuizzes {
		return s.content.CountTopicQuizzes(ctx, topicID)
	}
	return s.content.CountTopicMaterials(ctx, topicID)
}

func (s *hierarchyService) countSubtopicLeaves(ctx context.Context, subtopicID uint, kind leafKind) (int64, error) {
	if kind == leafQuizzes {
		return s.content.CountSubtopicQuizzes(ctx, subtopicID)
	}
	return s.content.CountSubtopicMaterials(ctx, subtopicID)
}

func (s *hierarchyService) InvalidateClassTally(ctx context.Context, className string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		tallyCacheKey(className, leafMaterials),
		tallyCacheKey(className, leafQuizzes),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Str("class_name", className).Msg("failed to invalidate content tally cache")
	}
}

func (s *hierarchyService) readCachedTally(ctx context.Context, key string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("cache_key", key).Msg("failed to read content tally cache")
		}
		return 0, false
	}
	value, parseErr := strconv.ParseInt(cached, 10, 64)
	if parseErr != nil {
		return 0, false
	}
	return value, true
}

func (s *hierarchyService) storeCachedTally(ctx context.Context, key string, value int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, strconv.FormatInt(value, 10), s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("failed to store content tally cache")
	}
}

func tallyCacheKey(className string, kind leafKind) string {
	return fmt.Sprintf("content:tally:%s:class:%s", kind, className)
}

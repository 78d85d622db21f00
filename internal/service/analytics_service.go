package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/observability"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

const (
	classAnalyticsCachePrefix = "analytics:class:"

	// classRollupWorkers bounds how many student rollups run at once so a
	// large class does not flood the database connection pool.
	classRollupWorkers = 8
)

// AnalyticsService derives accurate metrics from the activity ledger and the
// content hierarchy: per-student completion and quiz performance, and the
// class-wide rollup built on top of them.
type AnalyticsService interface {
	CompletionRate(ctx context.Context, studentID uint, className string) (float64, error)
	QuizPerformance(ctx context.Context, studentID uint) (dto.QuizPerformance, error)
	ClassAnalytics(ctx context.Context, className string) (dto.ClassAnalyticsResponse, error)
	StudentDetailedProgress(ctx context.Context, studentID uint) (dto.StudentDetailResponse, error)
	InvalidateClass(ctx context.Context, className string)
}

type analyticsService struct {
	progress  repository.ProgressRepository
	users     repository.UserRepository
	hierarchy HierarchyService
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAnalyticsService constructs the analytics engine. The Redis client may
// be nil; class rollups are then computed on every call.
func NewAnalyticsService(progress repository.ProgressRepository, users repository.UserRepository, hierarchy HierarchyService, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		progress:  progress,
		users:     users,
		hierarchy: hierarchy,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "analytics_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/academe-go-api/internal/service"),
		now:       time.Now,
	}
}

// CompletionRate is the share of the class's reading materials the student
// has completed, capped at 100. Repeated completions of the same material
// count once. When className is empty the student's own class is used.
func (s *analyticsService) CompletionRate(ctx context.Context, studentID uint, className string) (float64, error) {
	if className == "" {
		user, err := s.users.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperr.NotFound("student")
			}
			return 0, apperr.StoreUnavailable("read student", err)
		}
		className = user.StudentClass
	}

	totalMaterials, err := s.hierarchy.CountClassMaterials(ctx, className)
	if err != nil {
		return 0, err
	}
	if totalMaterials == 0 {
		return 0.0, nil
	}

	records, err := s.progress.ListByStudent(ctx, studentID, repository.ProgressFilter{
		ActivityType: models.ActivityReading,
		Status:       models.ProgressCompleted,
	})
	if err != nil {
		return 0, apperr.StoreUnavailable("list progress", err)
	}

	completed := map[uint]struct{}{}
	for _, record := range records {
		if record.MaterialID != nil {
			completed[*record.MaterialID] = struct{}{}
		}
	}

	rate := float64(len(completed)) / float64(totalMaterials) * 100
	return math.Min(100, rate), nil
}

// QuizPerformance aggregates the student's completed quiz records. Records
// without a positive score carry no signal and are excluded.
func (s *analyticsService) QuizPerformance(ctx context.Context, studentID uint) (dto.QuizPerformance, error) {
	records, err := s.progress.ListByStudent(ctx, studentID, repository.ProgressFilter{
		ActivityType: models.ActivityQuiz,
		Status:       models.ProgressCompleted,
	})
	if err != nil {
		return dto.QuizPerformance{}, apperr.StoreUnavailable("list quiz progress", err)
	}

	scores := []float64{}
	total := 0.0
	max := 0.0
	for _, record := range records {
		if record.Score == nil || *record.Score <= 0 {
			continue
		}
		score := *record.Score
		scores = append(scores, score)
		total += score
		if score > max {
			max = score
		}
	}

	if len(scores) == 0 {
		return dto.QuizPerformance{AllScores: []float64{}}, nil
	}

	return dto.QuizPerformance{
		AverageScore: round2(total / float64(len(scores))),
		TotalScore:   total,
		QuizCount:    len(scores),
		MaxScore:     max,
		AllScores:    scores,
	}, nil
}

// ClassAnalytics builds the full class rollup, serving from cache when a
// fresh copy exists. Students are processed concurrently; one failing
// student degrades to a zeroed row instead of failing the class.
func (s *analyticsService) ClassAnalytics(ctx context.Context, className string) (dto.ClassAnalyticsResponse, error) {
	cacheKey := classAnalyticsCachePrefix + className

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.ClassAnalyticsResponse
			if jsonErr := json.Unmarshal([]byte(cached), &response); jsonErr == nil {
				response.CacheHit = true
				observability.ClassAnalyticsCacheHits.Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Str("class", className).Msg("analytics cache read failed")
		}
	}

	ctx, span := s.tracer.Start(ctx, "AnalyticsService.ClassAnalytics")
	defer span.End()
	span.SetAttributes(attribute.String("class.name", className))

	started := s.now()

	students, err := s.users.ListByClass(ctx, className)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list students failed")
		return dto.ClassAnalyticsResponse{}, apperr.StoreUnavailable("list students", err)
	}

	response := dto.ClassAnalyticsResponse{
		ClassName:       className,
		StudentsDetails: []dto.StudentSummary{},
		GeneratedAt:     s.now().UTC(),
	}
	response.ClassSummary.TotalStudents = len(students)

	if len(students) == 0 {
		s.storeClassCache(ctx, cacheKey, response)
		return response, nil
	}

	summaries := make([]dto.StudentSummary, len(students))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(classRollupWorkers)

	for i, student := range students {
		group.Go(func() error {
			summaries[i] = s.studentSummary(groupCtx, student, className)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "class rollup failed")
		return dto.ClassAnalyticsResponse{}, err
	}

	totalCompletion := 0.0
	totalQuizAvg := 0.0
	for _, summary := range summaries {
		totalCompletion += summary.CompletionRate
		totalQuizAvg += summary.QuizPerformance.AverageScore
		if summary.IsActive {
			response.ClassSummary.ActiveStudents++
		}
		if summary.CompletionRate > 0 || summary.QuizPerformance.QuizCount > 0 {
			response.ClassSummary.StudentsWithProgress++
		}
	}

	// Class averages run over every enrolled student; a student without
	// quizzes contributes a zero average.
	response.ClassSummary.AverageCompletionRate = round2(totalCompletion / float64(len(students)))
	response.ClassSummary.AverageQuizScore = round2(totalQuizAvg / float64(len(students)))

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CompletionRate > summaries[j].CompletionRate
	})
	response.StudentsDetails = summaries

	observability.ClassAnalyticsBuilds.Inc()
	observability.ClassAnalyticsBuildDuration.Observe(s.now().Sub(started).Seconds())

	s.storeClassCache(ctx, cacheKey, response)

	return response, nil
}

// studentSummary computes one class row. Errors degrade to a zeroed row so
// the class rollup always covers every enrolled student.
func (s *analyticsService) studentSummary(ctx context.Context, student models.User, className string) dto.StudentSummary {
	summary := dto.StudentSummary{
		StudentID: student.ID,
		Name:      student.Name,
		Email:     student.Email,
		PhotoURL:  student.PhotoURL,
	}
	summary.QuizPerformance.AllScores = []float64{}

	completion, err := s.CompletionRate(ctx, student.ID, className)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("completion rate failed, using zero")
		return summary
	}
	summary.CompletionRate = round2(completion)

	quiz, err := s.QuizPerformance(ctx, student.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("quiz performance failed, using zero")
		summary.CompletionRate = 0
		return summary
	}
	summary.QuizPerformance = quiz
	summary.IsActive = summary.CompletionRate > 0 || quiz.QuizCount > 0

	return summary
}

// StudentDetailedProgress assembles the composite student view: identity,
// accurate metrics, per-topic visuals and the 20 most recent records.
func (s *analyticsService) StudentDetailedProgress(ctx context.Context, studentID uint) (dto.StudentDetailResponse, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDetailResponse{}, apperr.NotFound("student")
		}
		return dto.StudentDetailResponse{}, apperr.StoreUnavailable("read student", err)
	}

	completion, err := s.CompletionRate(ctx, studentID, student.StudentClass)
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}

	quiz, err := s.QuizPerformance(ctx, studentID)
	if err != nil {
		return dto.StudentDetailResponse{}, err
	}

	records, err := s.progress.ListByStudent(ctx, studentID, repository.ProgressFilter{})
	if err != nil {
		return dto.StudentDetailResponse{}, apperr.StoreUnavailable("list progress", err)
	}

	visuals := buildTopicVisuals(records)

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordedAt.After(records[j].RecordedAt)
	})
	if len(records) > 20 {
		records = records[:20]
	}
	recent := make([]dto.ProgressResponse, 0, len(records))
	for _, record := range records {
		recent = append(recent, dto.NewProgressResponse(record))
	}

	return dto.StudentDetailResponse{
		StudentInfo: dto.StudentInfo{
			StudentID: student.ID,
			Name:      student.Name,
			Email:     student.Email,
			Class:     student.StudentClass,
			PhotoURL:  student.PhotoURL,
		},
		AccurateMetrics: dto.AccurateMetrics{
			CompletionRate:  round2(completion),
			QuizPerformance: quiz,
			IsActive:        completion > 0 || quiz.QuizCount > 0,
		},
		VisualAnalytics:  visuals,
		DetailedProgress: recent,
	}, nil
}

// InvalidateClass drops the cached rollup after a write that changes it,
// such as a student moving class.
func (s *analyticsService) InvalidateClass(ctx context.Context, className string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, classAnalyticsCachePrefix+className).Err(); err != nil {
		s.logger.Warn().Err(err).Str("class", className).Msg("analytics cache invalidation failed")
	}
}

func (s *analyticsService) storeClassCache(ctx context.Context, key string, response dto.ClassAnalyticsResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

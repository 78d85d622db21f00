package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

// ProgressEventSubject is the NATS subject ledger writes are announced on.
const ProgressEventSubject = "academe.progress.logged"

// ProgressService owns the student activity ledger: appending records,
// partial updates, bulk deletion, and the per-topic visual rollup derived
// from the raw ledger.
type ProgressService interface {
	Log(ctx context.Context, studentID uint, req dto.ProgressCreateRequest) (dto.ProgressResponse, error)
	List(ctx context.Context, studentID uint, activityType string) ([]dto.ProgressResponse, error)
	Update(ctx context.Context, studentID, progressID uint, req dto.ProgressUpdateRequest) (dto.ProgressResponse, error)
	DeleteAll(ctx context.Context, studentID uint) (int64, error)
	Visuals(ctx context.Context, studentID uint) (map[string]dto.TopicVisuals, error)
	Performance(ctx context.Context, studentID uint) (dto.PerformanceSummary, error)
}

type progressService struct {
	repo      repository.ProgressRepository
	content   repository.ContentRepository
	events    *nats.Conn
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

type progressEvent struct {
	StudentID    uint      `json:"student_id"`
	ProgressID   uint      `json:"progress_id"`
	ActivityType string    `json:"activity_type"`
	Status       string    `json:"status"`
	SentAt       time.Time `json:"sent_at"`
}

// NewProgressService constructs the ledger service. The NATS connection may
// be nil; event publishing is then skipped.
func NewProgressService(repo repository.ProgressRepository, content repository.ContentRepository, events *nats.Conn, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	return &progressService{
		repo:      repo,
		content:   content,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		now:       time.Now,
	}
}

func (s *progressService) Log(ctx context.Context, studentID uint, req dto.ProgressCreateRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	recordedAt := s.now().UTC()
	if req.Timestamp != nil {
		recordedAt = req.Timestamp.UTC()
	}

	record := models.ProgressRecord{
		StudentID:    studentID,
		CourseID:     req.CourseID,
		TopicID:      req.TopicID,
		SubtopicID:   req.SubtopicID,
		MaterialID:   req.MaterialID,
		QuizID:       req.QuizID,
		QuestionID:   req.QuestionID,
		ActivityType: req.ActivityType,
		Status:       req.Status,
		Score:        req.Score,
		RecordedAt:   recordedAt,
		Metadata:     datatypes.JSONMap(req.Metadata),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.ProgressResponse{}, apperr.StoreUnavailable("log progress", err)
	}

	s.publishEvent(record)

	return dto.NewProgressResponse(record), nil
}

func (s *progressService) List(ctx context.Context, studentID uint, activityType string) ([]dto.ProgressResponse, error) {
	records, err := s.repo.ListByStudent(ctx, studentID, repository.ProgressFilter{ActivityType: activityType})
	if err != nil {
		return nil, apperr.StoreUnavailable("list progress", err)
	}

	responses := make([]dto.ProgressResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewProgressResponse(record))
	}

	return responses, nil
}

func (s *progressService) Update(ctx context.Context, studentID, progressID uint, req dto.ProgressUpdateRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressResponse{}, apperr.InvalidInput(validationSummary(err))
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Score != nil {
		fields["score"] = *req.Score
	}
	if req.Metadata != nil {
		fields["metadata"] = datatypes.JSONMap(req.Metadata)
	}
	if len(fields) == 0 {
		return dto.ProgressResponse{}, apperr.InvalidInput("no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, studentID, progressID, fields)
	if err != nil {
		return dto.ProgressResponse{}, apperr.StoreUnavailable("update progress", err)
	}
	if affected == 0 {
		return dto.ProgressResponse{}, apperr.NotFound("progress record")
	}

	record, err := s.repo.Get(ctx, studentID, progressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, apperr.NotFound("progress record")
		}
		return dto.ProgressResponse{}, apperr.StoreUnavailable("read progress", err)
	}

	return dto.NewProgressResponse(*record), nil
}

func (s *progressService) DeleteAll(ctx context.Context, studentID uint) (int64, error) {
	removed, err := s.repo.DeleteByStudent(ctx, studentID)
	if err != nil {
		return 0, apperr.StoreUnavailable("delete progress", err)
	}

	s.logger.Info().Uint("student_id", studentID).Int64("removed", removed).Msg("progress ledger wiped")

	return removed, nil
}

// Visuals folds the student's raw ledger into per-topic rollups. Records
// without a topic reference cannot be attributed and are skipped; malformed
// optional fields degrade to defaults, never abort the rollup.
func (s *progressService) Visuals(ctx context.Context, studentID uint) (map[string]dto.TopicVisuals, error) {
	records, err := s.repo.ListByStudent(ctx, studentID, repository.ProgressFilter{})
	if err != nil {
		return nil, apperr.StoreUnavailable("list progress", err)
	}

	return buildTopicVisuals(records), nil
}

// topicAccumulator carries the running state for one topic while the
// ledger is folded in a single pass.
type topicAccumulator struct {
	quizzes         int
	materialsRead   int
	avgScore        float64
	scoredCount     int
	maxQuizScore    float64
	quizScores      []float64
	scoreTimeline   []dto.ScorePoint
	timeSpentPerDay map[string]int
}

func newTopicAccumulator() *topicAccumulator {
	return &topicAccumulator{
		quizScores:      []float64{},
		scoreTimeline:   []dto.ScorePoint{},
		timeSpentPerDay: map[string]int{},
	}
}

func buildTopicVisuals(records []models.ProgressRecord) map[string]dto.TopicVisuals {
	accumulators := map[string]*topicAccumulator{}
	order := []string{}

	for _, record := range records {
		if record.TopicID == nil {
			continue
		}
		topicKey := strconv.FormatUint(uint64(*record.TopicID), 10)

		acc, ok := accumulators[topicKey]
		if !ok {
			acc = newTopicAccumulator()
			accumulators[topicKey] = acc
			order = append(order, topicKey)
		}

		timeSpent := parseTimeSpentMinutes(record.Metadata)
		day := record.RecordedAt.UTC().Format("2006-01-02")
		acc.timeSpentPerDay[day] += timeSpent

		if record.ActivityType == models.ActivityReading && record.MaterialID != nil {
			acc.materialsRead++
		}

		if record.ActivityType == models.ActivityQuiz {
			acc.quizzes++
			if record.Status == models.ProgressCompleted && record.Score != nil {
				score := *record.Score
				acc.avgScore = (acc.avgScore*float64(acc.scoredCount) + score) / float64(acc.scoredCount+1)
				acc.scoredCount++
				acc.quizScores = append(acc.quizScores, score)
				if score > acc.maxQuizScore {
					acc.maxQuizScore = score
				}
				acc.scoreTimeline = append(acc.scoreTimeline, dto.ScorePoint{
					Timestamp: record.RecordedAt,
					Score:     score,
					TimeSpent: timeSpent,
				})
			}
		}
	}

	visuals := make(map[string]dto.TopicVisuals, len(accumulators))
	for _, topicKey := range order {
		acc := accumulators[topicKey]

		totalTime := 0
		for _, minutes := range acc.timeSpentPerDay {
			totalTime += minutes
		}

		// The buffered score list is authoritative for the maximum; it
		// reconciles any drift from the running update above.
		maxScore := 0.0
		for _, score := range acc.quizScores {
			if score > maxScore {
				maxScore = score
			}
		}

		visuals[topicKey] = dto.TopicVisuals{
			Quizzes:         acc.quizzes,
			MaterialsRead:   acc.materialsRead,
			AvgScore:        acc.avgScore,
			MaxQuizScore:    maxScore,
			QuizScores:      acc.quizScores,
			ScoreTimeline:   acc.scoreTimeline,
			TimeSpentPerDay: acc.timeSpentPerDay,
			TimeSpent:       totalTime,
		}
	}

	return visuals
}

// parseTimeSpentMinutes extracts the leading integer of a duration string
// such as "10 min". Units are assumed to be minutes; anything malformed or
// missing counts as zero.
func parseTimeSpentMinutes(metadata datatypes.JSONMap) int {
	raw := ""
	for _, key := range []string{"duration", "time_spent"} {
		if value, ok := metadata[key]; ok {
			if str, ok := value.(string); ok && strings.TrimSpace(str) != "" {
				raw = str
				break
			}
		}
	}
	if raw == "" {
		return 0
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0
	}

	minutes, err := strconv.Atoi(fields[0])
	if err != nil || minutes < 0 {
		return 0
	}

	return minutes
}

// Performance summarises the quiz slice of the ledger for downstream
// consumers (recommendations). Quiz ids are resolved to titles; a quiz
// removed since the attempt keeps a placeholder title.
func (s *progressService) Performance(ctx context.Context, studentID uint) (dto.PerformanceSummary, error) {
	records, err := s.repo.ListByStudent(ctx, studentID, repository.ProgressFilter{ActivityType: models.ActivityQuiz})
	if err != nil {
		return dto.PerformanceSummary{}, apperr.StoreUnavailable("list quiz progress", err)
	}

	if len(records) == 0 {
		return dto.PerformanceSummary{ProgressDetails: []dto.QuizAttempt{}}, nil
	}

	quizIDs := make([]uint, 0, len(records))
	for _, record := range records {
		if record.QuizID != nil {
			quizIDs = append(quizIDs, *record.QuizID)
		}
	}

	titles, err := s.content.GetQuizTitles(ctx, quizIDs)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to resolve quiz titles")
		titles = map[uint]string{}
	}

	summary := dto.PerformanceSummary{ProgressDetails: make([]dto.QuizAttempt, 0, len(records))}
	for _, record := range records {
		title := "Unknown Quiz"
		if record.QuizID != nil {
			if resolved, ok := titles[*record.QuizID]; ok {
				title = resolved
			} else {
				title = fmt.Sprintf("Unknown Quiz (%d)", *record.QuizID)
			}
		}

		if record.Score != nil {
			summary.TotalScore += *record.Score
		}
		if record.Status == models.ProgressCompleted {
			summary.CompletedTopics++
		}

		summary.ProgressDetails = append(summary.ProgressDetails, dto.QuizAttempt{
			QuizID:    record.QuizID,
			QuizTitle: title,
			Status:    record.Status,
			Score:     record.Score,
		})
	}

	summary.AverageScore = summary.TotalScore / float64(len(records))

	return summary, nil
}

func (s *progressService) publishEvent(record models.ProgressRecord) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(progressEvent{
		StudentID:    record.StudentID,
		ProgressID:   record.ID,
		ActivityType: record.ActivityType,
		Status:       record.Status,
		SentAt:       s.now().UTC(),
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(ProgressEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("progress_id", record.ID).Msg("failed to publish progress event")
	}
}

func validationSummary(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fmt.Sprintf("invalid field %s", fieldErrors[0].Field())
	}
	return "invalid request payload"
}

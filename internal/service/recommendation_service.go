package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/repository"
	"github.com/noah-isme/academe-go-api/pkg/ai"
)

const noQuizDataMessage = "No quiz progress data available for analysis."

// RecommendationService turns a student's quiz performance into study
// advice through the AI advisor.
type RecommendationService interface {
	Recommendations(ctx context.Context, studentID uint) (dto.RecommendationResponse, error)
}

type recommendationService struct {
	progress ProgressService
	users    repository.UserRepository
	advisor  ai.Advisor
	logger   zerolog.Logger
}

// NewRecommendationService constructs the recommendation pipeline. The
// advisor may be nil; callers then get the performance summary with a
// static message instead of generated advice.
func NewRecommendationService(progress ProgressService, users repository.UserRepository, advisor ai.Advisor, logger zerolog.Logger) RecommendationService {
	return &recommendationService{
		progress: progress,
		users:    users,
		advisor:  advisor,
		logger:   logger.With().Str("component", "recommendation_service").Logger(),
	}
}

func (s *recommendationService) Recommendations(ctx context.Context, studentID uint) (dto.RecommendationResponse, error) {
	summary, err := s.progress.Performance(ctx, studentID)
	if err != nil {
		return dto.RecommendationResponse{}, err
	}

	if len(summary.ProgressDetails) == 0 {
		return dto.RecommendationResponse{
			Recommendations: noQuizDataMessage,
			Performance:     summary,
		}, nil
	}

	if s.advisor == nil {
		return dto.RecommendationResponse{
			Recommendations: "AI recommendations are not configured.",
			Performance:     summary,
		}, nil
	}

	input := ai.AdviceInput{
		AverageScore: summary.AverageScore,
		TotalScore:   summary.TotalScore,
		Completed:    summary.CompletedTopics,
	}
	if user, userErr := s.users.GetByID(ctx, studentID); userErr == nil {
		input.StudentName = user.Name
		input.Class = user.StudentClass
	} else if !errors.Is(userErr, gorm.ErrRecordNotFound) {
		return dto.RecommendationResponse{}, apperr.StoreUnavailable("read student", userErr)
	}
	for _, attempt := range summary.ProgressDetails {
		input.Attempts = append(input.Attempts, ai.AttemptSummary{
			QuizTitle: attempt.QuizTitle,
			Status:    attempt.Status,
			Score:     attempt.Score,
		})
	}

	advice, err := s.advisor.Advise(ctx, input)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("advisor failed, returning summary only")
		return dto.RecommendationResponse{
			Recommendations: "Recommendations are temporarily unavailable.",
			Performance:     summary,
		}, nil
	}

	return dto.RecommendationResponse{
		Recommendations: advice.Recommendations,
		Performance:     summary,
	}, nil
}

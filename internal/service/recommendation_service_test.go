package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/pkg/ai"
)

type fakeAdvisor struct {
	result ai.AdviceResult
	err    error
	input  ai.AdviceInput
}

func (f *fakeAdvisor) Advise(ctx context.Context, input ai.AdviceInput) (ai.AdviceResult, error) {
	f.input = input
	return f.result, f.err
}

func newRecommendationFixture(advisor ai.Advisor) (RecommendationService, *fakeProgressRepo, *fakeUserRepo) {
	progress := &fakeProgressRepo{}
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", StudentClass: "5", Role: models.RoleStudent},
	}}
	content := &fakeContentRepo{quizTitles: map[uint]string{3: "Plants quiz"}}
	progressSvc := newTestProgressService(progress, content)
	return NewRecommendationService(progressSvc, users, advisor, testLogger()), progress, users
}

func TestRecommendationsWithoutQuizData(t *testing.T) {
	svc, _, _ := newRecommendationFixture(&fakeAdvisor{})

	resp, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "No quiz progress data available for analysis.", resp.Recommendations)
	require.Zero(t, resp.Performance.TotalScore)
}

func TestRecommendationsUsesAdvisor(t *testing.T) {
	advisor := &fakeAdvisor{result: ai.AdviceResult{Recommendations: "Revisit photosynthesis basics."}}
	svc, progress, _ := newRecommendationFixture(advisor)
	score := 60.0
	progress.records = []models.ProgressRecord{
		{ID: 1, StudentID: 1, QuizID: ptrUint(3), ActivityType: models.ActivityQuiz, Status: models.ProgressCompleted, Score: &score},
	}

	resp, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Revisit photosynthesis basics.", resp.Recommendations)
	require.Equal(t, "Asha", advisor.input.StudentName)
	require.Equal(t, "5", advisor.input.Class)
	require.Len(t, advisor.input.Attempts, 1)
	require.Equal(t, "Plants quiz", advisor.input.Attempts[0].QuizTitle)
}

func TestRecommendationsAdvisorUnavailable(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("rate limited")}
	svc, progress, _ := newRecommendationFixture(advisor)
	score := 60.0
	progress.records = []models.ProgressRecord{
		{ID: 1, StudentID: 1, QuizID: ptrUint(3), ActivityType: models.ActivityQuiz, Status: models.ProgressCompleted, Score: &score},
	}

	resp, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err, "advisor failure degrades, never fails the request")
	require.Equal(t, "Recommendations are temporarily unavailable.", resp.Recommendations)
	require.InDelta(t, 60.0, resp.Performance.TotalScore, 0.001)
}

func TestRecommendationsNoAdvisorConfigured(t *testing.T) {
	svc, progress, _ := newRecommendationFixture(nil)
	score := 60.0
	progress.records = []models.ProgressRecord{
		{ID: 1, StudentID: 1, QuizID: ptrUint(3), ActivityType: models.ActivityQuiz, Status: models.ProgressCompleted, Score: &score},
	}

	resp, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "AI recommendations are not configured.", resp.Recommendations)
}

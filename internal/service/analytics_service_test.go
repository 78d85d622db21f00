package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academe-go-api/internal/apperr"
	"github.com/noah-isme/academe-go-api/internal/models"
)

type fixedHierarchy struct {
	materials int64
	quizzes   int64
	err       error
}

func (f fixedHierarchy) CountClassMaterials(ctx context.Context, className string) (int64, error) {
	return f.materials, f.err
}

func (f fixedHierarchy) CountCourseMaterials(ctx context.Context, courseID uint) (int64, error) {
	return f.materials, f.err
}

func (f fixedHierarchy) CountClassQuizzes(ctx context.Context, className string) (int64, error) {
	return f.quizzes, f.err
}

func (f fixedHierarchy) InvalidateClassTally(ctx context.Context, className string) {}

func completedReading(studentID, materialID uint) models.ProgressRecord {
	return models.ProgressRecord{
		StudentID:    studentID,
		MaterialID:   ptrUint(materialID),
		ActivityType: models.ActivityReading,
		Status:       models.ProgressCompleted,
		RecordedAt:   time.Now().UTC(),
	}
}

func completedQuiz(studentID uint, score *float64) models.ProgressRecord {
	return models.ProgressRecord{
		StudentID:    studentID,
		QuizID:       ptrUint(1),
		ActivityType: models.ActivityQuiz,
		Status:       models.ProgressCompleted,
		Score:        score,
		RecordedAt:   time.Now().UTC(),
	}
}

func TestAnalyticsCompletionRateDeduplicatesMaterials(t *testing.T) {
	progress := &fakeProgressRepo{records: []models.ProgressRecord{
		completedReading(1, 100),
		completedReading(1, 101),
		completedReading(1, 101),
	}}
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", StudentClass: "5", Role: models.RoleStudent},
	}}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, nil, time.Minute, testLogger())

	rate, err := svc.CompletionRate(context.Background(), 1, "5")
	require.NoError(t, err)
	require.InDelta(t, 50.0, rate, 0.001, "repeats of the same material count once")
}

func TestAnalyticsCompletionRateZeroMaterials(t *testing.T) {
	progress := &fakeProgressRepo{records: []models.ProgressRecord{completedReading(1, 100)}}
	users := &fakeUserRepo{}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 0}, nil, time.Minute, testLogger())

	rate, err := svc.CompletionRate(context.Background(), 1, "5")
	require.NoError(t, err)
	require.Zero(t, rate)
}

func TestAnalyticsCompletionRateCapsAtHundred(t *testing.T) {
	progress := &fakeProgressRepo{records: []models.ProgressRecord{
		completedReading(1, 100),
		completedReading(1, 101),
		completedReading(1, 102),
	}}
	users := &fakeUserRepo{}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 2}, nil, time.Minute, testLogger())

	rate, err := svc.CompletionRate(context.Background(), 1, "5")
	require.NoError(t, err)
	require.InDelta(t, 100.0, rate, 0.001)
}

func TestAnalyticsCompletionRateResolvesStudentClass(t *testing.T) {
	progress := &fakeProgressRepo{}
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, StudentClass: "5", Role: models.RoleStudent},
	}}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, nil, time.Minute, testLogger())

	rate, err := svc.CompletionRate(context.Background(), 1, "")
	require.NoError(t, err)
	require.Zero(t, rate)

	_, err = svc.CompletionRate(context.Background(), 99, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnalyticsQuizPerformanceSkipsMissingAndZeroScores(t *testing.T) {
	progress := &fakeProgressRepo{records: []models.ProgressRecord{
		completedQuiz(1, ptrFloat(80)),
		completedQuiz(1, ptrFloat(0)),
		completedQuiz(1, ptrFloat(90)),
		completedQuiz(1, nil),
	}}
	svc := NewAnalyticsService(progress, &fakeUserRepo{}, fixedHierarchy{}, nil, time.Minute, testLogger())

	performance, err := svc.QuizPerformance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, performance.QuizCount)
	require.InDelta(t, 85.0, performance.AverageScore, 0.001)
	require.InDelta(t, 170.0, performance.TotalScore, 0.001)
	require.InDelta(t, 90.0, performance.MaxScore, 0.001)
	require.Equal(t, []float64{80, 90}, performance.AllScores)
}

func TestAnalyticsQuizPerformanceEmpty(t *testing.T) {
	svc := NewAnalyticsService(&fakeProgressRepo{}, &fakeUserRepo{}, fixedHierarchy{}, nil, time.Minute, testLogger())

	performance, err := svc.QuizPerformance(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, performance.QuizCount)
	require.Zero(t, performance.AverageScore)
	require.NotNil(t, performance.AllScores)
}

func TestAnalyticsClassRollupRanksStudents(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", Email: "asha@example.com", StudentClass: "5", Role: models.RoleStudent},
		2: {ID: 2, Name: "Ravi", Email: "ravi@example.com", StudentClass: "5", Role: models.RoleStudent},
		3: {ID: 3, Name: "Meena", Email: "meena@example.com", StudentClass: "5", Role: models.RoleStudent},
	}}
	progress := &fakeProgressRepo{records: []models.ProgressRecord{
		// Asha: half the class materials plus a quiz.
		completedReading(1, 100),
		completedReading(1, 101),
		completedQuiz(1, ptrFloat(90)),
		// Ravi: one material.
		completedReading(2, 100),
		// Meena: no activity at all.
	}}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, nil, time.Minute, testLogger())

	response, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err)
	require.False(t, response.CacheHit)
	require.Equal(t, 3, response.ClassSummary.TotalStudents)
	require.Equal(t, 2, response.ClassSummary.ActiveStudents)
	require.Equal(t, 2, response.ClassSummary.StudentsWithProgress)
	require.InDelta(t, 25.0, response.ClassSummary.AverageCompletionRate, 0.001)
	require.InDelta(t, 30.0, response.ClassSummary.AverageQuizScore, 0.001, "quizless students pull the class mean down")

	require.Len(t, response.StudentsDetails, 3)
	require.Equal(t, uint(1), response.StudentsDetails[0].StudentID)
	require.Equal(t, uint(2), response.StudentsDetails[1].StudentID)
	require.Equal(t, uint(3), response.StudentsDetails[2].StudentID)
	require.True(t, response.StudentsDetails[0].IsActive)
	require.False(t, response.StudentsDetails[2].IsActive)
}

func TestAnalyticsClassRollupAveragesOverAllStudents(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", StudentClass: "5", Role: models.RoleStudent},
		2: {ID: 2, Name: "Ravi", StudentClass: "5", Role: models.RoleStudent},
	}}
	progress := &fakeProgressRepo{records: []models.ProgressRecord{
		completedQuiz(1, ptrFloat(80)),
	}}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, nil, time.Minute, testLogger())

	response, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err)
	require.InDelta(t, 40.0, response.ClassSummary.AverageQuizScore, 0.001, "mean runs over both students, not just the scorer")
}

func TestAnalyticsClassRollupEmptyClass(t *testing.T) {
	svc := NewAnalyticsService(&fakeProgressRepo{}, &fakeUserRepo{}, fixedHierarchy{}, nil, time.Minute, testLogger())

	response, err := svc.ClassAnalytics(context.Background(), "12")
	require.NoError(t, err)
	require.Zero(t, response.ClassSummary.TotalStudents)
	require.Empty(t, response.StudentsDetails)
	require.Zero(t, response.ClassSummary.AverageCompletionRate)
}

func TestAnalyticsClassRollupCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", StudentClass: "5", Role: models.RoleStudent},
	}}
	progress := &fakeProgressRepo{records: []models.ProgressRecord{completedReading(1, 100)}}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, client, time.Minute, testLogger())

	first, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// A new student appearing must not change the cached rollup.
	users.users[2] = models.User{ID: 2, Name: "Ravi", StudentClass: "5", Role: models.RoleStudent}

	second, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.ClassSummary.TotalStudents, second.ClassSummary.TotalStudents)

	svc.InvalidateClass(context.Background(), "5")

	third, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, 2, third.ClassSummary.TotalStudents)
}

func TestAnalyticsClassRollupZeroFillsFailingStudent(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", StudentClass: "5", Role: models.RoleStudent},
	}}
	progress := &fakeProgressRepo{err: context.DeadlineExceeded}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 4}, nil, time.Minute, testLogger())

	response, err := svc.ClassAnalytics(context.Background(), "5")
	require.NoError(t, err, "one failing student must not fail the class rollup")
	require.Len(t, response.StudentsDetails, 1)
	require.Zero(t, response.StudentsDetails[0].CompletionRate)
	require.Zero(t, response.StudentsDetails[0].QuizPerformance.QuizCount)
	require.False(t, response.StudentsDetails[0].IsActive)
}

func TestAnalyticsStudentDetailedProgress(t *testing.T) {
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {ID: 1, Name: "Asha", Email: "asha@example.com", StudentClass: "5", Role: models.RoleStudent},
	}}
	records := []models.ProgressRecord{}
	for i := 0; i < 25; i++ {
		records = append(records, models.ProgressRecord{
			ID:           uint(i + 1),
			StudentID:    1,
			TopicID:      ptrUint(7),
			MaterialID:   ptrUint(uint(100 + i)),
			ActivityType: models.ActivityReading,
			Status:       models.ProgressCompleted,
			RecordedAt:   day.Add(time.Duration(i) * time.Hour),
		})
	}
	progress := &fakeProgressRepo{records: records, nextID: 25}
	svc := NewAnalyticsService(progress, users, fixedHierarchy{materials: 50}, nil, time.Minute, testLogger())

	detail, err := svc.StudentDetailedProgress(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Asha", detail.StudentInfo.Name)
	require.InDelta(t, 50.0, detail.AccurateMetrics.CompletionRate, 0.001)
	require.True(t, detail.AccurateMetrics.IsActive)
	require.Len(t, detail.DetailedProgress, 20, "recent activity is capped")
	require.Equal(t, uint(25), detail.DetailedProgress[0].ProgressID, "newest first")
	require.Contains(t, detail.VisualAnalytics, "7")

	_, err = svc.StudentDetailedProgress(context.Background(), 99)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

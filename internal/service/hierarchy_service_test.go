package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academe-go-api/internal/models"
)

func hierarchyFixture() *fakeContentRepo {
	return &fakeContentRepo{
		courses: map[string][]models.Course{
			"5": {{ID: 1, ClassName: "5", Name: "Science"}, {ID: 2, ClassName: "5", Name: "Maths"}},
		},
		topics: map[uint][]models.Topic{
			1: {{ID: 10, CourseID: 1}, {ID: 11, CourseID: 1}},
			2: {{ID: 20, CourseID: 2}},
		},
		subtopics: map[uint][]models.Subtopic{
			10: {{ID: 100, TopicID: 10}},
		},
		topicMats: map[uint]int64{10: 2, 11: 1, 20: 3},
		subMats:   map[uint]int64{100: 4},
		topicQuiz: map[uint]int64{10: 1, 20: 2},
		subQuiz:   map[uint]int64{100: 1},
	}
}

func TestHierarchyServiceCountsAllReachableLeaves(t *testing.T) {
	content := hierarchyFixture()
	svc := NewHierarchyService(content, nil, time.Minute, testLogger())

	materials, err := svc.CountClassMaterials(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, int64(10), materials)

	quizzes, err := svc.CountClassQuizzes(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, int64(4), quizzes)
}

func TestHierarchyServiceZeroCoursesYieldsZero(t *testing.T) {
	content := &fakeContentRepo{courses: map[string][]models.Course{}}
	svc := NewHierarchyService(content, nil, time.Minute, testLogger())

	materials, err := svc.CountClassMaterials(context.Background(), "12")
	require.NoError(t, err)
	require.Zero(t, materials)
}

func TestHierarchyServiceCountCourseMaterials(t *testing.T) {
	content := hierarchyFixture()
	svc := NewHierarchyService(content, nil, time.Minute, testLogger())

	count, err := svc.CountCourseMaterials(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), count)
}

func TestHierarchyServiceCachesAndInvalidatesTallies(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	content := hierarchyFixture()
	svc := NewHierarchyService(content, client, time.Minute, testLogger())

	first, err := svc.CountClassMaterials(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, int64(10), first)
	walkCalls := content.listCalls

	second, err := svc.CountClassMaterials(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, walkCalls, content.listCalls, "cached tally must not re-walk the tree")

	svc.InvalidateClassTally(context.Background(), "5")

	third, err := svc.CountClassMaterials(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, first, third)
	require.Greater(t, content.listCalls, walkCalls, "invalidation must force a fresh walk")
}

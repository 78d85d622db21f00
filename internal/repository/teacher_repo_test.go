package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academe-go-api/internal/models"
)

func TestTeacherRepositoryClassListRoundTrip(t *testing.T) {
	db := setupTestDB(t, &models.TeacherProfile{})
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := models.TeacherProfile{
		Name:            "Asha Verma",
		Email:           "asha@example.com",
		Subject:         "Science",
		AllottedClasses: []string{"5", "6", " 7 "},
		IsActive:        true,
	}
	require.NoError(t, repo.Create(ctx, &profile))

	loaded, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.Equal(t, []string{"5", "6", "7"}, loaded.AllottedClasses)
	require.True(t, loaded.HasClass("6"))
	require.True(t, loaded.HasClass(" 7"))
	require.False(t, loaded.HasClass("8"))
}

func TestTeacherRepositoryGetByUserID(t *testing.T) {
	db := setupTestDB(t, &models.TeacherProfile{})
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	userID := uint(42)
	profile := models.TeacherProfile{
		Name:            "Ravi Iyer",
		Email:           "ravi@example.com",
		UserID:          &userID,
		AllottedClasses: []string{"8"},
	}
	require.NoError(t, repo.Create(ctx, &profile))

	loaded, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "ravi@example.com", loaded.Email)

	_, err = repo.GetByUserID(ctx, 99)
	require.Error(t, err)
}

func TestTeacherRepositoryDeleteByEmail(t *testing.T) {
	db := setupTestDB(t, &models.TeacherProfile{})
	repo := NewTeacherRepository(db)
	ctx := context.Background()

	profile := models.TeacherProfile{Name: "Meena", Email: "meena@example.com"}
	require.NoError(t, repo.Create(ctx, &profile))

	require.NoError(t, repo.DeleteByEmail(ctx, "meena@example.com"))

	_, err := repo.GetByEmail(ctx, "meena@example.com")
	require.Error(t, err)
}

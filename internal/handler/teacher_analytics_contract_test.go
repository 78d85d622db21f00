package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academe-go-api/internal/dto"
	"github.com/noah-isme/academe-go-api/internal/handler"
	"github.com/noah-isme/academe-go-api/internal/service"
)

const classAnalyticsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["success", "message", "data"],
  "properties": {
    "success": {"type": "boolean"},
    "message": {"type": "string"},
    "data": {
      "type": "object",
      "required": ["class_name", "class_summary", "students_details", "generated_at", "cache_hit"],
      "properties": {
        "class_name": {"type": "string"},
        "class_summary": {
          "type": "object",
          "required": ["total_students", "active_students", "average_completion_rate", "average_quiz_score", "students_with_progress"],
          "properties": {
            "total_students": {"type": "integer", "minimum": 0},
            "active_students": {"type": "integer", "minimum": 0},
            "average_completion_rate": {"type": "number", "minimum": 0, "maximum": 100},
            "average_quiz_score": {"type": "number", "minimum": 0},
            "students_with_progress": {"type": "integer", "minimum": 0}
          }
        },
        "students_details": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["student_id", "name", "email", "completion_rate", "quiz_performance", "is_active"],
            "properties": {
              "student_id": {"type": "integer", "minimum": 1},
              "name": {"type": "string"},
              "email": {"type": "string"},
              "completion_rate": {"type": "number", "minimum": 0, "maximum": 100},
              "quiz_performance": {
                "type": "object",
                "required": ["average_score", "total_score", "quiz_count", "max_score"],
                "properties": {
                  "average_score": {"type": "number", "minimum": 0},
                  "total_score": {"type": "number", "minimum": 0},
                  "quiz_count": {"type": "integer", "minimum": 0},
                  "max_score": {"type": "number", "minimum": 0}
                }
              },
              "is_active": {"type": "boolean"}
            }
          }
        },
        "generated_at": {"type": "string"},
        "cache_hit": {"type": "boolean"}
      }
    }
  }
}`

type stubTeacherService struct {
	service.TeacherService
	analytics dto.ClassAnalyticsResponse
}

func (s stubTeacherService) ClassAnalytics(ctx context.Context, identity service.Identity, className string) (dto.ClassAnalyticsResponse, error) {
	return s.analytics, nil
}

func TestClassAnalyticsContract(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource("class_analytics.schema.json", strings.NewReader(classAnalyticsSchema)))
	schema, err := compiler.Compile("class_analytics.schema.json")
	require.NoError(t, err)

	analytics := dto.ClassAnalyticsResponse{
		ClassName: "5",
		StudentsDetails: []dto.StudentSummary{
			{
				StudentID:      1,
				Name:           "Asha",
				Email:          "asha@example.com",
				CompletionRate: 62.5,
				QuizPerformance: dto.QuizPerformance{
					AverageScore: 85,
					TotalScore:   170,
					QuizCount:    2,
					MaxScore:     90,
					AllScores:    []float64{80, 90},
				},
				IsActive: true,
			},
		},
		GeneratedAt: time.Now().UTC(),
	}
	analytics.ClassSummary.TotalStudents = 1
	analytics.ClassSummary.ActiveStudents = 1
	analytics.ClassSummary.StudentsWithProgress = 1
	analytics.ClassSummary.AverageCompletionRate = 62.5
	analytics.ClassSummary.AverageQuizScore = 85

	teacherHandler := handler.NewTeacherHandler(stubTeacherService{analytics: analytics}, zerolog.Nop())

	app := fiber.New()
	teacherHandler.Register(app.Group("/api/v1/teachers"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teachers/classes/5/analytics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

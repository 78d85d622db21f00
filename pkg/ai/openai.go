package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "academe",
		Subsystem: "ai",
		Name:      "advice_duration_seconds",
		Help:      "Duration of AI advice requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academe",
		Subsystem: "ai",
		Name:      "advice_failures_total",
		Help:      "Number of AI advice failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI advisor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAdvisor implements Advisor against the OpenAI chat completion API.
type OpenAIAdvisor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAdvisor builds a new advisor using the provided configuration.
func NewOpenAIAdvisor(cfg OpenAIConfig) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/noah-isme/academe-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAdvisor{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Advise sends the performance summary to OpenAI and parses the response.
func (a *OpenAIAdvisor) Advise(parent context.Context, input AdviceInput) (AdviceResult, error) {
	ctx, span := a.tracer.Start(parent, "openai.advise", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: advisorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildAdvicePrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AdviceResult{}, fmt.Errorf("openai advise: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AdviceResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseAdviceResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AdviceResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func advisorSystemPrompt() string {
	return "You are a study advisor for school students. Respond with a JSON object containing recommendations (a short enc" +
		"ouraging paragraph of concrete study advice) and an optional focus_areas array of topic names. Base the advice on" +
		" the quiz performance data only."
}

func buildAdvicePrompt(input AdviceInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Student\n")
	builder.WriteString(input.StudentName)
	if input.Class != "" {
		builder.WriteString(" (class ")
		builder.WriteString(input.Class)
		builder.WriteString(")")
	}
	builder.WriteString(fmt.Sprintf("\n\n## Summary\nAverage score: %.2f\nTotal score: %.2f\nCompleted quizzes: %d\n", input.AverageScore, input.TotalScore, input.Completed))
	builder.WriteString("\n## Attempts\n")
	for _, attempt := range input.Attempts {
		builder.WriteString("- ")
		builder.WriteString(attempt.QuizTitle)
		builder.WriteString(" [")
		builder.WriteString(attempt.Status)
		builder.WriteString("]")
		if attempt.Score != nil {
			builder.WriteString(fmt.Sprintf(" score %.1f", *attempt.Score))
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseAdviceResponse(content string) (AdviceResult, error) {
	type payload struct {
		Recommendations string   `json:"recommendations"`
		FocusAreas      []string `json:"focus_areas"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return AdviceResult{}, fmt.Errorf("parse advice json: %w", err)
	}

	if strings.TrimSpace(data.Recommendations) == "" {
		return AdviceResult{}, fmt.Errorf("advice response missing recommendations")
	}

	return AdviceResult{
		Recommendations: data.Recommendations,
		FocusAreas:      data.FocusAreas,
	}, nil
}

package ai

import "context"

// AttemptSummary is one quiz attempt fed into the advisor.
type AttemptSummary struct {
	QuizTitle string
	Status    string
	Score     *float64
}

// AdviceInput contains the performance data the advisor reasons over.
type AdviceInput struct {
	StudentName  string
	Class        string
	AverageScore float64
	TotalScore   float64
	Completed    int
	Attempts     []AttemptSummary
}

// AdviceResult is the structured study advice returned by the AI advisor.
type AdviceResult struct {
	Recommendations string                 `json:"recommendations"`
	FocusAreas      []string               `json:"focus_areas,omitempty"`
	Raw             map[string]interface{} `json:"raw,omitempty"`
}

// Advisor describes an AI model capable of generating study advice from
// quiz performance.
type Advisor interface {
	Advise(ctx context.Context, input AdviceInput) (AdviceResult, error)
}

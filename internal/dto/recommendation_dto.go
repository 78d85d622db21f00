package dto

// RecommendationResponse carries AI-generated study advice alongside the
// performance data it was derived from.
type RecommendationResponse struct {
	Recommendations string             `json:"recommendations"`
	Performance     PerformanceSummary `json:"performance"`
}

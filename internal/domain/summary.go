package domain

// Summary is the final interview scorecard.
type Summary struct {
	OverallScore   float64 `json:"overall_score"`
	AvgRelevance   float64 `json:"avg_relevance"`
	AvgClarity     float64 `json:"avg_clarity"`
	AvgDepth       float64 `json:"avg_depth"`
	AvgConfidence  float64 `json:"avg_confidence"`
	Recommendation string  `json:"recommendation"`
	TotalQuestions int     `json:"total_questions"`
}

// Timeline is the full session history returned by the timeline lookup.
type Timeline struct {
	SessionID     string       `json:"session_id"`
	Summary       Summary      `json:"summary"`
	Evaluations   []Evaluation `json:"evaluations"`
	TopicsCovered []string     `json:"topics_covered"`
}

package domain

import (
	"encoding/json"
	"time"
)

// Scores holds the four per-answer sub-scores on a 0-10 scale.
//
// Confidence is a pointer because the upstream evaluator may omit it; the
// scoring aggregator substitutes its documented default when averaging.
type Scores struct {
	Relevance  float64  `json:"relevance"`
	Clarity    float64  `json:"clarity"`
	Depth      float64  `json:"depth"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Clamp bounds every sub-score to [0,10]. Applied before storage and before
// aggregation.
func (s *Scores) Clamp() {
	s.Relevance = ClampScore(s.Relevance)
	s.Clarity = ClampScore(s.Clarity)
	s.Depth = ClampScore(s.Depth)
	if s.Confidence != nil {
		c := ClampScore(*s.Confidence)
		s.Confidence = &c
	}
}

// ClampScore bounds a single score to the [0,10] evaluation scale.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Evaluation is one scored answer.
type Evaluation struct {
	Question  string          `json:"question,omitempty"`
	Answer    string          `json:"answer,omitempty"`
	Scores    Scores          `json:"scores"`
	Feedback  string          `json:"feedback"`
	Emotion   json.RawMessage `json:"emotion,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Package scoring turns a stream of per-answer evaluations into the final
// interview scorecard.
package scoring

import (
	"math"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

// DefaultConfidence substitutes a missing per-record confidence sub-score
// before averaging, per the upstream evaluator's convention.
const DefaultConfidence = 5.0

// Recommendation thresholds over the overall score.
const (
	StrongHireThreshold = 7.5
	HireThreshold       = 6.0
)

// Recommendation labels.
const (
	RecommendationStrongHire       = "Strong Hire"
	RecommendationHire             = "Hire"
	RecommendationNeedsImprovement = "Needs Improvement"
	RecommendationNotEnoughData    = "Not enough data"
)

// ComputeSummary aggregates all evaluations into the scorecard. With no
// evaluations it returns the documented empty summary rather than failing.
func ComputeSummary(evals []domain.Evaluation) domain.Summary {
	if len(evals) == 0 {
		return domain.Summary{Recommendation: RecommendationNotEnoughData}
	}

	var relevance, clarity, depth, confidence float64
	for _, e := range evals {
		relevance += domain.ClampScore(e.Scores.Relevance)
		clarity += domain.ClampScore(e.Scores.Clarity)
		depth += domain.ClampScore(e.Scores.Depth)
		if e.Scores.Confidence != nil {
			confidence += domain.ClampScore(*e.Scores.Confidence)
		} else {
			confidence += DefaultConfidence
		}
	}

	n := float64(len(evals))
	avgRelevance := round2(relevance / n)
	avgClarity := round2(clarity / n)
	avgDepth := round2(depth / n)
	avgConfidence := round2(confidence / n)
	overall := round2((avgRelevance + avgClarity + avgDepth + avgConfidence) / 4)

	return domain.Summary{
		OverallScore:   overall,
		AvgRelevance:   avgRelevance,
		AvgClarity:     avgClarity,
		AvgDepth:       avgDepth,
		AvgConfidence:  avgConfidence,
		Recommendation: recommend(overall),
		TotalQuestions: len(evals),
	}
}

// AverageScores returns the unrounded running averages used by the
// adaptive policy. Zeros with no evaluations.
func AverageScores(evals []domain.Evaluation) (avgOverall, avgRelevance float64) {
	if len(evals) == 0 {
		return 0, 0
	}
	s := ComputeSummary(evals)
	return s.OverallScore, s.AvgRelevance
}

func recommend(overall float64) string {
	switch {
	case overall >= StrongHireThreshold:
		return RecommendationStrongHire
	case overall >= HireThreshold:
		return RecommendationHire
	default:
		return RecommendationNeedsImprovement
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

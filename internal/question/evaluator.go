package question

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/llm"
)

// jsonBlockRe extracts the outermost JSON object from free-form model
// output.
var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// Evaluator scores one answer against its question.
type Evaluator struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewEvaluator creates an answer evaluator over the given provider.
func NewEvaluator(provider llm.Provider, timeout time.Duration, logger *slog.Logger) *Evaluator {
	return &Evaluator{provider: provider, timeout: timeout, logger: logger}
}

// fallbackEvaluation is the fixed low-score record used when the evaluation
// capability fails or returns unparsable output.
func fallbackEvaluation(question, answer, feedback string) domain.Evaluation {
	confidence := 2.0
	return domain.Evaluation{
		Question: question,
		Answer:   answer,
		Scores: domain.Scores{
			Relevance:  2,
			Clarity:    2,
			Depth:      1,
			Confidence: &confidence,
		},
		Feedback: feedback,
	}
}

// Evaluate scores the answer. Capability failures are absorbed here: the
// result is always a storable evaluation record, degrading to a fixed
// low-score record with explanatory feedback.
func (e *Evaluator) Evaluate(ctx context.Context, questionText, answer string) domain.Evaluation {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.provider.Complete(ctx, evaluatePrompt(questionText, answer))
	if err != nil {
		e.logger.Warn("answer evaluation failed, using fallback", "error", err)
		return fallbackEvaluation(questionText, answer,
			"Answer was unclear or did not address the question.")
	}

	block := jsonBlockRe.FindString(raw)
	if block == "" {
		return fallbackEvaluation(questionText, answer,
			"Answer was unclear or did not address the question.")
	}

	var parsed struct {
		Scores   domain.Scores `json:"scores"`
		Feedback string        `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return fallbackEvaluation(questionText, answer,
			"Answer was unclear or not well structured.")
	}

	parsed.Scores.Clamp()
	return domain.Evaluation{
		Question: questionText,
		Answer:   answer,
		Scores:   parsed.Scores,
		Feedback: parsed.Feedback,
	}
}

func evaluatePrompt(question, answer string) string {
	return fmt.Sprintf(`You are a strict technical interviewer.

Question:
%s

Candidate Answer:
%s

Return ONLY valid JSON in this format:
{
  "scores": {
    "relevance": 0-10,
    "clarity": 0-10,
    "depth": 0-10,
    "confidence": 0-10
  },
  "feedback": "short, honest feedback"
}

Rules:
- If the answer is nonsense or irrelevant, give low scores.
- Do not add explanations.
`, question, answer)
}

package question

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/llm"
)

// FallbackQuestion is the deterministic template used when generation
// fails or returns nothing usable.
func FallbackQuestion(topic string) string {
	return fmt.Sprintf("Explain a key concept related to %s.", topic)
}

// Generator produces one interview question per call.
type Generator struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerator creates a question generator over the given provider. Every
// call runs under the bounded timeout.
func NewGenerator(provider llm.Provider, timeout time.Duration, logger *slog.Logger) *Generator {
	return &Generator{provider: provider, timeout: timeout, logger: logger}
}

// Generate returns a sanitized question for the topic. Generation failures
// are absorbed here: the caller always receives a usable question, falling
// back to the deterministic template.
func (g *Generator) Generate(ctx context.Context, role, topic string, difficulty domain.Difficulty, history string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.provider.Complete(ctx, generatePrompt(role, topic, difficulty, history))
	if err != nil {
		g.logger.Warn("question generation failed, using fallback",
			"topic", topic, "error", err)
		return FallbackQuestion(topic)
	}

	q := Sanitize(raw)
	if q == "" {
		return FallbackQuestion(topic)
	}
	return q
}

func generatePrompt(role, topic string, difficulty domain.Difficulty, history string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional technical interviewer.

Generate ONE interview question for a %s role.

Topic: %s
Difficulty: %s

Rules:
- Be concise
- No multiple questions
- No explanations
- Just the question
`, role, topic, difficulty)
	if history != "" {
		fmt.Fprintf(&b, "\nQuestions already asked (do not repeat them):%s\n", history)
	}
	return b.String()
}

package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/policy"
	"github.com/codelikeharsh/interviewd/internal/topic"
)

const (
	// planningSecondsPerQuestion is the 3-minute-per-question planning
	// heuristic used to size the batch queue.
	planningSecondsPerQuestion = 180
	// queueBuffer keeps the session from running out of questions before
	// the time budget elapses.
	queueBuffer = 2
)

// BatchSize returns the number of questions pre-generated for a session of
// the given duration: ceil(durationSeconds/180) + 2.
func BatchSize(durationSeconds int) int {
	base := (durationSeconds + planningSecondsPerQuestion - 1) / planningSecondsPerQuestion
	return base + queueBuffer
}

// Pipeline produces questions for a session in either delivery mode.
type Pipeline struct {
	generator *Generator
	selector  *policy.Selector
	bank      topic.Bank
}

// NewPipeline wires the generator, the topic policy and the topic bank.
func NewPipeline(generator *Generator, selector *policy.Selector, bank topic.Bank) *Pipeline {
	return &Pipeline{generator: generator, selector: selector, bank: bank}
}

// Bank exposes the configured topic bank.
func (p *Pipeline) Bank() topic.Bank {
	return p.bank
}

// BuildQueue pre-generates the batch-mode question queue: one question per
// slot, cycling through the configured topics round-robin, with a running
// history of prior questions passed to generation to reduce repetition.
func (p *Pipeline) BuildQueue(ctx context.Context, cfg domain.SessionConfig, difficulty domain.Difficulty) []string {
	total := BatchSize(cfg.DurationSeconds)
	questions := make([]string, 0, total)

	var history strings.Builder
	for i := 0; i < total; i++ {
		t := QueueTopic(cfg.Topics, i)
		q := p.generator.Generate(ctx, cfg.Role, t, difficulty, history.String())
		questions = append(questions, q)
		fmt.Fprintf(&history, "\nQ%d: %s", i+1, q)
	}
	return questions
}

// QueueTopic maps a 0-based queue slot to its round-robin topic.
func QueueTopic(topics []string, slot int) string {
	if len(topics) == 0 {
		return "general"
	}
	return topics[slot%len(topics)]
}

// NextAdaptive produces one question just-in-time from the current policy
// output. ok is false when the role's topic bank is exhausted. A non-nil
// initial difficulty overrides the policy tier; the engine passes the
// level-mapped tier for the opening question, before any evaluation exists.
func (p *Pipeline) NextAdaptive(ctx context.Context, role string, asked []string, avgScore, avgRelevance float64, initial *domain.Difficulty) (selectedTopic, questionText string, ok bool, err error) {
	t, difficulty, ok, err := p.selector.SelectTopic(ctx, p.bank.Topics(role), asked, avgScore, avgRelevance)
	if err != nil || !ok {
		return "", "", false, err
	}
	if initial != nil {
		difficulty = *initial
	}
	return t, p.generator.Generate(ctx, role, t, difficulty, ""), true, nil
}

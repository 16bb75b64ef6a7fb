// Package policy decides the next topic candidates and the difficulty tier
// for a session, based on accumulated performance.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

// Engine evaluates the interview policy rego module.
type Engine struct {
	query rego.PreparedEvalQuery
}

// Input is the policy evaluation input.
type Input struct {
	Bank         []string `json:"bank"`
	Asked        []string `json:"asked"`
	AvgScore     float64  `json:"avg_score"`
	AvgRelevance float64  `json:"avg_relevance"`
}

// Decision is the policy output: the difficulty tier for the next question
// and the ordered candidate topics the selector may pick from. An empty
// candidate list signals exhaustion, which is a normal terminal condition.
type Decision struct {
	Difficulty domain.Difficulty
	Candidates []string
}

// NewEngine creates a new policy engine with the given rego content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.interview_policy.decision"),
		rego.Module("interview_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the policy over the given input.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy produced no decision")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	dec := Decision{}
	if tier, ok := obj["difficulty"].(string); ok {
		dec.Difficulty = domain.Difficulty(tier)
	}
	if raw, ok := obj["candidates"].([]interface{}); ok {
		dec.Candidates = make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				dec.Candidates = append(dec.Candidates, s)
			}
		}
	}
	return dec, nil
}

// DefaultPolicy is the interview policy content.
//
// Difficulty is a step function of the running average relevance score with
// breakpoints at 4 and 7. Candidate topics are the bank minus the asked
// topics, in bank order; below an average score of 7 the choice is
// restricted to the first two remaining candidates so fundamentals come
// first, at 7 and above the whole remainder is open.
const DefaultPolicy = `
package interview_policy

import future.keywords.if
import future.keywords.in
import future.keywords.contains

default difficulty := "easy"

difficulty := "medium" if {
	input.avg_relevance >= 4
	input.avg_relevance < 7
}

difficulty := "hard" if {
	input.avg_relevance >= 7
}

asked contains t if some t in input.asked

remaining := [t | some t in input.bank; not t in asked]

default candidates := []

candidates := remaining if {
	input.avg_score >= 7
}

candidates := array.slice(remaining, 0, 2) if {
	input.avg_score < 7
}

decision := {"difficulty": difficulty, "candidates": candidates}
`

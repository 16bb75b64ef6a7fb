package policy

import (
	"context"
	"math/rand/v2"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

// Selector picks the next topic from the policy's candidate list.
type Selector struct {
	engine *Engine
	rng    *rand.Rand
}

// NewSelector wraps a policy engine. A nil rng uses the shared global
// source; tests inject a seeded one.
func NewSelector(engine *Engine, rng *rand.Rand) *Selector {
	return &Selector{engine: engine, rng: rng}
}

// SelectTopic returns the next topic and the difficulty tier for it.
// ok is false when every bank topic has been asked, which ends the
// interview; it is not an error.
func (s *Selector) SelectTopic(ctx context.Context, bank, asked []string, avgScore, avgRelevance float64) (topic string, difficulty domain.Difficulty, ok bool, err error) {
	dec, err := s.engine.Evaluate(ctx, Input{
		Bank:         bank,
		Asked:        asked,
		AvgScore:     avgScore,
		AvgRelevance: avgRelevance,
	})
	if err != nil {
		return "", "", false, err
	}
	if len(dec.Candidates) == 0 {
		return "", dec.Difficulty, false, nil
	}
	return dec.Candidates[s.intN(len(dec.Candidates))], dec.Difficulty, true, nil
}

func (s *Selector) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

// Package registry owns session lifecycle and concurrent-safe session state.
package registry

import (
	"context"
	"errors"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

// ErrNotFound is returned for lookups of unknown session ids. Callers must
// surface it as a client-visible error, never a crash.
var ErrNotFound = errors.New("session not found")

// ErrQueueExhausted signals that the pre-generated question queue has been
// fully consumed. It is a normal terminal signal, not a failure.
var ErrQueueExhausted = errors.New("question queue exhausted")

// Store defines the session registry. Implementations must support
// concurrent access from independent session connections; per-session
// fields are only ever mutated by the owning connection's engine.
type Store interface {
	// Session lifecycle
	CreateSession(ctx context.Context, cfg domain.SessionConfig) (string, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// Question queue (batch mode)
	SetQuestionQueue(ctx context.Context, sessionID string, questions []string) error
	// NextQuestion atomically advances the cursor and returns the question
	// it passed over, plus the 1-based index of that question. Returns
	// ErrQueueExhausted once the queue is consumed; the cursor never
	// exceeds the queue length.
	NextQuestion(ctx context.Context, sessionID string) (string, int, error)

	// Per-session bookkeeping
	AppendAskedTopic(ctx context.Context, sessionID, topic string) error
	SetLastQuestion(ctx context.Context, sessionID, question string) error

	// Evaluations
	RecordEvaluation(ctx context.Context, sessionID string, eval domain.Evaluation) error
	ListEvaluations(ctx context.Context, sessionID string) ([]domain.Evaluation, error)

	// Lifecycle
	Close() error
}

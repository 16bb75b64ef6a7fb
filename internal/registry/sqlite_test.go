package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func createTestSession(t *testing.T, ctx context.Context, store *SQLiteStore) string {
	t.Helper()
	sessionID, err := store.CreateSession(ctx, domain.SessionConfig{
		Role:            "software",
		Topics:          []string{"databases and SQL", "REST APIs and backend design"},
		Level:           domain.LevelIntermediate,
		DurationSeconds: 360,
		Mode:            domain.ModeBatch,
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return sessionID
}

func TestSQLiteStoreCreateAndGetSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	sessionID := createTestSession(t, ctx, store)
	if sessionID == "" {
		t.Fatal("expected non-empty session id")
	}

	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.Config.Role != "software" || sess.Config.Level != domain.LevelIntermediate {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(sess.Config.Topics) != 2 || sess.Cursor != 0 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.StartedAt.IsZero() {
		t.Fatal("expected started_at to be set")
	}
}

func TestSQLiteStoreGetSessionNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetSession(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreQuestionQueue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	sessionID := createTestSession(t, ctx, store)
	queue := []string{"q1", "q2", "q3"}
	if err := store.SetQuestionQueue(ctx, sessionID, queue); err != nil {
		t.Fatalf("SetQuestionQueue failed: %v", err)
	}

	for i, want := range queue {
		got, index, err := store.NextQuestion(ctx, sessionID)
		if err != nil {
			t.Fatalf("NextQuestion %d failed: %v", i, err)
		}
		if got != want || index != i+1 {
			t.Fatalf("expected (%q, %d), got (%q, %d)", want, i+1, got, index)
		}
	}

	_, _, err := store.NextQuestion(ctx, sessionID)
	if !errors.Is(err, ErrQueueExhausted) {
		t.Fatalf("expected ErrQueueExhausted, got %v", err)
	}

	// The cursor never grows past the queue length.
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.Cursor != len(queue) {
		t.Fatalf("expected cursor %d, got %d", len(queue), sess.Cursor)
	}
	if sess.LastQuestion != "q3" {
		t.Fatalf("expected last question q3, got %q", sess.LastQuestion)
	}
}

func TestSQLiteStoreNextQuestionUnknownSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	_, _, err := store.NextQuestion(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreAppendAskedTopic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	sessionID := createTestSession(t, ctx, store)
	for _, topic := range []string{"databases and SQL", "REST APIs and backend design", "databases and SQL"} {
		if err := store.AppendAskedTopic(ctx, sessionID, topic); err != nil {
			t.Fatalf("AppendAskedTopic failed: %v", err)
		}
	}

	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	// Duplicates are kept; the asked list is a history, not a set.
	if len(sess.AskedTopics) != 3 {
		t.Fatalf("expected 3 asked topics, got %v", sess.AskedTopics)
	}
}

func TestSQLiteStoreSetLastQuestion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	sessionID := createTestSession(t, ctx, store)
	if err := store.SetLastQuestion(ctx, sessionID, "What is normalization?"); err != nil {
		t.Fatalf("SetLastQuestion failed: %v", err)
	}

	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.LastQuestion != "What is normalization?" {
		t.Fatalf("unexpected last question: %q", sess.LastQuestion)
	}

	if err := store.SetLastQuestion(ctx, "missing", "q"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreEvaluations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	sessionID := createTestSession(t, ctx, store)

	confidence := 14.0
	first := domain.Evaluation{
		Question: "q1",
		Answer:   "a1",
		Scores: domain.Scores{
			Relevance:  12, // clamped to 10
			Clarity:    -1, // clamped to 0
			Depth:      6,
			Confidence: &confidence, // clamped to 10
		},
		Feedback: "ok",
		Emotion:  json.RawMessage(`{"emotion":"neutral"}`),
	}
	if err := store.RecordEvaluation(ctx, sessionID, first); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}
	second := domain.Evaluation{
		Question: "q2",
		Answer:   "a2",
		Scores:   domain.Scores{Relevance: 7, Clarity: 8, Depth: 6},
		Feedback: "good",
	}
	if err := store.RecordEvaluation(ctx, sessionID, second); err != nil {
		t.Fatalf("RecordEvaluation failed: %v", err)
	}

	evals, err := store.ListEvaluations(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(evals) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evals))
	}
	if evals[0].Question != "q1" || evals[1].Question != "q2" {
		t.Fatalf("evaluations out of order: %+v", evals)
	}
	if evals[0].Scores.Relevance != 10 || evals[0].Scores.Clarity != 0 {
		t.Fatalf("expected clamped scores, got %+v", evals[0].Scores)
	}
	if evals[0].Scores.Confidence == nil || *evals[0].Scores.Confidence != 10 {
		t.Fatalf("expected clamped confidence, got %+v", evals[0].Scores.Confidence)
	}
	if evals[1].Scores.Confidence != nil {
		t.Fatalf("expected nil confidence, got %+v", evals[1].Scores.Confidence)
	}
	if string(evals[0].Emotion) != `{"emotion":"neutral"}` {
		t.Fatalf("unexpected emotion: %s", evals[0].Emotion)
	}
}

func TestSQLiteStoreEvaluationsUnknownSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	err := store.RecordEvaluation(ctx, "missing", domain.Evaluation{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = store.ListEvaluations(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package ws

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/protocol"
	"github.com/codelikeharsh/interviewd/internal/question"
	"github.com/codelikeharsh/interviewd/internal/registry"
	"github.com/codelikeharsh/interviewd/internal/scoring"
	"github.com/codelikeharsh/interviewd/internal/speech"
)

// Sender delivers one server event to the driving connection.
type Sender interface {
	Send(v any) error
}

// State of the per-connection protocol engine.
type State int

const (
	StateAwaitingStart State = iota
	StateAwaitingAnswer
	StateCompleted
)

// repeatPhrases trigger re-emission of the last question. A repeat request
// mutates nothing: no topic bookkeeping, no cursor advance, no evaluation.
var repeatPhrases = []string{"repeat", "say again", "once again", "didn't understand"}

// Engine drives one connection through the interview state machine:
// AwaitingStart -> AwaitingAnswer (loop) -> Completed.
type Engine struct {
	store       registry.Store
	pipeline    *question.Pipeline
	evaluator   *question.Evaluator
	tts         speech.Synthesizer
	defaultMode domain.PipelineMode
	capTimeout  time.Duration
	logger      *slog.Logger
	now         func() time.Time

	state     State
	sessionID string
	index     int
}

// NewEngine creates an engine for one connection.
func NewEngine(store registry.Store, pipeline *question.Pipeline, evaluator *question.Evaluator, tts speech.Synthesizer, defaultMode domain.PipelineMode, capTimeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		store:       store,
		pipeline:    pipeline,
		evaluator:   evaluator,
		tts:         tts,
		defaultMode: defaultMode,
		capTimeout:  capTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.state
}

// SessionID returns the bound session id, empty before start.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// HandleFrame processes one inbound frame. Malformed frames produce an
// error event and no state change; frames in the wrong state are rejected
// the same way. In Completed no further events are processed.
func (e *Engine) HandleFrame(ctx context.Context, data []byte, send Sender) {
	if e.state == StateCompleted {
		return
	}

	msg, err := protocol.DecodeClientEvent(data)
	if err != nil {
		var decodeErr *protocol.DecodeError
		if errors.As(err, &decodeErr) {
			e.sendError(send, decodeErr.Code, decodeErr.Error())
		} else {
			e.sendError(send, protocol.ErrorCodeInvalidMessage, "invalid frame")
		}
		return
	}

	switch m := msg.(type) {
	case protocol.StartEvent:
		if e.state != StateAwaitingStart {
			e.sendError(send, protocol.ErrorCodeSessionActive, "session already started")
			return
		}
		e.handleStart(ctx, m, send)
	case protocol.TranscriptEvent:
		if e.state != StateAwaitingAnswer {
			e.sendError(send, protocol.ErrorCodeSessionRequired, "must send start first")
			return
		}
		e.handleTranscript(ctx, m, send)
	}
}

func (e *Engine) handleStart(ctx context.Context, msg protocol.StartEvent, send Sender) {
	cfg := domain.SessionConfig{
		Role:            msg.Role,
		Topics:          msg.Topics,
		Level:           domain.Level(msg.Level),
		DurationSeconds: msg.DurationMinutes * 60,
		Mode:            e.defaultMode,
	}
	if cfg.Role == "" {
		cfg.Role = "General"
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = []string{"general"}
	}
	if cfg.Level == "" {
		cfg.Level = domain.LevelFresher
	}
	if cfg.DurationSeconds == 0 {
		cfg.DurationSeconds = 5 * 60
	}
	if mode := domain.PipelineMode(msg.Mode); mode == domain.ModeBatch || mode == domain.ModeAdaptive {
		cfg.Mode = mode
	}

	sessionID, err := e.store.CreateSession(ctx, cfg)
	if err != nil {
		e.logger.Error("failed to create session", "error", err)
		e.sendError(send, protocol.ErrorCodeInternalError, "failed to create session")
		return
	}
	e.sessionID = sessionID

	difficulty := domain.DifficultyForLevel(cfg.Level)

	var firstQuestion string
	switch cfg.Mode {
	case domain.ModeAdaptive:
		topic, q, ok, err := e.pipeline.NextAdaptive(ctx, cfg.Role, nil, 0, 0, &difficulty)
		if err != nil {
			e.logger.Error("policy evaluation failed", "session_id", sessionID, "error", err)
			e.sendError(send, protocol.ErrorCodeInternalError, "failed to select topic")
			return
		}
		if !ok {
			// Empty bank for the role; nothing to ask.
			e.end(send, domain.EndReasonTopicsCompleted, 0)
			return
		}
		if err := e.store.AppendAskedTopic(ctx, sessionID, topic); err != nil {
			e.logger.Error("failed to record topic", "session_id", sessionID, "error", err)
		}
		if err := e.store.SetLastQuestion(ctx, sessionID, q); err != nil {
			e.logger.Error("failed to record question", "session_id", sessionID, "error", err)
		}
		e.index = 1
		firstQuestion = q
	default:
		queue := e.pipeline.BuildQueue(ctx, cfg, difficulty)
		if err := e.store.SetQuestionQueue(ctx, sessionID, queue); err != nil {
			e.logger.Error("failed to store question queue", "session_id", sessionID, "error", err)
			e.sendError(send, protocol.ErrorCodeInternalError, "failed to prepare questions")
			return
		}
		q, index, err := e.store.NextQuestion(ctx, sessionID)
		if err != nil {
			e.logger.Error("failed to read first question", "session_id", sessionID, "error", err)
			e.sendError(send, protocol.ErrorCodeInternalError, "failed to prepare questions")
			return
		}
		if err := e.store.AppendAskedTopic(ctx, sessionID, question.QueueTopic(cfg.Topics, 0)); err != nil {
			e.logger.Error("failed to record topic", "session_id", sessionID, "error", err)
		}
		e.index = index
		firstQuestion = q
	}

	e.state = StateAwaitingAnswer
	e.sendEvent(send, protocol.QuestionEvent{
		Event:     protocol.TypeQuestion,
		SessionID: sessionID,
		Index:     e.index,
		Text:      firstQuestion,
		AudioURL:  e.synthesize(ctx, firstQuestion),
	})
}

func (e *Engine) handleTranscript(ctx context.Context, msg protocol.TranscriptEvent, send Sender) {
	sess, err := e.store.GetSession(ctx, e.sessionID)
	if err != nil {
		e.logger.Error("failed to load session", "session_id", e.sessionID, "error", err)
		e.sendError(send, protocol.ErrorCodeInternalError, "failed to load session")
		return
	}

	// The duration budget takes precedence over everything else in
	// transcript handling, including repeat detection.
	if sess.BudgetExceeded(e.now()) {
		e.end(send, domain.EndReasonTimeCompleted, e.evaluationCount(ctx))
		return
	}

	text := strings.ToLower(strings.TrimSpace(msg.Text))
	if text == "" {
		return
	}

	if isRepeatRequest(text) {
		e.sendEvent(send, protocol.RepeatEvent{
			Event:    protocol.TypeRepeat,
			Text:     sess.LastQuestion,
			AudioURL: e.synthesize(ctx, sess.LastQuestion),
		})
		return
	}

	switch sess.Config.Mode {
	case domain.ModeAdaptive:
		e.advanceAdaptive(ctx, sess, msg.Text, send)
	default:
		e.advanceBatch(ctx, sess, send)
	}
}

func (e *Engine) advanceBatch(ctx context.Context, sess *domain.Session, send Sender) {
	q, index, err := e.store.NextQuestion(ctx, sess.SessionID)
	if errors.Is(err, registry.ErrQueueExhausted) {
		e.end(send, domain.EndReasonQuestionsCompleted, e.evaluationCount(ctx))
		return
	}
	if err != nil {
		e.logger.Error("failed to advance queue", "session_id", sess.SessionID, "error", err)
		e.sendError(send, protocol.ErrorCodeInternalError, "failed to advance queue")
		return
	}

	if err := e.store.AppendAskedTopic(ctx, sess.SessionID, question.QueueTopic(sess.Config.Topics, index-1)); err != nil {
		e.logger.Error("failed to record topic", "session_id", sess.SessionID, "error", err)
	}

	e.index = index
	e.sendEvent(send, protocol.QuestionEvent{
		Event:    protocol.TypeQuestion,
		Index:    index,
		Text:     q,
		AudioURL: e.synthesize(ctx, q),
	})
}

func (e *Engine) advanceAdaptive(ctx context.Context, sess *domain.Session, answer string, send Sender) {
	eval := e.evaluator.Evaluate(ctx, sess.LastQuestion, answer)
	if err := e.store.RecordEvaluation(ctx, sess.SessionID, eval); err != nil {
		e.logger.Error("failed to record evaluation", "session_id", sess.SessionID, "error", err)
	}

	evals, err := e.store.ListEvaluations(ctx, sess.SessionID)
	if err != nil {
		e.logger.Error("failed to list evaluations", "session_id", sess.SessionID, "error", err)
	}
	avgScore, avgRelevance := scoring.AverageScores(evals)

	topic, q, ok, err := e.pipeline.NextAdaptive(ctx, sess.Config.Role, sess.AskedTopics, avgScore, avgRelevance, nil)
	if err != nil {
		e.logger.Error("policy evaluation failed", "session_id", sess.SessionID, "error", err)
		e.sendError(send, protocol.ErrorCodeInternalError, "failed to select topic")
		return
	}
	if !ok {
		e.end(send, domain.EndReasonTopicsCompleted, len(evals))
		return
	}

	if err := e.store.AppendAskedTopic(ctx, sess.SessionID, topic); err != nil {
		e.logger.Error("failed to record topic", "session_id", sess.SessionID, "error", err)
	}
	if err := e.store.SetLastQuestion(ctx, sess.SessionID, q); err != nil {
		e.logger.Error("failed to record question", "session_id", sess.SessionID, "error", err)
	}

	e.index++
	e.sendEvent(send, protocol.QuestionEvent{
		Event:    protocol.TypeQuestion,
		Index:    e.index,
		Text:     q,
		AudioURL: e.synthesize(ctx, q),
	})
}

func (e *Engine) end(send Sender, reason domain.EndReason, totalQuestions int) {
	e.state = StateCompleted
	e.sendEvent(send, protocol.EndEvent{
		Event:          protocol.TypeEnd,
		Reason:         string(reason),
		TotalQuestions: totalQuestions,
	})
}

func (e *Engine) evaluationCount(ctx context.Context) int {
	evals, err := e.store.ListEvaluations(ctx, e.sessionID)
	if err != nil {
		e.logger.Error("failed to count evaluations", "session_id", e.sessionID, "error", err)
		return 0
	}
	return len(evals)
}

// synthesize returns the audio reference for the text, or "" when the TTS
// capability is unavailable. The session continues either way.
func (e *Engine) synthesize(ctx context.Context, text string) string {
	if e.tts == nil || text == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, e.capTimeout)
	defer cancel()
	url, err := e.tts.Synthesize(ctx, text)
	if err != nil {
		e.logger.Warn("synthesis failed", "error", err)
		return ""
	}
	return url
}

func (e *Engine) sendEvent(send Sender, v any) {
	if err := send.Send(v); err != nil {
		e.logger.Warn("failed to send event", "session_id", e.sessionID, "error", err)
	}
}

func (e *Engine) sendError(send Sender, code, message string) {
	e.sendEvent(send, protocol.ErrorEvent{
		Event:   protocol.TypeError,
		Code:    code,
		Message: message,
	})
}

func isRepeatRequest(lowered string) bool {
	for _, p := range repeatPhrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

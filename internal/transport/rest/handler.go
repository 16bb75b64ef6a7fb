// Package rest provides the REST surface of the interview orchestrator.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/registry"
	"github.com/codelikeharsh/interviewd/internal/scoring"
	"github.com/codelikeharsh/interviewd/internal/speech"
	"github.com/codelikeharsh/interviewd/internal/vision"
)

// Stats reports live connection counts, served by the hub.
type Stats interface {
	ConnectionCount() int
	SessionCount() int
}

// Transcriber is the speech-to-text capability consumed by /transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (speech.Transcript, error)
}

// EmotionAnalyzer is the emotion inference capability.
type EmotionAnalyzer interface {
	Analyze(ctx context.Context, image []byte, filename string) (json.RawMessage, error)
}

// Handler handles HTTP requests.
type Handler struct {
	store   registry.Store
	stt     Transcriber
	emotion EmotionAnalyzer
	stats   Stats
	logger  *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(store registry.Store, stt Transcriber, emotion EmotionAnalyzer, stats Stats, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		stt:     stt,
		emotion: emotion,
		stats:   stats,
		logger:  logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/interview/result/:session_id", h.GetResult)
	e.GET("/interview/timeline/:session_id", h.GetTimeline)
	e.POST("/interview/evaluate", h.SaveEvaluation)
	e.POST("/interview/transcribe", h.Transcribe)
	e.POST("/interview/emotion", h.Emotion)

	e.GET("/health", h.Health)
	e.GET("/stats", h.GetStats)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetStats returns live connection counts.
func (h *Handler) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{
		"connections": h.stats.ConnectionCount(),
		"sessions":    h.stats.SessionCount(),
	})
}

// GetResult returns the session scorecard.
// GET /interview/result/:session_id
//
// A session with no evaluations yet gets the documented empty summary, not
// an error; only an unknown id is a 404.
func (h *Handler) GetResult(c echo.Context) error {
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	evals, err := h.store.ListEvaluations(ctx, sessionID)
	if errors.Is(err, registry.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	if err != nil {
		h.logger.Error("failed to load evaluations", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"summary":    scoring.ComputeSummary(evals),
	})
}

// GetTimeline returns the scorecard plus the ordered evaluation list and
// the topics covered.
// GET /interview/timeline/:session_id
func (h *Handler) GetTimeline(c echo.Context) error {
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	sess, err := h.store.GetSession(ctx, sessionID)
	if errors.Is(err, registry.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	if err != nil {
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	evals, err := h.store.ListEvaluations(ctx, sessionID)
	if err != nil {
		h.logger.Error("failed to load evaluations", "session_id", sessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	return c.JSON(http.StatusOK, domain.Timeline{
		SessionID:     sessionID,
		Summary:       scoring.ComputeSummary(evals),
		Evaluations:   evals,
		TopicsCovered: sess.AskedTopics,
	})
}

// SaveEvaluation records one scored answer for a session. This is the
// scoring path for batch-mode sessions, where the ws loop only advances
// the queue.
// POST /interview/evaluate
func (h *Handler) SaveEvaluation(c echo.Context) error {
	var payload struct {
		SessionID  string             `json:"session_id"`
		Evaluation *domain.Evaluation `json:"evaluation"`
	}
	if err := c.Bind(&payload); err != nil || payload.SessionID == "" || payload.Evaluation == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	ctx := c.Request().Context()
	err := h.store.RecordEvaluation(ctx, payload.SessionID, *payload.Evaluation)
	if errors.Is(err, registry.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	if err != nil {
		h.logger.Error("failed to record evaluation", "session_id", payload.SessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record evaluation"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// Transcribe runs the uploaded audio through the speech-to-text capability
// and attaches the speaking-confidence analysis. An unavailable capability
// degrades to an empty transcript.
// POST /interview/transcribe
func (h *Handler) Transcribe(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing audio file"})
	}
	audio, name, err := readUpload(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable audio file"})
	}

	ctx := c.Request().Context()
	transcript, err := h.stt.Transcribe(ctx, audio, name)
	if err != nil {
		h.logger.Warn("transcription failed, returning empty transcript", "error", err)
		transcript = speech.Transcript{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"text":       transcript.Text,
		"confidence": speech.AnalyzeConfidence(transcript.Text, transcript.DurationSeconds),
	})
}

// Emotion runs the uploaded image through the emotion capability. An
// unavailable capability degrades to the fixed fallback descriptor.
// POST /interview/emotion
func (h *Handler) Emotion(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing image file"})
	}
	image, name, err := readUpload(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable image file"})
	}

	ctx := c.Request().Context()
	descriptor, err := h.emotion.Analyze(ctx, image, name)
	if err != nil {
		h.logger.Warn("emotion inference failed, returning fallback", "error", err)
		descriptor = vision.FallbackDescriptor
	}

	return c.JSONBlob(http.StatusOK, descriptor)
}

func readUpload(file *multipart.FileHeader) ([]byte, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", err
	}
	return data, file.Filename, nil
}

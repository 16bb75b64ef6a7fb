package ws

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/codelikeharsh/interviewd/internal/config"
	"github.com/codelikeharsh/interviewd/internal/hub"
	"github.com/codelikeharsh/interviewd/internal/policy"
	"github.com/codelikeharsh/interviewd/internal/question"
	"github.com/codelikeharsh/interviewd/internal/registry"
	"github.com/codelikeharsh/interviewd/internal/topic"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := registry.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}
	selector := policy.NewSelector(policyEngine, rand.New(rand.NewPCG(1, 0)))

	provider := &scriptedProvider{}
	logger := slog.New(slog.DiscardHandler)
	generator := question.NewGenerator(provider, time.Second, logger)
	evaluator := question.NewEvaluator(provider, time.Second, logger)
	pipeline := question.NewPipeline(generator, selector, topic.Default)

	cfg := &config.Config{
		PipelineMode:      "batch",
		CapabilityTimeout: time.Second,
		MaxMessageSize:    65536,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		PingInterval:      time.Minute,
	}

	h := hub.NewHub(logger)
	go h.Run()

	server := NewServer(cfg, h, store, pipeline, evaluator, nil, logger)

	e := echo.New()
	e.GET("/interview/ws", server.HandleWebSocket)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts
}

// readEvent reads one frame and returns its decoded envelope.
func readEvent(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	event, _ := frame["event"].(string)
	return event, frame
}

// A full batch session over a real socket must deliver the terminal end
// event before the server closes the connection.
func TestServerDeliversEndEvent(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/interview/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// A 6-minute session pre-generates 4 questions.
	if err := conn.WriteMessage(websocket.TextMessage, startFrame(6)); err != nil {
		t.Fatalf("failed to send start: %v", err)
	}

	for want := 1; want <= 4; want++ {
		event, frame := readEvent(t, conn)
		if event != "question" {
			t.Fatalf("expected question event, got %q: %v", event, frame)
		}
		if idx := int(frame["index"].(float64)); idx != want {
			t.Fatalf("expected question %d, got %d", want, idx)
		}
		if want < 4 {
			if err := conn.WriteMessage(websocket.TextMessage, transcriptFrame("my answer")); err != nil {
				t.Fatalf("failed to send transcript: %v", err)
			}
		}
	}

	// The queue is spent; the final answer ends the session and the end
	// event must reach the client even though the server tears the
	// connection down right after.
	if err := conn.WriteMessage(websocket.TextMessage, transcriptFrame("final answer")); err != nil {
		t.Fatalf("failed to send final transcript: %v", err)
	}

	event, frame := readEvent(t, conn)
	if event != "end" {
		t.Fatalf("expected end event, got %q: %v", event, frame)
	}
	if reason := frame["reason"].(string); reason != "Questions completed" {
		t.Fatalf("unexpected end reason: %q", reason)
	}
	if total := int(frame["total_questions"].(float64)); total != 4 {
		t.Fatalf("expected 4 total questions, got %d", total)
	}

	// After the end event the server closes cleanly.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to close after end event")
	}
}

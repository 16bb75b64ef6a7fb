// Package ws hosts the WebSocket server and the per-connection session
// protocol engine.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/codelikeharsh/interviewd/internal/config"
	"github.com/codelikeharsh/interviewd/internal/domain"
	"github.com/codelikeharsh/interviewd/internal/hub"
	"github.com/codelikeharsh/interviewd/internal/question"
	"github.com/codelikeharsh/interviewd/internal/registry"
	"github.com/codelikeharsh/interviewd/internal/speech"
)

// Server handles WebSocket upgrades and runs one protocol engine per
// connection.
type Server struct {
	cfg       *config.Config
	hub       *hub.Hub
	store     registry.Store
	pipeline  *question.Pipeline
	evaluator *question.Evaluator
	tts       speech.Synthesizer
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, store registry.Store, pipeline *question.Pipeline, evaluator *question.Evaluator, tts speech.Synthesizer, logger *slog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		hub:       h,
		store:     store,
		pipeline:  pipeline,
		evaluator: evaluator,
		tts:       tts,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range cfg.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket upgrades the connection and drives its session to
// completion or disconnect.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	engine := NewEngine(s.store, s.pipeline, s.evaluator, s.tts,
		domain.PipelineMode(s.cfg.PipelineMode), s.cfg.CapabilityTimeout, s.logger)

	go s.writePump(conn)
	go s.readPump(conn, engine)

	return nil
}

// connSender adapts a hub connection to the engine's Sender.
type connSender struct {
	hub  *hub.Hub
	conn *hub.Connection
}

func (s connSender) Send(v any) error {
	return s.hub.SendJSONToConnection(s.conn, v)
}

// readPump reads frames from the connection and feeds the engine.
// Disconnection at any state is a non-error terminal condition.
func (s *Server) readPump(conn *hub.Connection, engine *Engine) {
	// The write pump owns the socket. Unregister closes Send; the write
	// pump drains whatever is still queued (the terminal end event
	// included) and closes the connection after the close message.
	defer s.hub.Unregister(conn)

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	send := connSender{hub: s.hub, conn: conn}
	ctx := context.Background()

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "session_id", engine.SessionID(), "error", err)
			}
			return
		}

		engine.HandleFrame(ctx, message, send)

		// Bind the session once the start event has created it.
		if conn.SessionID == "" && engine.SessionID() != "" {
			s.hub.BindSession(conn, engine.SessionID())
		}

		if engine.State() == StateCompleted {
			return
		}
	}
}

// writePump writes queued messages and keepalive pings to the connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

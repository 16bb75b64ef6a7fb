// Package protocol defines the WebSocket event protocol between interview
// clients and the session engine.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event types from client to server
const (
	TypeStart      = "start"
	TypeTranscript = "transcript"
)

// Event types from server to client
const (
	TypeQuestion = "question"
	TypeRepeat   = "repeat"
	TypeEnd      = "end"
	TypeError    = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeSessionActive   = "session_active"
	ErrorCodeInternalError   = "internal_error"
)

// DecodeError describes a rejected client frame.
type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: ErrorCodeInvalidMessage, Message: message, Param: param}
}

// StartEvent opens an interview session.
type StartEvent struct {
	Event           string   `json:"event"`
	Role            string   `json:"role"`
	Topics          []string `json:"topics"`
	Level           string   `json:"level"`
	DurationMinutes int      `json:"duration"`
	Mode            string   `json:"mode,omitempty"`
}

// TranscriptEvent carries one transcribed answer.
type TranscriptEvent struct {
	Event string `json:"event"`
	Text  string `json:"text"`
}

// QuestionEvent emits the next question to the client.
type QuestionEvent struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id,omitempty"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	AudioURL  string `json:"audio_url,omitempty"`
}

// RepeatEvent re-emits the last question unchanged.
type RepeatEvent struct {
	Event    string `json:"event"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"`
}

// EndEvent closes the interview.
type EndEvent struct {
	Event          string `json:"event"`
	Reason         string `json:"reason"`
	TotalQuestions int    `json:"total_questions"`
}

// ErrorEvent reports a rejected frame or an internal failure. It never
// terminates the session by itself.
type ErrorEvent struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeClientEvent parses and validates one inbound frame. Unrecognized or
// malformed frames yield a *DecodeError; they must not advance session state.
func DecodeClientEvent(data []byte) (any, error) {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	typ := strings.TrimSpace(envelope.Event)
	if typ == "" {
		return nil, badRequest("missing event", "event")
	}

	switch typ {
	case TypeStart:
		var msg StartEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid start frame", "")
		}
		if msg.DurationMinutes < 0 {
			return nil, badRequest("start.duration must be >= 0", "duration")
		}
		return msg, nil
	case TypeTranscript:
		var msg TranscriptEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid transcript frame", "")
		}
		return msg, nil
	default:
		return nil, badRequest("unsupported event type", "event")
	}
}

package domain

import "time"

// SessionConfig is the immutable configuration captured at session start.
type SessionConfig struct {
	Role            string       `json:"role"`
	Topics          []string     `json:"topics"`
	Level           Level        `json:"level"`
	DurationSeconds int          `json:"duration_seconds"`
	Mode            PipelineMode `json:"mode"`
}

// Session represents one interview attempt.
//
// The id is the external handle; it is generated at creation and never
// reused. Mutable fields are updated only through the registry, and a
// session is driven by exactly one connection.
type Session struct {
	SessionID     string        `json:"session_id"`
	Config        SessionConfig `json:"config"`
	AskedTopics   []string      `json:"asked_topics"`
	QuestionQueue []string      `json:"question_queue,omitempty"`
	Cursor        int           `json:"cursor"`
	LastQuestion  string        `json:"last_question,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// Elapsed reports how long the session has been running at the given instant.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// BudgetExceeded reports whether the whole-session duration budget is spent.
func (s *Session) BudgetExceeded(now time.Time) bool {
	return s.Elapsed(now) >= time.Duration(s.Config.DurationSeconds)*time.Second
}

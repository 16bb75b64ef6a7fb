package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codelikeharsh/interviewd/internal/domain"
)

// SQLiteStore implements Store using SQLite. The default DSN keeps the
// database in shared-cache memory, so registry state lives and dies with
// the process.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed registry.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A memory-mode DSN is one database per connection unless the pool is
	// pinned to a single connection sharing the cache.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the registry schema.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			topics TEXT NOT NULL,
			level TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			mode TEXT NOT NULL,
			asked_topics TEXT NOT NULL DEFAULT '[]',
			question_queue TEXT NOT NULL DEFAULT '[]',
			cursor INTEGER NOT NULL DEFAULT 0,
			last_question TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL DEFAULT '',
			relevance REAL NOT NULL,
			clarity REAL NOT NULL,
			depth REAL NOT NULL,
			confidence REAL,
			feedback TEXT NOT NULL DEFAULT '',
			emotion TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_session ON evaluations(session_id, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session and returns its generated id.
func (s *SQLiteStore) CreateSession(ctx context.Context, cfg domain.SessionConfig) (string, error) {
	sessionID := uuid.New().String()
	topics, _ := json.Marshal(cfg.Topics)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, role, topics, level, duration_seconds, mode, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, cfg.Role, string(topics), string(cfg.Level), cfg.DurationSeconds, string(cfg.Mode), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, role, topics, level, duration_seconds, mode,
		        asked_topics, question_queue, cursor, last_question, started_at
		 FROM sessions WHERE session_id = ?`, sessionID)

	var (
		sess                        domain.Session
		topics, asked, queue, level string
		mode                        string
	)
	err := row.Scan(&sess.SessionID, &sess.Config.Role, &topics, &level,
		&sess.Config.DurationSeconds, &mode, &asked, &queue,
		&sess.Cursor, &sess.LastQuestion, &sess.StartedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Config.Level = domain.Level(level)
	sess.Config.Mode = domain.PipelineMode(mode)
	if err := json.Unmarshal([]byte(topics), &sess.Config.Topics); err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	if err := json.Unmarshal([]byte(asked), &sess.AskedTopics); err != nil {
		return nil, fmt.Errorf("failed to decode asked topics: %w", err)
	}
	if err := json.Unmarshal([]byte(queue), &sess.QuestionQueue); err != nil {
		return nil, fmt.Errorf("failed to decode question queue: %w", err)
	}
	return &sess, nil
}

// SetQuestionQueue stores the pre-generated queue. The queue is immutable
// once built; this also resets the cursor.
func (s *SQLiteStore) SetQuestionQueue(ctx context.Context, sessionID string, questions []string) error {
	queue, _ := json.Marshal(questions)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET question_queue = ?, cursor = 0 WHERE session_id = ?`,
		string(queue), sessionID)
	if err != nil {
		return fmt.Errorf("failed to set question queue: %w", err)
	}
	return requireRow(res)
}

// NextQuestion advances the cursor and returns the consumed question with
// its 1-based index.
func (s *SQLiteStore) NextQuestion(ctx context.Context, sessionID string) (string, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var queueJSON string
	var cursor int
	err = tx.QueryRowContext(ctx,
		`SELECT question_queue, cursor FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&queueJSON, &cursor)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to read queue: %w", err)
	}

	var queue []string
	if err := json.Unmarshal([]byte(queueJSON), &queue); err != nil {
		return "", 0, fmt.Errorf("failed to decode question queue: %w", err)
	}
	if cursor >= len(queue) {
		return "", 0, ErrQueueExhausted
	}

	question := queue[cursor]
	cursor++
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET cursor = ?, last_question = ? WHERE session_id = ?`,
		cursor, question, sessionID); err != nil {
		return "", 0, fmt.Errorf("failed to advance cursor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("failed to commit: %w", err)
	}
	return question, cursor, nil
}

// AppendAskedTopic appends a topic to the session's asked list.
func (s *SQLiteStore) AppendAskedTopic(ctx context.Context, sessionID, topic string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var askedJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT asked_topics FROM sessions WHERE session_id = ?`, sessionID).Scan(&askedJSON)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read asked topics: %w", err)
	}

	var asked []string
	if err := json.Unmarshal([]byte(askedJSON), &asked); err != nil {
		return fmt.Errorf("failed to decode asked topics: %w", err)
	}
	asked = append(asked, topic)
	updated, _ := json.Marshal(asked)
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET asked_topics = ? WHERE session_id = ?`,
		string(updated), sessionID); err != nil {
		return fmt.Errorf("failed to append topic: %w", err)
	}
	return tx.Commit()
}

// SetLastQuestion records the most recently emitted question text.
func (s *SQLiteStore) SetLastQuestion(ctx context.Context, sessionID, question string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_question = ? WHERE session_id = ?`,
		question, sessionID)
	if err != nil {
		return fmt.Errorf("failed to set last question: %w", err)
	}
	return requireRow(res)
}

// RecordEvaluation appends one scored answer. Sub-scores are clamped to
// [0,10] before storage.
func (s *SQLiteStore) RecordEvaluation(ctx context.Context, sessionID string, eval domain.Evaluation) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	eval.Scores.Clamp()
	var confidence sql.NullFloat64
	if eval.Scores.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *eval.Scores.Confidence, Valid: true}
	}
	var emotion sql.NullString
	if len(eval.Emotion) > 0 {
		emotion = sql.NullString{String: string(eval.Emotion), Valid: true}
	}
	createdAt := eval.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (session_id, question, answer, relevance, clarity, depth, confidence, feedback, emotion, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, eval.Question, eval.Answer,
		eval.Scores.Relevance, eval.Scores.Clarity, eval.Scores.Depth,
		confidence, eval.Feedback, emotion, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record evaluation: %w", err)
	}
	return nil
}

// ListEvaluations returns the session's evaluations in insertion order.
func (s *SQLiteStore) ListEvaluations(ctx context.Context, sessionID string) ([]domain.Evaluation, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer, relevance, clarity, depth, confidence, feedback, emotion, created_at
		 FROM evaluations WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []domain.Evaluation
	for rows.Next() {
		var (
			eval       domain.Evaluation
			confidence sql.NullFloat64
			emotion    sql.NullString
		)
		if err := rows.Scan(&eval.Question, &eval.Answer,
			&eval.Scores.Relevance, &eval.Scores.Clarity, &eval.Scores.Depth,
			&confidence, &eval.Feedback, &emotion, &eval.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		if confidence.Valid {
			c := confidence.Float64
			eval.Scores.Confidence = &c
		}
		if emotion.Valid {
			eval.Emotion = json.RawMessage(emotion.String)
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

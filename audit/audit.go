// Package audit records tool invocations in SQLite. Writes are best-effort:
// a failing audit store never blocks or fails the tool call it describes.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hazyhaar/sillage/idgen"
	"github.com/hazyhaar/sillage/kit"
)

// Schema creates the audit tables.
const Schema = `
CREATE TABLE IF NOT EXISTS tool_call_logs (
	call_id     TEXT PRIMARY KEY,
	request_id  TEXT NOT NULL DEFAULT '',
	tool_name   TEXT NOT NULL,
	transport   TEXT NOT NULL DEFAULT 'mcp',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	success     INTEGER NOT NULL DEFAULT 1 CHECK(success IN (0, 1)),
	error_text  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_call_logs_tool ON tool_call_logs(tool_name, created_at DESC);
`

// Entry is one recorded tool call.
type Entry struct {
	CallID     string `json:"call_id"`
	RequestID  string `json:"request_id"`
	Tool       string `json:"tool_name"`
	Transport  string `json:"transport"`
	DurationMS int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
	ErrText    string `json:"error_text,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// Logger writes tool-call records. Implements kit.CallRecorder.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures a Logger.
type Option func(*Logger)

// WithIDGenerator sets a custom ID generator for call IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Logger) { l.newID = gen }
}

// NewLogger creates a Logger backed by the given database.
func NewLogger(db *sql.DB, opts ...Option) *Logger {
	l := &Logger{
		db:    db,
		newID: idgen.Prefixed("call_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Init creates the audit tables.
func (l *Logger) Init() error {
	_, err := l.db.Exec(Schema)
	return err
}

// RecordCall inserts one tool-call row. Errors are logged via slog and
// swallowed so observability never masks the operation's real result.
func (l *Logger) RecordCall(ctx context.Context, call kit.ToolCall) {
	success := 0
	if call.Success {
		success = 1
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO tool_call_logs (
			call_id, request_id, tool_name, transport,
			duration_ms, success, error_text, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		l.newID(), call.RequestID, call.Tool, kit.GetTransport(ctx),
		call.DurationMS, success, call.ErrText, time.Now().UnixMilli())
	if err != nil {
		slog.Error("audit record failed", "error", err, "tool", call.Tool)
	}
}

// Recent returns the most recent tool calls, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT call_id, request_id, tool_name, transport, duration_ms, success, error_text, created_at
		FROM tool_call_logs ORDER BY created_at DESC, call_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var success int
		if err := rows.Scan(&e.CallID, &e.RequestID, &e.Tool, &e.Transport,
			&e.DurationMS, &success, &e.ErrText, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Success = success != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

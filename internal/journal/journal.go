// Package journal keeps a local SQLite record of change requests and approval decisions.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"refdesk/internal/approval"
)

// Entry is one journal line
type Entry struct {
	ID            int64
	Timestamp     time.Time
	Resource      string
	Action        string
	Kind          string
	TargetType    string
	TargetID      string
	RequestIDs    []string
	PayloadBefore string
	PayloadAfter  string
}

// Manager owns the journal database
type Manager struct {
	db  *sql.DB
	now func() time.Time
}

const timestampLayout = "2006-01-02 15:04:05"

// NewManager opens (and creates if needed) the journal at dbPath
func NewManager(dbPath string) (*Manager, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	m := &Manager{db: db, now: time.Now}
	if err := m.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		resource TEXT NOT NULL,
		action TEXT NOT NULL,
		kind TEXT,
		target_type TEXT,
		target_id TEXT,
		request_ids TEXT NOT NULL DEFAULT '[]',
		payload_before TEXT,
		payload_after TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_journal_resource ON journal(resource);
	`

	if _, err := m.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return nil
}

// RecordSubmission stores a submitted change request
func (m *Manager) RecordSubmission(ctx context.Context, resource string, r *approval.Request) error {
	return m.insert(ctx, Entry{
		Resource:      resource,
		Action:        "submit",
		Kind:          string(r.Kind),
		TargetType:    r.TargetType,
		TargetID:      r.TargetID.String(),
		PayloadBefore: r.PayloadBefore,
		PayloadAfter:  r.PayloadAfter,
	})
}

// RecordDecision stores a bulk approve or retract
func (m *Manager) RecordDecision(ctx context.Context, resource, action string, ids []string) error {
	return m.insert(ctx, Entry{Resource: resource, Action: action, RequestIDs: ids})
}

func (m *Manager) insert(ctx context.Context, e Entry) error {
	ids := e.RequestIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal request ids: %w", err)
	}

	query := `
		INSERT INTO journal (
			timestamp, resource, action, kind, target_type, target_id,
			request_ids, payload_before, payload_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = m.db.ExecContext(ctx, query,
		m.now().UTC().Format(timestampLayout),
		e.Resource,
		e.Action,
		e.Kind,
		e.TargetType,
		e.TargetID,
		string(idsJSON),
		e.PayloadBefore,
		e.PayloadAfter,
	)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// List returns the newest entries first. An empty resource lists everything.
func (m *Manager) List(ctx context.Context, resource string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, timestamp, resource, action, COALESCE(kind, ''), COALESCE(target_type, ''),
		       COALESCE(target_id, ''), request_ids, COALESCE(payload_before, ''), COALESCE(payload_after, '')
		FROM journal
		WHERE resource = ? OR ? = ''
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := m.db.QueryContext(ctx, query, resource, resource, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			ts, ids string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Resource, &e.Action, &e.Kind, &e.TargetType,
			&e.TargetID, &ids, &e.PayloadBefore, &e.PayloadAfter); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Timestamp = parseTimestamp(ts)
		if err := json.Unmarshal([]byte(ids), &e.RequestIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request ids: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// timestamps are stored in UTC; go-sqlite3 hands DATETIME columns back as RFC3339 text
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, timestampLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Local()
		}
	}
	return time.Time{}
}

// Close closes the database
func (m *Manager) Close() error {
	return m.db.Close()
}

package eventlog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/drewfead/copilot/pkg/agui"
)

// SQLiteJournal implements Journal backed by a local SQLite database, so
// protocol traffic survives the process for post-mortem replay.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (creating if needed) the journal database at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS protocol_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id  TEXT NOT NULL,
		agent_name TEXT,
		seq        INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		payload    BLOB,
		timestamp  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_thread ON protocol_events(thread_id, seq);
	`

	_, err := j.db.Exec(schema)
	return err
}

func (j *SQLiteJournal) Append(ctx context.Context, e *Entry) (int64, error) {
	seq, err := j.LastSequence(ctx, e.ThreadID)
	if err != nil {
		return 0, err
	}
	e.Seq = seq + 1
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO protocol_events (thread_id, agent_name, seq, event_type, payload, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ThreadID, e.AgentName, e.Seq, string(e.Type), e.Payload, e.Timestamp,
	)
	if err != nil {
		return 0, err
	}
	return e.Seq, nil
}

func (j *SQLiteJournal) Read(ctx context.Context, threadID string, fromSeq int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, agent_name, event_type, payload, timestamp
		FROM protocol_events
		WHERE thread_id = ? AND seq >= ?
		ORDER BY seq
		LIMIT ?`,
		threadID, fromSeq, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{ThreadID: threadID}
		var eventType string
		if err := rows.Scan(&e.Seq, &e.AgentName, &eventType, &e.Payload, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Type = agui.EventType(eventType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *SQLiteJournal) LastSequence(ctx context.Context, threadID string) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM protocol_events WHERE thread_id = ?`, threadID,
	).Scan(&seq)
	if err != nil {
		return -1, err
	}
	if !seq.Valid {
		return -1, nil
	}
	return seq.Int64, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

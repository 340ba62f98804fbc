package remote

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/Lexi-Lu02/feeling-care/internal/schema"
)

// SQLiteWriter persists records to a local SQLite database.
//
// This backend stands in for Firestore in standalone development and in
// tests. The schema mirrors the remote layout: email events are
// append-only rows, journal entries are upserted by (user, date key) so
// redelivered tasks overwrite instead of duplicating.
type SQLiteWriter struct {
	conn *sql.DB
	path string
	uid  string
}

// NewSQLite opens (creating if needed) the database at path and prepares
// the schema.
//
// The database runs in WAL mode with a 5 second busy timeout, matching
// how the rest of the app opens embedded SQLite. The caller MUST call
// Close() when done.
func NewSQLite(path, uid string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	w := &SQLiteWriter{conn: conn, path: path, uid: uid}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := w.initSchema(context.Background()); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// initSchema creates the tables if they don't exist. Idempotent.
func (w *SQLiteWriter) initSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS email_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		status TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal_entries (
		user_id TEXT NOT NULL,
		date_key TEXT NOT NULL,
		mood TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (user_id, date_key)
	);

	CREATE INDEX IF NOT EXISTS idx_email_events_user ON email_events(user_id, timestamp);
	`

	if _, err := w.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close checkpoints the WAL and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.conn == nil {
		return nil
	}
	if _, err := w.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := w.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	w.conn = nil
	return nil
}

// WriteEmailEvent implements syncer.RemoteWriter.
func (w *SQLiteWriter) WriteEmailEvent(ctx context.Context, event schema.EmailEvent) error {
	if w.uid == "" {
		return ErrUnauthenticated
	}

	query := `
	INSERT INTO email_events (user_id, recipient, subject, status, timestamp)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := w.conn.ExecContext(ctx, query, w.uid, event.To, event.Subject, event.Status, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert email event: %w", err)
	}
	return nil
}

// WriteJournalEntry implements syncer.RemoteWriter.
func (w *SQLiteWriter) WriteJournalEntry(ctx context.Context, entry schema.Entry) error {
	if w.uid == "" {
		return ErrUnauthenticated
	}

	dateKey := entry.DateKey
	if dateKey == "" {
		dateKey = schema.DateKey(entry.Timestamp)
	}

	query := `
	INSERT INTO journal_entries (user_id, date_key, mood, content, timestamp)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id, date_key) DO UPDATE SET
		mood = excluded.mood,
		content = excluded.content,
		timestamp = excluded.timestamp
	`
	_, err := w.conn.ExecContext(ctx, query, w.uid, dateKey, entry.Mood, entry.Content, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert journal entry: %w", err)
	}
	return nil
}

// EmailEventCount returns the number of stored email events for the writer's user.
func (w *SQLiteWriter) EmailEventCount(ctx context.Context) (int, error) {
	var count int
	err := w.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM email_events WHERE user_id = ?", w.uid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count email events: %w", err)
	}
	return count, nil
}

// JournalEntryCount returns the number of stored journal entries for the writer's user.
func (w *SQLiteWriter) JournalEntryCount(ctx context.Context) (int, error) {
	var count int
	err := w.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM journal_entries WHERE user_id = ?", w.uid).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return count, nil
}

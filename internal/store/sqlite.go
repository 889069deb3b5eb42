package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/hpungsan/shotcap/internal/capture"
	"github.com/hpungsan/shotcap/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// SQLiteStore keeps captures in a SQLite database.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// Pragmas in the connection string apply to all connections
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Creates the file if it doesn't exist
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Best-effort, after the file exists
	_ = os.Chmod(path, 0600)

	return &SQLiteStore{path: path, db: db}, nil
}

// Location returns the database path.
func (s *SQLiteStore) Location() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Append inserts item. Rows are ordered by an autoincrement sequence.
func (s *SQLiteStore) Append(ctx context.Context, item capture.Item) error {
	if err := capture.Validate(item); err != nil {
		return err
	}
	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}

	var reminderAt sql.NullInt64
	if item.ReminderAt != nil {
		reminderAt = sql.NullInt64{Int64: item.ReminderAt.Unix(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO captures (id, source, kind, title, body, reminder_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, item.Source, string(item.Kind), item.Title, item.Body, reminderAt, item.CreatedAt.Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// All returns every capture in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]capture.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, kind, title, body, reminder_at, created_at
		FROM captures
		ORDER BY seq ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []capture.Item{}
	for rows.Next() {
		var (
			it         capture.Item
			kind       string
			reminderAt sql.NullInt64
			createdAt  int64
		)
		if err := rows.Scan(&it.Source, &kind, &it.Title, &it.Body, &reminderAt, &createdAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		it.Kind = capture.Kind(kind)
		it.CreatedAt = time.Unix(createdAt, 0).UTC()
		if reminderAt.Valid {
			t := time.Unix(reminderAt.Int64, 0).UTC()
			it.ReminderAt = &t
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// Clear deletes every capture.
func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM captures`)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS captures (
		  seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		  id          TEXT NOT NULL UNIQUE,
		  source      TEXT NOT NULL,
		  kind        TEXT NOT NULL CHECK (kind IN ('note', 'task', 'reminder')),
		  title       TEXT NOT NULL,
		  body        TEXT NOT NULL,
		  reminder_at INTEGER,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_captures_kind ON captures(kind);

		CREATE INDEX IF NOT EXISTS idx_captures_reminder_at
		ON captures(reminder_at)
		WHERE reminder_at IS NOT NULL;
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

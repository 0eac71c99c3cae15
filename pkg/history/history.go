// Package history keeps a journal of batch sync executions in a local
// SQLite database. The journal is advisory: a sync never fails because
// the journal is unavailable.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dotmirror/dotmirror/pkg/errors"
)

// Record represents a single batch sync execution
type Record struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Synced     int
	Unchanged  int
	Skipped    int
	Forced     bool
	Error      string
}

// Journal persists execution records
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrHistoryOpen, "cannot create journal directory for %s", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrHistoryOpen, "cannot open journal database %s", path)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrHistoryOpen, "cannot configure journal database")
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		synced INTEGER DEFAULT 0,
		unchanged INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		forced INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_executions_started ON executions(started_at);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return errors.Wrap(err, errors.ErrHistoryOpen, "cannot initialize journal schema")
	}
	return nil
}

// Append stores one execution record
func (j *Journal) Append(rec Record) error {
	_, err := j.db.Exec(
		`INSERT INTO executions (started_at, finished_at, synced, unchanged, skipped, forced, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt, rec.FinishedAt, rec.Synced, rec.Unchanged, rec.Skipped, rec.Forced, rec.Error,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrHistoryWrite, "cannot append execution record")
	}
	return nil
}

// Recent returns up to limit executions, newest first
func (j *Journal) Recent(limit int) ([]Record, error) {
	rows, err := j.db.Query(
		`SELECT id, started_at, finished_at, synced, unchanged, skipped, forced, error
		 FROM executions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHistoryOpen, "cannot query executions")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var forced int
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt,
			&rec.Synced, &rec.Unchanged, &rec.Skipped, &forced, &rec.Error); err != nil {
			return nil, errors.Wrap(err, errors.ErrHistoryOpen, "cannot scan execution record")
		}
		rec.Forced = forced != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrHistoryOpen, "cannot iterate execution records")
	}
	return out, nil
}

// Close releases the database handle
func (j *Journal) Close() error {
	return j.db.Close()
}

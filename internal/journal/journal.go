package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"bottlesmith/internal/installer"
	"bottlesmith/internal/orchestrator"
)

const schema = `
CREATE TABLE IF NOT EXISTS installs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target      TEXT NOT NULL,
	bottle      TEXT NOT NULL,
	status      TEXT NOT NULL,
	stage       TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	shortcut    TEXT NOT NULL DEFAULT '',
	took_ms     INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_installs_bottle ON installs(bottle);
`

// Entry is one recorded install outcome.
type Entry struct {
	ID        int64     `json:"id"`
	Target    string    `json:"target"`
	Bottle    string    `json:"bottle"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	Shortcut  string    `json:"shortcut,omitempty"`
	TookMS    int64     `json:"took_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps a durable history of install outcomes in a local SQLite file.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one terminal outcome.
func (s *Store) Record(ctx context.Context, req installer.Request, outcome orchestrator.Outcome, took time.Duration) error {
	shortcutName := ""
	if outcome.Shortcut != nil {
		shortcutName = outcome.Shortcut.DisplayName
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO installs(target, bottle, status, stage, error, shortcut, took_ms, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, req.TargetPath, outcome.Bottle, string(outcome.Status), string(outcome.Stage),
		outcome.Error, shortcutName, took.Milliseconds(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record install: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, bottle, status, stage, error, shortcut, took_ms, created_at
		FROM installs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Target, &e.Bottle, &e.Status, &e.Stage, &e.Error, &e.Shortcut, &e.TookMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ orchestrator.Journal = (*Store)(nil)

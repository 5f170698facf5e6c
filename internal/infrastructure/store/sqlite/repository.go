// Package sqlite provides the SQLite implementation of the WorkQueue
// and Ledger interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/quizhub/curator/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// DefaultMaxAttempts is how many claims an item gets before a release
// marks it permanently failed.
const DefaultMaxAttempts = 3

// Repository implements ports.WorkQueue and ports.Ledger on SQLite.
// Work item transitions and their ledger mirror rows commit in one
// transaction, so a transition is never visible without its audit
// entry.
type Repository struct {
	db          *sql.DB
	path        string
	maxAttempts int
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.StoreConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	// WAL mode for better concurrent read/write performance, and a busy
	// timeout to avoid "database is locked" errors. Pragmas go in the
	// DSN so every pooled connection gets them.
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Repository{
		db:          db,
		path:        cfg.Path,
		maxAttempts: maxAttempts,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Remediation work items (one per malformed record)
	CREATE TABLE IF NOT EXISTS work_items (
		id TEXT PRIMARY KEY,
		item_type TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		record_id TEXT NOT NULL,
		action TEXT NOT NULL,
		priority INTEGER NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	-- One active item per record
	CREATE UNIQUE INDEX IF NOT EXISTS idx_work_items_active
		ON work_items(channel_id, record_id)
		WHERE status IN ('pending', 'in-progress');
	CREATE INDEX IF NOT EXISTS idx_work_items_claim
		ON work_items(status, action, priority, created_at);

	-- Append-only audit log; never updated or deleted
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT NOT NULL,
		action TEXT NOT NULL,
		channel_id TEXT NOT NULL DEFAULT '',
		record_id TEXT NOT NULL DEFAULT '',
		before_snapshot TEXT NOT NULL DEFAULT '',
		after_snapshot TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_ref ON ledger(channel_id, record_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_order ON ledger(created_at, id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

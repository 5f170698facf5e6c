package sqlite

import (
	"context"
	"fmt"

	"github.com/quizhub/curator/internal/domain/entities"
)

// Record appends one ledger entry. Append-only: no update or delete
// path exists on this table.
func (r *Repository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = timeNow()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger (actor, action, channel_id, record_id, before_snapshot, after_snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Actor, entry.Action, entry.Ref.ChannelID, entry.Ref.RecordID, entry.Before, entry.After, createdAt)
	if err != nil {
		return fmt.Errorf("recording ledger entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading ledger entry id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = createdAt
	return nil
}

// List returns the most recent entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]entities.LedgerEntry, error) {
	return r.queryLedger(ctx, `
		SELECT id, actor, action, channel_id, record_id, before_snapshot, after_snapshot, created_at
		FROM ledger
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
}

// ListByRef returns the most recent entries for one record.
func (r *Repository) ListByRef(ctx context.Context, ref entities.ItemRef, limit int) ([]entities.LedgerEntry, error) {
	return r.queryLedger(ctx, `
		SELECT id, actor, action, channel_id, record_id, before_snapshot, after_snapshot, created_at
		FROM ledger
		WHERE channel_id = ? AND record_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, ref.ChannelID, ref.RecordID, limit)
}

// ListByAction returns the most recent entries carrying one action.
func (r *Repository) ListByAction(ctx context.Context, action string, limit int) ([]entities.LedgerEntry, error) {
	return r.queryLedger(ctx, `
		SELECT id, actor, action, channel_id, record_id, before_snapshot, after_snapshot, created_at
		FROM ledger
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, action, limit)
}

// queryLedger is a helper to execute ledger queries.
func (r *Repository) queryLedger(ctx context.Context, query string, args ...any) ([]entities.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.LedgerEntry, 0, 16)
	for rows.Next() {
		var entry entities.LedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.Ref.ChannelID,
			&entry.Ref.RecordID,
			&entry.Before,
			&entry.After,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

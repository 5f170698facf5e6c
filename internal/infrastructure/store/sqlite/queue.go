package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

const workItemColumns = `id, item_type, channel_id, record_id, action, priority, status, reason, classification, score, attempts, created_at, updated_at`

// Enqueue creates a new pending work item. The partial unique index on
// active items turns a duplicate enqueue into ErrDuplicateActiveItem.
func (r *Repository) Enqueue(ctx context.Context, ref entities.ItemRef, action entities.WorkAction, priority int, reason string) (*entities.WorkItem, error) {
	now := timeNow()
	item := &entities.WorkItem{
		ID:        generateUUID(),
		ItemType:  entities.ItemTypeQuestion,
		Ref:       ref,
		Action:    action,
		Priority:  priority,
		Status:    entities.StatusPending,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO work_items (` + workItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.ItemType,
		item.Ref.ChannelID,
		item.Ref.RecordID,
		string(item.Action),
		item.Priority,
		string(item.Status),
		item.Reason,
		item.Classification,
		item.Score,
		item.Attempts,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ports.ErrDuplicateActiveItem
		}
		return nil, fmt.Errorf("inserting work item: %w", err)
	}

	if err := r.mirrorTransition(ctx, tx, item, entities.LedgerActionEnqueue, "", entities.StatusPending); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing enqueue: %w", err)
	}
	return item, nil
}

// ClaimNext atomically claims the most urgent pending item. The single
// conditional UPDATE expresses "claim if and only if still pending", so
// exactly one concurrent caller wins a given item.
func (r *Repository) ClaimNext(ctx context.Context, filter ports.ClaimFilter) (*entities.WorkItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE work_items
		SET status = 'in-progress', attempts = attempts + 1, updated_at = ?
		WHERE id = (
			SELECT id FROM work_items
			WHERE status = 'pending' AND (? = '' OR action = ?)
			ORDER BY priority ASC, created_at ASC, id ASC
			LIMIT 1
		) AND status = 'pending'
		RETURNING ` + workItemColumns
	row := tx.QueryRowContext(ctx, query, timeNow(), string(filter.Action), string(filter.Action))

	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.mirrorTransition(ctx, tx, item, entities.LedgerActionClaim, entities.StatusPending, entities.StatusInProgress); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return item, nil
}

// Complete moves an in-progress item to done or failed.
func (r *Repository) Complete(ctx context.Context, itemID string, outcome entities.WorkStatus) error {
	if !outcome.Terminal() {
		return fmt.Errorf("%w: outcome must be done or failed, got %s", ports.ErrInvalidTransition, outcome)
	}
	return r.transition(ctx, itemID, entities.LedgerActionComplete, `
		UPDATE work_items
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = 'in-progress'
		RETURNING `+workItemColumns,
		string(outcome), timeNow(), itemID)
}

// Release returns an in-progress item to pending, or marks it failed
// once the attempts cap is reached.
func (r *Repository) Release(ctx context.Context, itemID string) error {
	return r.transition(ctx, itemID, entities.LedgerActionRelease, `
		UPDATE work_items
		SET status = CASE WHEN attempts >= ? THEN 'failed' ELSE 'pending' END, updated_at = ?
		WHERE id = ? AND status = 'in-progress'
		RETURNING `+workItemColumns,
		r.maxAttempts, timeNow(), itemID)
}

// Reassign retags an in-progress item and returns it to pending.
func (r *Repository) Reassign(ctx context.Context, itemID string, action entities.WorkAction) error {
	return r.transition(ctx, itemID, entities.LedgerActionReassign, `
		UPDATE work_items
		SET action = ?, status = 'pending', updated_at = ?
		WHERE id = ? AND status = 'in-progress'
		RETURNING `+workItemColumns,
		string(action), timeNow(), itemID)
}

// transition runs a conditional status update and mirrors it into the
// ledger in the same transaction.
func (r *Repository) transition(ctx context.Context, itemID, ledgerAction, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, query, args...)
	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return r.transitionError(ctx, itemID)
	}
	if err != nil {
		return err
	}

	if err := r.mirrorTransition(ctx, tx, item, ledgerAction, entities.StatusInProgress, item.Status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transition: %w", err)
	}
	return nil
}

// transitionError distinguishes a missing item from one in the wrong
// state.
func (r *Repository) transitionError(ctx context.Context, itemID string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM work_items WHERE id = ?`, itemID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	if err != nil {
		return fmt.Errorf("checking work item status: %w", err)
	}
	return fmt.Errorf("%w: item %s is %s, not in-progress", ports.ErrInvalidTransition, itemID, status)
}

// Annotate writes verifier metadata without touching status. The
// annotation itself is logged by the verifier, not mirrored here, since
// it is not a state transition.
func (r *Repository) Annotate(ctx context.Context, itemID string, classification string, score float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE work_items
		SET classification = ?, score = ?, updated_at = ?
		WHERE id = ?
	`, classification, score, timeNow(), itemID)
	if err != nil {
		return fmt.Errorf("annotating work item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	return nil
}

// NextUnannotated returns the most urgent pending item without verifier
// metadata, or nil.
func (r *Repository) NextUnannotated(ctx context.Context) (*entities.WorkItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+workItemColumns+`
		FROM work_items
		WHERE status = 'pending' AND classification = ''
		ORDER BY priority ASC, created_at ASC, id ASC
		LIMIT 1
	`)
	item, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByStatus returns items in one status, most urgent first.
func (r *Repository) ListByStatus(ctx context.Context, status entities.WorkStatus, limit int) ([]entities.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+workItemColumns+`
		FROM work_items
		WHERE status = ?
		ORDER BY priority ASC, created_at ASC, id ASC
		LIMIT ?
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("querying work items: %w", err)
	}
	defer rows.Close()

	items := make([]entities.WorkItem, 0, limit)
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Counts returns per-status item counts.
func (r *Repository) Counts(ctx context.Context) (ports.QueueCounts, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM work_items GROUP BY status`)
	if err != nil {
		return ports.QueueCounts{}, fmt.Errorf("counting work items: %w", err)
	}
	defer rows.Close()

	var counts ports.QueueCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return ports.QueueCounts{}, fmt.Errorf("scanning count: %w", err)
		}
		switch entities.WorkStatus(status) {
		case entities.StatusPending:
			counts.Pending = n
		case entities.StatusInProgress:
			counts.InProgress = n
		case entities.StatusDone:
			counts.Done = n
		case entities.StatusFailed:
			counts.Failed = n
		}
	}
	return counts, rows.Err()
}

// ReleaseStale force-releases items stuck in-progress past the
// threshold, mirroring each release.
func (r *Repository) ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := timeNow().Add(-olderThan)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		UPDATE work_items
		SET status = CASE WHEN attempts >= ? THEN 'failed' ELSE 'pending' END, updated_at = ?
		WHERE status = 'in-progress' AND updated_at < ?
		RETURNING `+workItemColumns,
		r.maxAttempts, timeNow(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("releasing stale items: %w", err)
	}

	var released []entities.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			rows.Close()
			return 0, err
		}
		released = append(released, *item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterating stale items: %w", err)
	}
	rows.Close()

	for i := range released {
		if err := r.mirrorTransition(ctx, tx, &released[i], entities.LedgerActionRelease, entities.StatusInProgress, released[i].Status); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing stale release: %w", err)
	}
	return len(released), nil
}

// mirrorTransition appends the ledger row for a work item transition
// inside the transaction that performs it.
func (r *Repository) mirrorTransition(ctx context.Context, tx *sql.Tx, item *entities.WorkItem, action string, from, to entities.WorkStatus) error {
	before := ""
	if from != "" {
		before = fmt.Sprintf(`{"item_id":%q,"status":%q}`, item.ID, from)
	}
	after := fmt.Sprintf(`{"item_id":%q,"status":%q}`, item.ID, to)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger (actor, action, channel_id, record_id, before_snapshot, after_snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entities.ActorWorkQueue, action, item.Ref.ChannelID, item.Ref.RecordID, before, after, timeNow())
	if err != nil {
		return fmt.Errorf("mirroring transition: %w", err)
	}
	return nil
}

// rowScanner lets scanWorkItem work with *sql.Row and *sql.Rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*entities.WorkItem, error) {
	var item entities.WorkItem
	var action, status string

	err := row.Scan(
		&item.ID,
		&item.ItemType,
		&item.Ref.ChannelID,
		&item.Ref.RecordID,
		&action,
		&item.Priority,
		&status,
		&item.Reason,
		&item.Classification,
		&item.Score,
		&item.Attempts,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("scanning work item: %w", err)
	}

	item.Action = entities.WorkAction(action)
	item.Status = entities.WorkStatus(status)
	return &item, nil
}

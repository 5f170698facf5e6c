package ports

import (
	"context"

	"github.com/quizhub/curator/internal/domain/entities"
)

// Ledger is the shared append-only audit log. Entries are never updated
// or deleted. A failed Record means the triggering action must itself be
// treated as failed; the pipeline prefers losing an action to losing its
// audit trail.
type Ledger interface {
	// Record appends one entry.
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]entities.LedgerEntry, error)

	// ListByRef returns the most recent entries for one record.
	ListByRef(ctx context.Context, ref entities.ItemRef, limit int) ([]entities.LedgerEntry, error)

	// ListByAction returns the most recent entries carrying one action.
	ListByAction(ctx context.Context, action string, limit int) ([]entities.LedgerEntry, error)
}

// Package ports defines interfaces between the pipeline and its
// storage adapters.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
)

var (
	// ErrDuplicateActiveItem is returned by Enqueue when an item for the
	// same ref is already pending or in-progress. Callers treat it as a
	// benign no-op signal, not a failure.
	ErrDuplicateActiveItem = errors.New("active work item already exists for record")

	// ErrInvalidTransition is returned when a status change is requested
	// on an item not in the required state. Under correct claim
	// discipline it indicates a programming error.
	ErrInvalidTransition = errors.New("invalid work item transition")

	// ErrNotFound is returned when a referenced item or record does not
	// exist.
	ErrNotFound = errors.New("not found")
)

// ClaimFilter narrows which pending items ClaimNext may select.
type ClaimFilter struct {
	// Action limits claims to items requesting this action. Empty means
	// any action.
	Action entities.WorkAction
}

// QueueCounts summarizes the queue by status for operator triage.
type QueueCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

// WorkQueue is the durable queue of remediation tasks. It exclusively
// owns work item state transitions; every transition is mirrored into
// the ledger atomically with the transition itself.
type WorkQueue interface {
	// Enqueue creates a new pending item. Fails with
	// ErrDuplicateActiveItem when the ref already has an active item.
	Enqueue(ctx context.Context, ref entities.ItemRef, action entities.WorkAction, priority int, reason string) (*entities.WorkItem, error)

	// ClaimNext atomically selects the most urgent pending item matching
	// the filter, moves it to in-progress, and increments its attempt
	// count. Exactly one concurrent caller may claim a given item.
	// Returns (nil, nil) when no eligible item exists.
	ClaimNext(ctx context.Context, filter ClaimFilter) (*entities.WorkItem, error)

	// Complete moves an in-progress item to done or failed.
	Complete(ctx context.Context, itemID string, outcome entities.WorkStatus) error

	// Release returns an in-progress item to pending, or marks it
	// permanently failed once its attempts reach the configured cap.
	Release(ctx context.Context, itemID string) error

	// Reassign retags an in-progress item with a different action and
	// returns it to pending, leaving the referenced record untouched.
	Reassign(ctx context.Context, itemID string, action entities.WorkAction) error

	// Annotate writes verifier metadata onto an item without touching
	// its status.
	Annotate(ctx context.Context, itemID string, classification string, score float64) error

	// NextUnannotated returns the most urgent pending item that has no
	// verifier annotation yet, or (nil, nil).
	NextUnannotated(ctx context.Context) (*entities.WorkItem, error)

	// ListByStatus returns items in the given status, most urgent first.
	ListByStatus(ctx context.Context, status entities.WorkStatus, limit int) ([]entities.WorkItem, error)

	// Counts returns per-status item counts.
	Counts(ctx context.Context) (QueueCounts, error)

	// ReleaseStale force-releases items left in-progress longer than
	// olderThan and returns how many were recovered. Items at the
	// attempts cap become permanently failed instead.
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error)
}

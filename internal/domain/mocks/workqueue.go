// Package mocks provides in-memory port implementations for tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// WorkQueue is a mock implementation of ports.WorkQueue.
type WorkQueue struct {
	mu          sync.Mutex
	items       map[string]*entities.WorkItem
	seq         int
	MaxAttempts int
	Err         error
}

// NewWorkQueue creates a new mock WorkQueue.
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{
		items:       make(map[string]*entities.WorkItem),
		MaxAttempts: 3,
	}
}

// Items returns a copy of all items for assertions.
func (m *WorkQueue) Items() []entities.WorkItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.WorkItem, 0, len(m.items))
	for _, item := range m.items {
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

// Get returns one item by ID for assertions, or nil.
func (m *WorkQueue) Get(itemID string) *entities.WorkItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[itemID]; ok {
		copied := *item
		return &copied
	}
	return nil
}

// Enqueue creates a new pending item, enforcing the duplicate-active
// guard.
func (m *WorkQueue) Enqueue(_ context.Context, ref entities.ItemRef, action entities.WorkAction, priority int, reason string) (*entities.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, item := range m.items {
		if item.Ref == ref && !item.Status.Terminal() {
			return nil, ports.ErrDuplicateActiveItem
		}
	}

	m.seq++
	now := time.Now()
	item := &entities.WorkItem{
		ID:        fmt.Sprintf("item-%d", m.seq),
		ItemType:  entities.ItemTypeQuestion,
		Ref:       ref,
		Action:    action,
		Priority:  priority,
		Status:    entities.StatusPending,
		Reason:    reason,
		CreatedAt: now.Add(time.Duration(m.seq) * time.Microsecond),
		UpdatedAt: now,
	}
	m.items[item.ID] = item
	copied := *item
	return &copied, nil
}

// ClaimNext claims the most urgent pending item matching the filter.
func (m *WorkQueue) ClaimNext(_ context.Context, filter ports.ClaimFilter) (*entities.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var best *entities.WorkItem
	for _, item := range m.items {
		if item.Status != entities.StatusPending {
			continue
		}
		if filter.Action != "" && item.Action != filter.Action {
			continue
		}
		if best == nil || item.Priority < best.Priority ||
			(item.Priority == best.Priority && item.CreatedAt.Before(best.CreatedAt)) {
			best = item
		}
	}
	if best == nil {
		return nil, nil
	}

	best.Status = entities.StatusInProgress
	best.Attempts++
	best.UpdatedAt = time.Now()
	copied := *best
	return &copied, nil
}

// Complete moves an in-progress item to done or failed.
func (m *WorkQueue) Complete(_ context.Context, itemID string, outcome entities.WorkStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	if item.Status != entities.StatusInProgress {
		return fmt.Errorf("%w: item %s is %s", ports.ErrInvalidTransition, itemID, item.Status)
	}
	item.Status = outcome
	item.UpdatedAt = time.Now()
	return nil
}

// Release returns an in-progress item to pending, failing it at the
// attempts cap.
func (m *WorkQueue) Release(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	if item.Status != entities.StatusInProgress {
		return fmt.Errorf("%w: item %s is %s", ports.ErrInvalidTransition, itemID, item.Status)
	}
	if item.Attempts >= m.MaxAttempts {
		item.Status = entities.StatusFailed
	} else {
		item.Status = entities.StatusPending
	}
	item.UpdatedAt = time.Now()
	return nil
}

// Reassign retags an in-progress item and returns it to pending.
func (m *WorkQueue) Reassign(_ context.Context, itemID string, action entities.WorkAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	if item.Status != entities.StatusInProgress {
		return fmt.Errorf("%w: item %s is %s", ports.ErrInvalidTransition, itemID, item.Status)
	}
	item.Action = action
	item.Status = entities.StatusPending
	item.UpdatedAt = time.Now()
	return nil
}

// Annotate writes verifier metadata without touching status.
func (m *WorkQueue) Annotate(_ context.Context, itemID string, classification string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: work item %s", ports.ErrNotFound, itemID)
	}
	item.Classification = classification
	item.Score = score
	item.UpdatedAt = time.Now()
	return nil
}

// NextUnannotated returns the most urgent pending item without an
// annotation.
func (m *WorkQueue) NextUnannotated(_ context.Context) (*entities.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var best *entities.WorkItem
	for _, item := range m.items {
		if item.Status != entities.StatusPending || item.Classification != "" {
			continue
		}
		if best == nil || item.Priority < best.Priority ||
			(item.Priority == best.Priority && item.CreatedAt.Before(best.CreatedAt)) {
			best = item
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

// ListByStatus returns items in one status, most urgent first.
func (m *WorkQueue) ListByStatus(_ context.Context, status entities.WorkStatus, limit int) ([]entities.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	result := make([]entities.WorkItem, 0, limit)
	for _, item := range m.items {
		if item.Status == status {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Counts returns per-status item counts.
func (m *WorkQueue) Counts(_ context.Context) (ports.QueueCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return ports.QueueCounts{}, m.Err
	}

	var counts ports.QueueCounts
	for _, item := range m.items {
		switch item.Status {
		case entities.StatusPending:
			counts.Pending++
		case entities.StatusInProgress:
			counts.InProgress++
		case entities.StatusDone:
			counts.Done++
		case entities.StatusFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

// ReleaseStale releases in-progress items older than the threshold.
func (m *WorkQueue) ReleaseStale(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	cutoff := time.Now().Add(-olderThan)
	released := 0
	for _, item := range m.items {
		if item.Status != entities.StatusInProgress || !item.UpdatedAt.Before(cutoff) {
			continue
		}
		if item.Attempts >= m.MaxAttempts {
			item.Status = entities.StatusFailed
		} else {
			item.Status = entities.StatusPending
		}
		item.UpdatedAt = time.Now()
		released++
	}
	return released, nil
}

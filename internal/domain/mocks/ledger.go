package mocks

import (
	"context"
	"sync"

	"github.com/quizhub/curator/internal/domain/entities"
)

// Ledger is a mock implementation of ports.Ledger.
type Ledger struct {
	mu      sync.Mutex
	entries []entities.LedgerEntry
	Err     error
}

// NewLedger creates a new mock Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends one entry.
func (m *Ledger) Record(_ context.Context, entry *entities.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

// List returns the most recent entries, newest first.
func (m *Ledger) List(_ context.Context, limit int) ([]entities.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.LedgerEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// ListByRef returns the most recent entries for one record.
func (m *Ledger) ListByRef(_ context.Context, ref entities.ItemRef, limit int) ([]entities.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.LedgerEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.entries[i].Ref == ref {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// ListByAction returns the most recent entries carrying one action.
func (m *Ledger) ListByAction(_ context.Context, action string, limit int) ([]entities.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.LedgerEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.entries[i].Action == action {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// Entries returns a copy of all entries, oldest first, for assertions.
func (m *Ledger) Entries() []entities.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

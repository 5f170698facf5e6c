package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// CorpusStore is a mock implementation of ports.CorpusStore.
type CorpusStore struct {
	mu      sync.Mutex
	records map[string][]entities.ContentRecord // by channel
	tests   map[string][]entities.TestQuestion  // by channel
	Err     error
}

// NewCorpusStore creates a new mock CorpusStore.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		records: make(map[string][]entities.ContentRecord),
		tests:   make(map[string][]entities.TestQuestion),
	}
}

// Seed adds records directly, bypassing mutation bookkeeping.
func (m *CorpusStore) Seed(records ...entities.ContentRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.ChannelID] = append(m.records[rec.ChannelID], rec)
	}
}

// Channels lists channel IDs, sorted.
func (m *CorpusStore) Channels(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	channels := make([]string, 0, len(m.records))
	for id := range m.records {
		channels = append(channels, id)
	}
	sort.Strings(channels)
	return channels, nil
}

// ListRecords returns all records of one channel.
func (m *CorpusStore) ListRecords(_ context.Context, channelID string) ([]entities.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.ContentRecord, len(m.records[channelID]))
	copy(out, m.records[channelID])
	return out, nil
}

// GetRecord returns one record, or nil when absent.
func (m *CorpusStore) GetRecord(_ context.Context, ref entities.ItemRef) (*entities.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rec := range m.records[ref.ChannelID] {
		if rec.ID == ref.RecordID {
			copied := rec
			return &copied, nil
		}
	}
	return nil, nil
}

// SaveRecord inserts or replaces a record, bumping its mutation version.
func (m *CorpusStore) SaveRecord(_ context.Context, rec *entities.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	rec.Format = entities.DetectFormat(rec.AnswerPayload)
	rec.MutationVersion++
	bucket := m.records[rec.ChannelID]
	for i := range bucket {
		if bucket[i].ID == rec.ID {
			bucket[i] = *rec
			return nil
		}
	}
	m.records[rec.ChannelID] = append(bucket, *rec)
	return nil
}

// DeleteRecord removes a record from the free-text corpus.
func (m *CorpusStore) DeleteRecord(_ context.Context, ref entities.ItemRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	bucket := m.records[ref.ChannelID]
	for i := range bucket {
		if bucket[i].ID == ref.RecordID {
			m.records[ref.ChannelID] = append(bucket[:i], bucket[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: record %s", ports.ErrNotFound, ref)
}

// ListTestQuestions returns the structured entries of one channel.
func (m *CorpusStore) ListTestQuestions(_ context.Context, channelID string) ([]entities.TestQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entities.TestQuestion, len(m.tests[channelID]))
	copy(out, m.tests[channelID])
	return out, nil
}

// GetTestQuestion returns one structured entry, or nil when absent.
func (m *CorpusStore) GetTestQuestion(_ context.Context, ref entities.ItemRef) (*entities.TestQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, q := range m.tests[ref.ChannelID] {
		if q.ID == ref.RecordID {
			copied := q
			return &copied, nil
		}
	}
	return nil, nil
}

// AppendTestQuestion adds a structured entry, rejecting duplicate IDs.
func (m *CorpusStore) AppendTestQuestion(_ context.Context, q *entities.TestQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.tests[q.ChannelID] {
		if existing.ID == q.ID {
			return fmt.Errorf("structured entry already exists: %s", q.Ref())
		}
	}
	m.tests[q.ChannelID] = append(m.tests[q.ChannelID], *q)
	return nil
}

// Package jsonstore implements the CorpusStore interface over
// channel-keyed JSON bundle files, the same static bundles the
// content-browsing UI consumes.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

const (
	channelsDir = "channels"
	testsDir    = "tests"
)

// Store reads and writes the free-text corpus (channels/<id>.json) and
// the structured-test corpus (tests/<id>.json) under one root
// directory. Writers to the same bundle are serialized in-process; per
// record serialization across processes comes from the work queue
// claim.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// EnsureLayout creates the corpus directories if they don't exist.
func (s *Store) EnsureLayout() error {
	for _, sub := range []string{channelsDir, testsDir} {
		if err := os.MkdirAll(filepath.Join(s.root, sub), 0755); err != nil {
			return fmt.Errorf("creating corpus directory: %w", err)
		}
	}
	return nil
}

// Channels lists all channel IDs present in the free-text corpus.
func (s *Store) Channels(_ context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(filepath.Join(s.root, channelsDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading channels directory: %w", err)
	}

	channels := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		channels = append(channels, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(channels)
	return channels, nil
}

// ListRecords returns all records of one channel. A missing bundle is
// an empty channel, not an error.
func (s *Store) ListRecords(_ context.Context, channelID string) ([]entities.ContentRecord, error) {
	var records []entities.ContentRecord
	if err := s.readBundle(s.channelPath(channelID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord returns one record, or nil when absent.
func (s *Store) GetRecord(ctx context.Context, ref entities.ItemRef) (*entities.ContentRecord, error) {
	records, err := s.ListRecords(ctx, ref.ChannelID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == ref.RecordID {
			return &records[i], nil
		}
	}
	return nil, nil
}

// SaveRecord inserts or replaces a record, bumping its mutation version.
func (s *Store) SaveRecord(_ context.Context, rec *entities.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.channelPath(rec.ChannelID)
	var records []entities.ContentRecord
	if err := s.readBundle(path, &records); err != nil {
		return err
	}

	rec.Format = entities.DetectFormat(rec.AnswerPayload)
	rec.MutationVersion++
	rec.UpdatedAt = timeNow()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}

	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = *rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, *rec)
	}

	return s.writeBundle(path, records)
}

// DeleteRecord removes a record from the free-text corpus.
func (s *Store) DeleteRecord(_ context.Context, ref entities.ItemRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.channelPath(ref.ChannelID)
	var records []entities.ContentRecord
	if err := s.readBundle(path, &records); err != nil {
		return err
	}

	kept := make([]entities.ContentRecord, 0, len(records))
	for i := range records {
		if records[i].ID != ref.RecordID {
			kept = append(kept, records[i])
		}
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%w: record %s", ports.ErrNotFound, ref)
	}

	return s.writeBundle(path, kept)
}

// ListTestQuestions returns the structured-test entries of one channel.
func (s *Store) ListTestQuestions(_ context.Context, channelID string) ([]entities.TestQuestion, error) {
	var questions []entities.TestQuestion
	if err := s.readBundle(s.testPath(channelID), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetTestQuestion returns one structured entry, or nil when absent.
func (s *Store) GetTestQuestion(ctx context.Context, ref entities.ItemRef) (*entities.TestQuestion, error) {
	questions, err := s.ListTestQuestions(ctx, ref.ChannelID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == ref.RecordID {
			return &questions[i], nil
		}
	}
	return nil, nil
}

// AppendTestQuestion adds an entry to the structured-test corpus.
func (s *Store) AppendTestQuestion(_ context.Context, q *entities.TestQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.testPath(q.ChannelID)
	var questions []entities.TestQuestion
	if err := s.readBundle(path, &questions); err != nil {
		return err
	}

	for i := range questions {
		if questions[i].ID == q.ID {
			return fmt.Errorf("structured entry already exists: %s", q.Ref())
		}
	}

	if q.CreatedAt.IsZero() {
		q.CreatedAt = timeNow()
	}
	questions = append(questions, *q)

	return s.writeBundle(path, questions)
}

func (s *Store) channelPath(channelID string) string {
	return filepath.Join(s.root, channelsDir, channelID+".json")
}

func (s *Store) testPath(channelID string) string {
	return filepath.Join(s.root, testsDir, channelID+".json")
}

// readBundle decodes one bundle file into v; a missing file leaves v
// untouched.
func (s *Store) readBundle(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading bundle %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing bundle %s: %w", path, err)
	}
	return nil
}

// writeBundle writes a bundle atomically via a temp file and rename.
func (s *Store) writeBundle(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating bundle directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling bundle %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing bundle %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing bundle %s: %w", path, err)
	}
	return nil
}

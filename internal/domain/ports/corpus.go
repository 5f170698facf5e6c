package ports

import (
	"context"

	"github.com/quizhub/curator/internal/domain/entities"
)

// CorpusStore provides access to the channel-keyed content corpora: the
// free-text question bundles and the structured-test bundles.
//
// Lookup methods return (nil, nil) when the entity does not exist.
// Record mutation is serialized per record through the work queue claim;
// the store itself only guards concurrent writers within a process.
type CorpusStore interface {
	// Channels lists all channel IDs present in the free-text corpus.
	Channels(ctx context.Context) ([]string, error)

	// ListRecords returns all records of one channel.
	ListRecords(ctx context.Context, channelID string) ([]entities.ContentRecord, error)

	// GetRecord returns one record, or nil when absent.
	GetRecord(ctx context.Context, ref entities.ItemRef) (*entities.ContentRecord, error)

	// SaveRecord inserts or replaces a record, bumping its mutation
	// version and updated-at stamp.
	SaveRecord(ctx context.Context, rec *entities.ContentRecord) error

	// DeleteRecord removes a record from the free-text corpus. Fails
	// with ErrNotFound when absent.
	DeleteRecord(ctx context.Context, ref entities.ItemRef) error

	// ListTestQuestions returns the structured-test entries of one
	// channel.
	ListTestQuestions(ctx context.Context, channelID string) ([]entities.TestQuestion, error)

	// GetTestQuestion returns one structured entry, or nil when absent.
	GetTestQuestion(ctx context.Context, ref entities.ItemRef) (*entities.TestQuestion, error)

	// AppendTestQuestion adds an entry to the structured-test corpus.
	// Fails when an entry with the same ID already exists.
	AppendTestQuestion(ctx context.Context, q *entities.TestQuestion) error
}

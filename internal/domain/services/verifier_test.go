package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/mocks"
)

func newTestVerifier() (*Verifier, *mocks.CorpusStore, *mocks.WorkQueue, *mocks.Ledger) {
	corpus := mocks.NewCorpusStore()
	queue := mocks.NewWorkQueue()
	ledger := mocks.NewLedger()
	return NewVerifier(queue, corpus, ledger, NewQualityGate()), corpus, queue, ledger
}

func TestVerifier_VerifyNext(t *testing.T) {
	ctx := context.Background()
	verifier, corpus, queue, ledger := newTestVerifier()

	rec := entities.ContentRecord{
		ID: "q-1", ChannelID: "history",
		PromptText:    "Which city is the capital of Australia?",
		AnswerPayload: `["Canberra", "Sydney", "Melbourne", "Perth"]`,
	}
	corpus.Seed(rec)
	queued, err := queue.Enqueue(ctx, rec.Ref(), entities.ActionFixFormat, 1, "wrong-format")
	require.NoError(t, err)

	verified, err := verifier.VerifyNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.Equal(t, ClassRelocatable, verified.Classification)
	assert.Greater(t, verified.Score, 0.5)
	assert.LessOrEqual(t, verified.Score, 1.0)

	// Annotation lands on the work item, status untouched.
	item := queue.Get(queued.ID)
	require.NotNil(t, item)
	assert.Equal(t, entities.StatusPending, item.Status)
	assert.Equal(t, ClassRelocatable, item.Classification)
	assert.Equal(t, 0, item.Attempts)

	// Record untouched.
	stored, err := corpus.GetRecord(ctx, rec.Ref())
	require.NoError(t, err)
	assert.Equal(t, rec.AnswerPayload, stored.AnswerPayload)

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActorVerifier, entries[0].Actor)
	assert.Equal(t, entities.LedgerActionAnnotate, entries[0].Action)
	assert.Equal(t, rec.Ref(), entries[0].Ref)
}

func TestVerifier_Classifications(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		record  *entities.ContentRecord
		class   string
		missing bool
	}{
		{
			name: "missing content",
			record: &entities.ContentRecord{
				ID: "q-1", ChannelID: "ch",
				PromptText:    "What is the chemical symbol for gold?",
				AnswerPayload: "",
			},
			class: ClassNeedsContent,
		},
		{
			name: "placeholder",
			record: &entities.ContentRecord{
				ID: "q-1", ChannelID: "ch",
				PromptText:    "What is the chemical symbol for gold?",
				AnswerPayload: "TBD, confirm with content team",
			},
			class: ClassPlaceholder,
		},
		{
			name:    "record gone",
			record:  nil,
			class:   ClassMissingRecord,
			missing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, corpus, queue, _ := newTestVerifier()
			ref := entities.ItemRef{ChannelID: "ch", RecordID: "q-1"}
			if !tt.missing {
				corpus.Seed(*tt.record)
			}
			_, err := queue.Enqueue(ctx, ref, entities.ActionFixFormat, 2, "reason")
			require.NoError(t, err)

			verified, err := verifier.VerifyNext(ctx)
			require.NoError(t, err)
			require.NotNil(t, verified)
			assert.Equal(t, tt.class, verified.Classification)
		})
	}
}

func TestVerifier_NoWork(t *testing.T) {
	ctx := context.Background()
	verifier, _, _, _ := newTestVerifier()

	verified, err := verifier.VerifyNext(ctx)
	require.NoError(t, err)
	assert.Nil(t, verified)
}

func TestVerifier_SkipsAnnotatedItems(t *testing.T) {
	ctx := context.Background()
	verifier, corpus, queue, _ := newTestVerifier()

	rec := entities.ContentRecord{
		ID: "q-1", ChannelID: "ch",
		PromptText:    "What is the chemical symbol for gold?",
		AnswerPayload: "",
	}
	corpus.Seed(rec)
	_, err := queue.Enqueue(ctx, rec.Ref(), entities.ActionFixFormat, 3, "missing-content")
	require.NoError(t, err)

	first, err := verifier.VerifyNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := verifier.VerifyNext(ctx)
	require.NoError(t, err)
	assert.Nil(t, second)
}

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
	"github.com/quizhub/curator/internal/domain/services"
	"github.com/quizhub/curator/internal/infrastructure/config"
	"github.com/quizhub/curator/internal/infrastructure/corpus/jsonstore"
	"github.com/quizhub/curator/internal/infrastructure/store/sqlite"
)

// pipeline wires the real stores and every service the CLI uses.
type pipeline struct {
	repo      *sqlite.Repository
	corpus    *jsonstore.Store
	scanner   *services.Scanner
	verifier  *services.Verifier
	processor *services.Processor
	exporter  *services.Exporter
}

func setupPipeline(t *testing.T) *pipeline {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := sqlite.NewRepository(config.StoreConfig{Path: filepath.Join(tmpDir, "curator.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))

	corpus := jsonstore.New(filepath.Join(tmpDir, "content"))
	require.NoError(t, corpus.EnsureLayout())

	gate := services.NewQualityGate()
	return &pipeline{
		repo:      repo,
		corpus:    corpus,
		scanner:   services.NewScanner(corpus, repo, repo, gate),
		verifier:  services.NewVerifier(repo, corpus, repo, gate),
		processor: services.NewProcessor(repo, corpus, repo, gate),
		exporter:  services.NewExporter(corpus, repo, gate),
	}
}

func TestPipeline_ScanProcessExport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	p := setupPipeline(t)

	// Seed one clean record, one stranded structured payload, one empty
	// answer.
	records := []entities.ContentRecord{
		{
			ID: "q-clean", ChannelID: "geo",
			PromptText:    "Which river runs through Cairo in Egypt?",
			AnswerPayload: "The Nile river.",
		},
		{
			ID: "q-structured", ChannelID: "geo",
			PromptText:    "Which city is the capital of Australia?",
			AnswerPayload: `{"options":["Canberra","Sydney","Melbourne"],"answer":"Canberra"}`,
		},
		{
			ID: "q-empty", ChannelID: "geo",
			PromptText:    "Which mountain is the highest on Earth?",
			AnswerPayload: "",
		},
	}
	for i := range records {
		require.NoError(t, p.corpus.SaveRecord(ctx, &records[i]))
	}

	// Scan: two malformed records enter the queue.
	scanRes, err := p.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, scanRes.Scanned)
	assert.Equal(t, 2, scanRes.Enqueued)

	// Rescan is a no-op while the items are active.
	scanRes, err = p.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, scanRes.Enqueued)
	assert.Equal(t, 2, scanRes.Skipped)

	// Verify: both items get annotated, statuses untouched.
	for {
		res, err := p.verifier.VerifyNext(ctx)
		require.NoError(t, err)
		if res == nil {
			break
		}
		assert.NotEmpty(t, res.Classification)
	}
	counts, err := p.repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Pending)

	// Process: the structured payload relocates, the empty answer is
	// flagged for manual review.
	outcomes := map[services.ProcessOutcome]int{}
	for {
		res, err := p.processor.ProcessNext(ctx)
		require.NoError(t, err)
		if res == nil {
			break
		}
		outcomes[res.Outcome]++
	}
	assert.Equal(t, 1, outcomes[services.OutcomeDone])
	assert.Equal(t, 1, outcomes[services.OutcomeFlagged])

	moved, err := p.corpus.GetTestQuestion(ctx, entities.ItemRef{ChannelID: "geo", RecordID: "q-structured"})
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Len(t, moved.Options, 3)

	gone, err := p.corpus.GetRecord(ctx, entities.ItemRef{ChannelID: "geo", RecordID: "q-structured"})
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The flagged item stays pending under the manual-review action.
	pending, err := p.repo.ListByStatus(ctx, entities.StatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entities.ActionFlagManualReview, pending[0].Action)
	assert.Equal(t, "geo/q-empty", pending[0].Ref.String())

	// Export: only the clean record ships; the empty one is reported.
	outDir := t.TempDir()
	exportRes, err := p.exporter.Export(ctx, outDir)
	require.NoError(t, err)
	assert.Equal(t, 1, exportRes.Exported)
	require.Len(t, exportRes.Rejected, 1)
	assert.Equal(t, "geo/q-empty", exportRes.Rejected[0].Ref.String())

	_, err = os.Stat(filepath.Join(outDir, "rejected.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "tests", "geo.json"))
	require.NoError(t, err)

	// Every stage left its trail in the ledger.
	entries, err := p.repo.List(ctx, 100)
	require.NoError(t, err)
	actors := map[string]bool{}
	for _, entry := range entries {
		actors[entry.Actor] = true
	}
	for _, actor := range []string{
		entities.ActorScanner,
		entities.ActorVerifier,
		entities.ActorProcessor,
		entities.ActorExporter,
		entities.ActorWorkQueue,
	} {
		assert.True(t, actors[actor], "expected ledger entries from %s", actor)
	}
}

func TestPipeline_RecoveryAfterCrash(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	p := setupPipeline(t)

	rec := entities.ContentRecord{
		ID: "q-1", ChannelID: "geo",
		PromptText:    "Which city is the capital of Australia?",
		AnswerPayload: `["Canberra","Sydney"]`,
	}
	require.NoError(t, p.corpus.SaveRecord(ctx, &rec))

	_, err := p.scanner.Scan(ctx)
	require.NoError(t, err)

	// A bot claims the item and dies mid-flight.
	claimed, err := p.repo.ClaimNext(ctx, ports.ClaimFilter{Action: entities.ActionFixFormat})
	require.NoError(t, err)
	require.NotNil(t, claimed)

	// Nothing to process while the claim is held.
	res, err := p.processor.ProcessNext(ctx)
	require.NoError(t, err)
	assert.Nil(t, res)

	// The sweep returns the claim to the pool and processing finishes.
	recovery := services.NewRecovery(p.repo, p.repo, 1)
	released, err := recovery.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	res, err = p.processor.ProcessNext(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, services.OutcomeDone, res.Outcome)
}

func TestPipeline_ManyRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	p := setupPipeline(t)

	// A batch of stranded structured payloads across two channels.
	for i := 0; i < 10; i++ {
		channel := "geo"
		if i%2 == 1 {
			channel = "science"
		}
		rec := entities.ContentRecord{
			ID:            fmt.Sprintf("q-%d", i),
			ChannelID:     channel,
			PromptText:    fmt.Sprintf("Question number %d in the batch?", i),
			AnswerPayload: fmt.Sprintf(`["Answer %d","Other %d"]`, i, i),
		}
		require.NoError(t, p.corpus.SaveRecord(ctx, &rec))
	}

	scanRes, err := p.scanner.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, scanRes.Enqueued)

	processed := 0
	for {
		res, err := p.processor.ProcessNext(ctx)
		require.NoError(t, err)
		if res == nil {
			break
		}
		require.Equal(t, services.OutcomeDone, res.Outcome)
		processed++
	}
	assert.Equal(t, 10, processed)

	for _, channel := range []string{"geo", "science"} {
		remaining, err := p.corpus.ListRecords(ctx, channel)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		questions, err := p.corpus.ListTestQuestions(ctx, channel)
		require.NoError(t, err)
		assert.Len(t, questions, 5)
	}
}

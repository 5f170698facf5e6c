package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// Refined issue classifications written by the verifier.
const (
	ClassRelocatable   = "relocatable-structured-choice"
	ClassUndecodable   = "undecodable-structured"
	ClassNeedsContent  = "needs-content"
	ClassPlaceholder   = "placeholder-text"
	ClassMissingRecord = "missing-record"
	ClassClean         = "clean"
)

// VerifiedItem is the result of one verification pass.
type VerifiedItem struct {
	Item           *entities.WorkItem
	Classification string
	Score          float64
}

// Verifier annotates pending work items with a diagnostic score and a
// refined classification. It is advisory only: it never mutates content
// records and never transitions work item status, so skipping it
// entirely does not affect correctness.
type Verifier struct {
	queue  ports.WorkQueue
	corpus ports.CorpusStore
	ledger ports.Ledger
	gate   *QualityGate
}

// NewVerifier creates a verifier.
func NewVerifier(queue ports.WorkQueue, corpus ports.CorpusStore, ledger ports.Ledger, gate *QualityGate) *Verifier {
	return &Verifier{
		queue:  queue,
		corpus: corpus,
		ledger: ledger,
		gate:   gate,
	}
}

// VerifyNext annotates the most urgent unannotated pending item.
// Returns (nil, nil) when there is nothing left to annotate.
func (v *Verifier) VerifyNext(ctx context.Context) (*VerifiedItem, error) {
	item, err := v.queue.NextUnannotated(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting item to verify: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	rec, err := v.corpus.GetRecord(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", item.Ref, err)
	}

	classification, score := v.diagnose(rec)

	if err := v.queue.Annotate(ctx, item.ID, classification, score); err != nil {
		return nil, fmt.Errorf("annotating item %s: %w", item.ID, err)
	}

	annotation, err := json.Marshal(map[string]any{
		"classification": classification,
		"score":          score,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling annotation: %w", err)
	}
	entry := &entities.LedgerEntry{
		Actor:  entities.ActorVerifier,
		Action: entities.LedgerActionAnnotate,
		Ref:    item.Ref,
		After:  string(annotation),
	}
	if err := v.ledger.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording annotation: %w", err)
	}

	item.Classification = classification
	item.Score = score
	return &VerifiedItem{Item: item, Classification: classification, Score: score}, nil
}

// diagnose computes the refined classification and a score in [0,1]
// combining issue severity, structural confidence, and content length.
func (v *Verifier) diagnose(rec *entities.ContentRecord) (string, float64) {
	if rec == nil {
		return ClassMissingRecord, 0
	}

	res := v.gate.Validate(rec)
	if res.Valid {
		return ClassClean, 0
	}

	primary := res.Primary()

	structural := 0.0
	options, decodable := entities.DecodeChoicePayload(rec.AnswerPayload)
	if decodable {
		structural = float64(len(options)) / 4
		if structural > 1 {
			structural = 1
		}
	}

	// Thin content scores higher: less text means less to salvage.
	length := len([]rune(rec.PromptText)) + len([]rune(rec.AnswerPayload))
	shortness := 1 - float64(length)/160
	if shortness < 0 {
		shortness = 0
	}

	score := 0.5*primary.Severity() + 0.3*structural + 0.2*shortness

	var classification string
	switch primary {
	case entities.IssueWrongFormat:
		classification = ClassUndecodable
		if entities.DetectFormat(rec.AnswerPayload) == entities.FormatStructuredChoice {
			classification = ClassRelocatable
		}
	case entities.IssuePlaceholderContent:
		classification = ClassPlaceholder
	default:
		classification = ClassNeedsContent
	}

	return classification, score
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// timeNow returns the current time (can be swapped in tests).
var timeNow = time.Now

// ProcessOutcome is the result of processing one work item.
type ProcessOutcome string

const (
	OutcomeDone    ProcessOutcome = "done"
	OutcomeFailed  ProcessOutcome = "failed"
	OutcomeFlagged ProcessOutcome = "flagged"
)

// ProcessResult describes what happened to a claimed item.
type ProcessResult struct {
	ItemID  string
	Ref     entities.ItemRef
	Outcome ProcessOutcome
	Detail  string
}

// Processor claims fix_format work items and applies the repair
// appropriate to the issue kind. It is the only component permitted to
// mutate content records or relocate them between corpora. Wrong-format
// records are relocated to the structured-test corpus; missing or
// placeholder content is flagged for manual review, never fabricated.
type Processor struct {
	queue  ports.WorkQueue
	corpus ports.CorpusStore
	ledger ports.Ledger
	gate   *QualityGate
}

// NewProcessor creates a processor.
func NewProcessor(queue ports.WorkQueue, corpus ports.CorpusStore, ledger ports.Ledger, gate *QualityGate) *Processor {
	return &Processor{
		queue:  queue,
		corpus: corpus,
		ledger: ledger,
		gate:   gate,
	}
}

// ProcessNext claims and processes one item. Returns (nil, nil) when no
// eligible item is pending. A returned error leaves the item
// in-progress for the recovery sweep; a failed repair completes the
// item as failed and does not halt the pipeline.
func (p *Processor) ProcessNext(ctx context.Context) (*ProcessResult, error) {
	item, err := p.queue.ClaimNext(ctx, ports.ClaimFilter{Action: entities.ActionFixFormat})
	if err != nil {
		return nil, fmt.Errorf("claiming work item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	rec, err := p.corpus.GetRecord(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", item.Ref, err)
	}

	if rec == nil {
		return p.finishMissingRecord(ctx, item)
	}

	res := p.gate.Validate(rec)
	if res.Valid {
		// Repaired out of band since enqueue; nothing left to do.
		return p.complete(ctx, item, entities.StatusDone, snapshot(rec), snapshot(rec), "record already valid")
	}

	switch res.Primary() {
	case entities.IssueWrongFormat:
		return p.relocate(ctx, item, rec)
	default:
		return p.flagForReview(ctx, item, rec, res)
	}
}

// finishMissingRecord handles a claimed item whose record is gone from
// the free-text corpus. If the structured entry exists the relocation
// already happened (an earlier attempt crashed after the move), so the
// item completes as done; otherwise the record vanished externally and
// the item fails.
func (p *Processor) finishMissingRecord(ctx context.Context, item *entities.WorkItem) (*ProcessResult, error) {
	q, err := p.corpus.GetTestQuestion(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("loading structured entry %s: %w", item.Ref, err)
	}
	if q != nil {
		return p.complete(ctx, item, entities.StatusDone, "", snapshot(q), "relocation recovered")
	}
	return p.complete(ctx, item, entities.StatusFailed, "", "", "record not found")
}

// relocate moves a structured-choice payload out of the free-text corpus
// into the structured-test corpus. The decoded payload is authoritative;
// no free-text answer is invented.
func (p *Processor) relocate(ctx context.Context, item *entities.WorkItem, rec *entities.ContentRecord) (*ProcessResult, error) {
	before := snapshot(rec)

	options, ok := entities.DecodeChoicePayload(rec.AnswerPayload)
	if !ok {
		return p.complete(ctx, item, entities.StatusFailed, before, "", "payload not decodable as choice options")
	}

	existing, err := p.corpus.GetTestQuestion(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("checking structured corpus for %s: %w", item.Ref, err)
	}
	if existing != nil {
		// Dedup against the structured corpus is a pending product
		// decision; colliding IDs fail rather than merge.
		return p.complete(ctx, item, entities.StatusFailed, before, snapshot(existing), "structured entry already exists")
	}

	q := &entities.TestQuestion{
		ID:            rec.ID,
		ChannelID:     rec.ChannelID,
		PromptText:    rec.PromptText,
		Options:       options,
		SourceVersion: rec.MutationVersion,
		CreatedAt:     timeNow(),
	}
	if err := p.corpus.AppendTestQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("appending structured entry %s: %w", item.Ref, err)
	}
	if err := p.corpus.DeleteRecord(ctx, item.Ref); err != nil {
		return nil, fmt.Errorf("removing record %s: %w", item.Ref, err)
	}

	// Re-check the corpus invariant: the record must be gone from the
	// free-text corpus and present in the structured corpus.
	gone, err := p.corpus.GetRecord(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("re-validating %s: %w", item.Ref, err)
	}
	moved, err := p.corpus.GetTestQuestion(ctx, item.Ref)
	if err != nil {
		return nil, fmt.Errorf("re-validating %s: %w", item.Ref, err)
	}

	outcome := entities.StatusDone
	detail := "relocated to structured corpus"
	if gone != nil || moved == nil {
		outcome = entities.StatusFailed
		detail = "relocation did not hold"
	}
	return p.complete(ctx, item, outcome, before, snapshot(q), detail)
}

// flagForReview retags the item for manual review and returns it to
// pending without touching the record.
func (p *Processor) flagForReview(ctx context.Context, item *entities.WorkItem, rec *entities.ContentRecord, res ValidationResult) (*ProcessResult, error) {
	snap := snapshot(rec)
	entry := &entities.LedgerEntry{
		Actor:  entities.ActorProcessor,
		Action: entities.LedgerActionFlag,
		Ref:    item.Ref,
		Before: snap,
		After:  snap,
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording flag for %s: %w", item.Ref, err)
	}

	if err := p.queue.Reassign(ctx, item.ID, entities.ActionFlagManualReview); err != nil {
		return nil, fmt.Errorf("flagging item %s: %w", item.ID, err)
	}

	return &ProcessResult{
		ItemID:  item.ID,
		Ref:     item.Ref,
		Outcome: OutcomeFlagged,
		Detail:  res.Reason(),
	}, nil
}

// complete records the repair in the ledger and then finalizes the
// item. The ledger write comes first: an unauditable repair must not be
// reported as committed.
func (p *Processor) complete(ctx context.Context, item *entities.WorkItem, status entities.WorkStatus, before, after, detail string) (*ProcessResult, error) {
	entry := &entities.LedgerEntry{
		Actor:  entities.ActorProcessor,
		Action: entities.LedgerActionRelocate,
		Ref:    item.Ref,
		Before: before,
		After:  after,
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording outcome for %s: %w", item.Ref, err)
	}

	if err := p.queue.Complete(ctx, item.ID, status); err != nil {
		return nil, fmt.Errorf("completing item %s: %w", item.ID, err)
	}

	outcome := OutcomeDone
	if status == entities.StatusFailed {
		outcome = OutcomeFailed
	}
	return &ProcessResult{
		ItemID:  item.ID,
		Ref:     item.Ref,
		Outcome: outcome,
		Detail:  detail,
	}, nil
}

// snapshot renders a compact serialization for ledger before/after
// fields.
func snapshot(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

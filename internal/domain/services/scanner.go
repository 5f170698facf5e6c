package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// ScanResult summarizes one corpus sweep.
type ScanResult struct {
	Scanned  int
	Enqueued int
	Skipped  int // records that already had an active work item
}

// Scanner walks the full corpus and enqueues a work item for every
// record the quality gate rejects. Re-running against an unchanged
// corpus is idempotent: the queue's duplicate guard turns repeat
// enqueues into skips.
type Scanner struct {
	corpus ports.CorpusStore
	queue  ports.WorkQueue
	ledger ports.Ledger
	gate   *QualityGate
}

// NewScanner creates a scanner.
func NewScanner(corpus ports.CorpusStore, queue ports.WorkQueue, ledger ports.Ledger, gate *QualityGate) *Scanner {
	return &Scanner{
		corpus: corpus,
		queue:  queue,
		ledger: ledger,
		gate:   gate,
	}
}

// Scan validates every record across all channels and enqueues
// fix_format work for invalid ones, with priority derived from the
// primary issue.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	channels, err := s.corpus.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}

	result := &ScanResult{}
	for _, channelID := range channels {
		records, err := s.corpus.ListRecords(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("listing records for channel %s: %w", channelID, err)
		}

		for i := range records {
			rec := &records[i]
			result.Scanned++

			res := s.gate.Validate(rec)
			if res.Valid {
				continue
			}

			_, err := s.queue.Enqueue(ctx, rec.Ref(), entities.ActionFixFormat, res.Primary().Priority(), res.Reason())
			if errors.Is(err, ports.ErrDuplicateActiveItem) {
				result.Skipped++
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("enqueuing %s: %w", rec.Ref(), err)
			}
			result.Enqueued++
		}
	}

	if err := s.recordSummary(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// recordSummary appends a scan-summary ledger entry. A scan that cannot
// be audited is treated as failed.
func (s *Scanner) recordSummary(ctx context.Context, result *ScanResult) error {
	after, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling scan summary: %w", err)
	}
	entry := &entities.LedgerEntry{
		Actor:  entities.ActorScanner,
		Action: entities.LedgerActionScan,
		After:  string(after),
	}
	if err := s.ledger.Record(ctx, entry); err != nil {
		return fmt.Errorf("recording scan summary: %w", err)
	}
	return nil
}
